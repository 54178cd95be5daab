package bookings

import (
	"context"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	CancelIfOwned(ctx context.Context, id int64, userID *int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) (*domain.Booking, error)
}

// UserDirectory интерфейс справочника пользователей
type UserDirectory interface {
	GetRole(ctx context.Context, userID int64) (domain.UserRole, error)
}

// EventPublisher интерфейс публикации событий бронирования
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
