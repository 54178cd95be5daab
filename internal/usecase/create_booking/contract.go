package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	ListForFacilityWithLock(ctx context.Context, facilityID int64, window domain.Interval, statuses []domain.BookingStatus) ([]*domain.Booking, error)
	CountForUserOnDate(ctx context.Context, userID int64, day domain.Interval, statuses []domain.BookingStatus) (int, error)
}

// FacilityCatalog интерфейс каталога объектов
type FacilityCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// MembershipDirectory интерфейс справочника абонементов
type MembershipDirectory interface {
	GetActiveMembership(ctx context.Context, userID int64, today time.Time) (*domain.Membership, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации событий бронирования
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Metrics интерфейс учёта исходов допуска бронирования
type Metrics interface {
	RecordAdmission(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
