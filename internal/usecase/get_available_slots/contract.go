package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListForFacilityOnDate получает бронирования объекта, пересекающие день, без блокировок
	ListForFacilityOnDate(ctx context.Context, facilityID int64, day domain.Interval, statuses []domain.BookingStatus) ([]*domain.Booking, error)
}

// FacilityCatalog интерфейс каталога объектов
type FacilityCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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
