package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking represents a reservation of one facility by one user for one interval
type Booking struct {
	ID         int64
	UserID     int64
	FacilityID int64
	StartTime  time.Time // [StartTime, EndTime), StartTime < EndTime
	EndTime    time.Time
	Status     BookingStatus
	Notes      *string
	TotalCost  float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval возвращает полуоткрытый интервал бронирования
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// IsBlocking returns true if the booking occupies its facility interval
func (b *Booking) IsBlocking() bool {
	return b.Status.In(BlockingStatuses)
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status.In(CancellableStatuses)
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanTransitionTo проверяет допустимость смены статуса персоналом.
// confirmed -> completed | no_show, любой неотменённый -> cancelled
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch next {
	case StatusCompleted, StatusNoShow:
		return b.Status == StatusConfirmed
	case StatusCancelled:
		return !b.IsCancelled()
	default:
		return false
	}
}

// In проверяет вхождение статуса в список
func (s BookingStatus) In(statuses []BookingStatus) bool {
	for _, st := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsValid проверяет, что статус известен
func (s BookingStatus) IsValid() bool {
	return s.In(AllStatuses)
}

// BookingsFilter фильтр выборки бронирований
type BookingsFilter struct {
	UserID     *int64          // Фильтр по пользователю (опционально)
	FacilityID *int64          // Фильтр по объекту (опционально)
	From       *time.Time      // Бронирования, заканчивающиеся после From (опционально)
	To         *time.Time      // Бронирования, начинающиеся до To (опционально)
	Statuses   []BookingStatus // Пустой список - все статусы
}
