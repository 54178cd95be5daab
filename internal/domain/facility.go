package domain

import (
	"time"

	"github.com/m04kA/SMC-ClubBooking/pkg/types"
)

// FacilityStatus represents the operational status of a facility
type FacilityStatus string

const (
	FacilityAvailable   FacilityStatus = "available"
	FacilityMaintenance FacilityStatus = "maintenance"
	FacilityClosed      FacilityStatus = "closed"
)

// Facility represents a bookable resource (court, room, pool).
// Read-only for the booking core: owned by facility administration.
type Facility struct {
	ID                     int64
	Name                   string
	Type                   string // Категория, сопоставляемая с доступами абонемента
	Capacity               int
	OperatingHoursStart    types.TimeString
	OperatingHoursEnd      types.TimeString
	BookingDurationMinutes int
	BookingBufferMinutes   int
	RequiresSupervision    bool
	Status                 FacilityStatus
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsAvailable returns true if the facility accepts bookings
func (f *Facility) IsAvailable() bool {
	return f.Status == FacilityAvailable
}

// BookingDuration длительность одного бронирования
func (f *Facility) BookingDuration() time.Duration {
	return time.Duration(f.BookingDurationMinutes) * time.Minute
}

// BookingBuffer перерыв между соседними слотами
func (f *Facility) BookingBuffer() time.Duration {
	return time.Duration(f.BookingBufferMinutes) * time.Minute
}

// OperatingWindow возвращает рабочее окно объекта в календарный день date (часовой пояс loc).
// Если начало не раньше конца, окно пустое (IsValid() == false).
func (f *Facility) OperatingWindow(date time.Time, loc *time.Location) (Interval, error) {
	start, err := f.OperatingHoursStart.On(date, loc)
	if err != nil {
		return Interval{}, err
	}
	end, err := f.OperatingHoursEnd.On(date, loc)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}
