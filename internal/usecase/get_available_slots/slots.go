package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
)

// generateSlots делит рабочее окно на слоты длиной duration с перерывом buffer:
// курсор начинается с window.Start, слот [курсор, курсор+duration) выдаётся,
// пока помещается в окно, затем курсор = конец слота + buffer.
//
// Слот недоступен, если пересекается хотя бы с одним занятым интервалом
// или начинается раньше now. Пустое или перевёрнутое окно даёт пустой список.
//
// Пример: окно 08:00-10:00, duration 60, buffer 0 → 08:00-09:00, 09:00-10:00.
// С buffer 15 → 08:00-09:00 (09:15-10:15 не помещается).
func generateSlots(
	window domain.Interval,
	duration time.Duration,
	buffer time.Duration,
	booked []domain.Interval,
	now time.Time,
) ([]domain.Slot, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: booking duration must be positive, got %s", ErrInvalidFacilityConfig, duration)
	}
	if buffer < 0 {
		return nil, fmt.Errorf("%w: booking buffer must not be negative, got %s", ErrInvalidFacilityConfig, buffer)
	}

	slots := make([]domain.Slot, 0)
	if !window.IsValid() {
		return slots, nil
	}

	for cursor := window.Start; !cursor.Add(duration).After(window.End); {
		slot := domain.Slot{StartTime: cursor, EndTime: cursor.Add(duration)}
		slot.Available = !slot.StartTime.Before(now) && !slot.Interval().OverlapsAny(booked)
		slots = append(slots, slot)

		cursor = slot.EndTime.Add(buffer)
	}

	return slots, nil
}

// bookedIntervals извлекает интервалы блокирующих бронирований
func bookedIntervals(bookings []*domain.Booking) []domain.Interval {
	result := make([]domain.Interval, 0, len(bookings))
	for _, b := range bookings {
		if b.IsBlocking() {
			result = append(result, b.Interval())
		}
	}
	return result
}
