package create_booking

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.FacilityID <= 0 {
		return fmt.Errorf("%w: facilityID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}

	if !req.StartTime.Before(req.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	if req.StartTime.Before(now) {
		return fmt.Errorf("%w: startTime is in the past", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDuration проверяет, что интервал ровно равен длительности бронирования объекта
func validateDuration(facility *domain.Facility, requested domain.Interval) error {
	if requested.Duration() != facility.BookingDuration() {
		return fmt.Errorf("%w: booking duration must be exactly %d minutes",
			ErrFacilityUnavailable, facility.BookingDurationMinutes)
	}
	return nil
}

// validateOperatingHours проверяет, что интервал лежит в рабочих часах объекта
// в день начала бронирования (по часовому поясу клуба)
func validateOperatingHours(facility *domain.Facility, requested domain.Interval, loc *time.Location) error {
	window, err := facility.OperatingWindow(requested.Start.In(loc), loc)
	if err != nil {
		return fmt.Errorf("%w: invalid operating hours of facility id=%d: %v", ErrInternal, facility.ID, err)
	}

	if !window.IsValid() || !window.Contains(requested) {
		return fmt.Errorf("%w: booking must be within operating hours %s-%s",
			ErrFacilityUnavailable, facility.OperatingHoursStart, facility.OperatingHoursEnd)
	}

	return nil
}

// validateEntitlement проверяет, что тариф даёт доступ к типу объекта
func validateEntitlement(membership *domain.Membership, facility *domain.Facility) error {
	if !membership.Grants(facility.Type) {
		return fmt.Errorf("%w: membership %q has no access to %q",
			ErrEntitlementDenied, membership.Type.Name, facility.Type)
	}
	return nil
}

// validateAdvanceWindow проверяет, что дата начала не дальше startOfToday + daysAhead.
// Сравниваются календарные даты по часовому поясу клуба.
func validateAdvanceWindow(start, now time.Time, loc *time.Location, daysAhead int) error {
	maxDate := domain.CivilDate(now.In(loc)).AddDate(0, 0, daysAhead)
	if domain.CivilDate(start.In(loc)).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrAdvanceWindowExceeded, daysAhead)
	}
	return nil
}

// localDay возвращает календарный день клуба, в который попадает t
func localDay(t time.Time, loc *time.Location) domain.Interval {
	start := domain.DateOnly(t.In(loc))
	return domain.Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// findConflict возвращает первое блокирующее бронирование, пересекающее requested
func findConflict(bookings []*domain.Booking, requested domain.Interval) *domain.Booking {
	for _, b := range bookings {
		if b.IsBlocking() && b.Interval().Overlaps(requested) {
			return b
		}
	}
	return nil
}
