package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBooking_CanTransitionTo(t *testing.T) {
	confirmed := &Booking{Status: StatusConfirmed}
	assert.True(t, confirmed.CanTransitionTo(StatusCompleted))
	assert.True(t, confirmed.CanTransitionTo(StatusNoShow))
	assert.True(t, confirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, confirmed.CanTransitionTo(StatusPending))

	completed := &Booking{Status: StatusCompleted}
	assert.False(t, completed.CanTransitionTo(StatusNoShow))
	assert.True(t, completed.CanTransitionTo(StatusCancelled))

	cancelled := &Booking{Status: StatusCancelled}
	assert.True(t, cancelled.IsCancelled())
	assert.False(t, cancelled.CanTransitionTo(StatusCancelled))
	assert.False(t, cancelled.CanTransitionTo(StatusCompleted))
}

func TestBooking_StatusSets(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPending}).IsBlocking())
	assert.True(t, (&Booking{Status: StatusCompleted}).IsBlocking())
	assert.False(t, (&Booking{Status: StatusCancelled}).IsBlocking())
	assert.False(t, (&Booking{Status: StatusNoShow}).IsBlocking())

	assert.True(t, (&Booking{Status: StatusConfirmed}).CanBeCancelled())
	assert.False(t, (&Booking{Status: StatusCompleted}).CanBeCancelled())

	assert.True(t, BookingStatus("no_show").IsValid())
	assert.False(t, BookingStatus("archived").IsValid())
}

func TestMembership_IsActiveOn(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	m := &Membership{
		Status:  MembershipActive,
		EndDate: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), // колонка DATE
	}

	assert.True(t, m.IsActiveOn(time.Date(2026, 6, 30, 1, 0, 0, 0, msk)), "end date is inclusive")
	assert.False(t, m.IsActiveOn(time.Date(2026, 7, 1, 0, 30, 0, 0, msk)))

	m.Status = MembershipExpired
	assert.False(t, m.IsActiveOn(time.Date(2026, 6, 1, 12, 0, 0, 0, msk)))
}

func TestMembership_NewerThan(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	older := &Membership{ID: 7, CreatedAt: base}
	newer := &Membership{ID: 3, CreatedAt: base.Add(time.Minute)}
	sameTimeHigherID := &Membership{ID: 9, CreatedAt: base}

	assert.True(t, newer.NewerThan(older))
	assert.False(t, older.NewerThan(newer))
	assert.True(t, sameTimeHigherID.NewerThan(older))
}

func TestFacility_OperatingWindow(t *testing.T) {
	loc := time.FixedZone("club", 2*60*60)
	f := &Facility{OperatingHoursStart: "08:00", OperatingHoursEnd: "22:00"}

	window, err := f.OperatingWindow(time.Date(2026, 8, 1, 15, 0, 0, 0, loc), loc)
	assert.NoError(t, err)
	assert.True(t, window.Start.Equal(time.Date(2026, 8, 1, 8, 0, 0, 0, loc)))
	assert.True(t, window.End.Equal(time.Date(2026, 8, 1, 22, 0, 0, 0, loc)))

	inverted := &Facility{OperatingHoursStart: "22:00", OperatingHoursEnd: "08:00"}
	window, err = inverted.OperatingWindow(time.Date(2026, 8, 1, 0, 0, 0, 0, loc), loc)
	assert.NoError(t, err)
	assert.False(t, window.IsValid())
}
