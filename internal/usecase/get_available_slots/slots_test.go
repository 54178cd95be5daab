package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
)

var slotDay = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

func hm(hour, min int) time.Time {
	return slotDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestGenerateSlots_Partition(t *testing.T) {
	window := domain.Interval{Start: hm(8, 0), End: hm(10, 0)}
	past := hm(0, 0)

	slots, err := generateSlots(window, time.Hour, 0, nil, past)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, hm(8, 0), slots[0].StartTime)
	assert.Equal(t, hm(9, 0), slots[0].EndTime)
	assert.Equal(t, hm(9, 0), slots[1].StartTime)
	assert.Equal(t, hm(10, 0), slots[1].EndTime)
	assert.True(t, slots[0].Available)
	assert.True(t, slots[1].Available)
}

func TestGenerateSlots_Buffer(t *testing.T) {
	window := domain.Interval{Start: hm(8, 0), End: hm(22, 0)}

	slots, err := generateSlots(window, time.Hour, 15*time.Minute, nil, hm(0, 0))
	require.NoError(t, err)

	// 08:00, 09:15, ..., 20:30 - 21:45-22:45 уже не помещается
	require.Len(t, slots, 11)
	for i, s := range slots {
		assert.Equal(t, time.Hour, s.EndTime.Sub(s.StartTime))
		assert.False(t, s.EndTime.After(window.End))
		if i > 0 {
			assert.Equal(t, 15*time.Minute, s.StartTime.Sub(slots[i-1].EndTime))
		}
	}
	assert.Equal(t, hm(20, 30), slots[10].StartTime)
}

func TestGenerateSlots_MarksBooked(t *testing.T) {
	window := domain.Interval{Start: hm(8, 0), End: hm(12, 0)}
	booked := []domain.Interval{
		{Start: hm(9, 30), End: hm(10, 0)}, // внутри второго слота
		{Start: hm(11, 0), End: hm(12, 0)}, // ровно четвёртый слот
	}

	slots, err := generateSlots(window, time.Hour, 0, booked, hm(0, 0))
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.True(t, slots[0].Available, "08-09 touches nothing")
	assert.False(t, slots[1].Available)
	assert.True(t, slots[2].Available, "10-11 only touches 11:00 booking")
	assert.False(t, slots[3].Available)

	// Согласованность: доступный слот не пересекает ни одно бронирование
	for _, s := range slots {
		assert.Equal(t, !s.Interval().OverlapsAny(booked), s.Available)
	}
}

func TestGenerateSlots_PastSlotsUnavailable(t *testing.T) {
	window := domain.Interval{Start: hm(8, 0), End: hm(11, 0)}

	slots, err := generateSlots(window, time.Hour, 0, nil, hm(9, 30))
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.False(t, slots[0].Available)
	assert.False(t, slots[1].Available, "09:00 already started")
	assert.True(t, slots[2].Available)
}

func TestGenerateSlots_EdgeCases(t *testing.T) {
	window := domain.Interval{Start: hm(8, 0), End: hm(10, 0)}

	_, err := generateSlots(window, 0, 0, nil, hm(0, 0))
	assert.ErrorIs(t, err, ErrInvalidFacilityConfig)

	_, err = generateSlots(window, -time.Minute, 0, nil, hm(0, 0))
	assert.ErrorIs(t, err, ErrInvalidFacilityConfig)

	_, err = generateSlots(window, time.Hour, -time.Minute, nil, hm(0, 0))
	assert.ErrorIs(t, err, ErrInvalidFacilityConfig)

	inverted := domain.Interval{Start: hm(22, 0), End: hm(8, 0)}
	slots, err := generateSlots(inverted, time.Hour, 0, nil, hm(0, 0))
	require.NoError(t, err)
	assert.Empty(t, slots)

	short := domain.Interval{Start: hm(8, 0), End: hm(8, 30)}
	slots, err = generateSlots(short, time.Hour, 0, nil, hm(0, 0))
	require.NoError(t, err)
	assert.Empty(t, slots)
}
