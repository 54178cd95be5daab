package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	"github.com/m04kA/SMC-ClubBooking/pkg/psqlbuilder"
)

func TestListQuery(t *testing.T) {
	userID := int64(42)
	facilityID := int64(7)
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

	t.Run("user bookings newest first", func(t *testing.T) {
		query, args, err := listQuery(domain.BookingsFilter{UserID: &userID}).ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "WHERE user_id = $1")
		assert.Contains(t, query, "ORDER BY start_time DESC, id DESC")
		assert.Equal(t, []interface{}{userID}, args)
	})

	t.Run("facility range with statuses", func(t *testing.T) {
		query, args, err := listQuery(domain.BookingsFilter{
			FacilityID: &facilityID,
			From:       &from,
			To:         &to,
			Statuses:   []domain.BookingStatus{domain.StatusConfirmed, domain.StatusPending},
		}).ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "facility_id = $1")
		assert.Contains(t, query, "end_time > $2")
		assert.Contains(t, query, "start_time < $3")
		assert.Contains(t, query, "status IN ($4,$5)")
		assert.Contains(t, query, "ORDER BY start_time ASC, id ASC")
		assert.Len(t, args, 5)
		assert.Equal(t, "confirmed", args[3])
	})
}

func TestOverlappingUsesHalfOpenBounds(t *testing.T) {
	window := domain.Interval{
		Start: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}

	query, args, err := overlapping(listQuery(domain.BookingsFilter{}), window, domain.BlockingStatuses).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "start_time < $4")
	assert.Contains(t, query, "end_time > $5")
	assert.Equal(t, window.End, args[3])
	assert.Equal(t, window.Start, args[4])
}

func TestReturningMatchesScanOrder(t *testing.T) {
	query, _, err := returning(psqlbuilder.Update("bookings").Set("status", "cancelled")).ToSql()
	require.NoError(t, err)

	for _, column := range bookingColumns {
		assert.Contains(t, query, column)
	}
}

func TestRepository_GuardsWithoutDatabase(t *testing.T) {
	repo := NewRepository(nil)
	ctx := context.Background()

	_, err := repo.ListForFacilityWithLock(ctx, 1, domain.Interval{}, domain.BlockingStatuses)
	assert.ErrorIs(t, err, ErrLockRequiresTx)

	_, err = repo.UpdateFields(ctx, 1, map[string]any{"start_time": time.Now()})
	assert.ErrorIs(t, err, ErrUnknownField)
}
