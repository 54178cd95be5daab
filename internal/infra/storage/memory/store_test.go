package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/booking"
	membershipRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/membership"
	"github.com/m04kA/SMC-ClubBooking/pkg/txmanager"
)

var day = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

func slot(hour int) *domain.Booking {
	return &domain.Booking{
		UserID:     1,
		FacilityID: 1,
		StartTime:  day.Add(time.Duration(hour) * time.Hour),
		EndTime:    day.Add(time.Duration(hour+1) * time.Hour),
		Status:     domain.StatusConfirmed,
	}
}

func newStore() *Store {
	s := NewStore()
	s.AddFacility(domain.Facility{ID: 1, Type: "tennis_court", Status: domain.FacilityAvailable})
	return s
}

func TestTxManager_StagesUntilCommit(t *testing.T) {
	store := newStore()
	repo := NewBookingRepository(store)
	txm := NewTxManager(store, time.Second)
	ctx := context.Background()

	err := txm.DoSerializable(ctx, func(txCtx context.Context) error {
		created, err := repo.Create(txCtx, slot(9))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		assert.Empty(t, store.Bookings(), "insert is not visible before commit")

		inTx, err := repo.ListForFacilityWithLock(txCtx, 1, domain.Interval{Start: day, End: day.Add(24 * time.Hour)}, domain.BlockingStatuses)
		require.NoError(t, err)
		assert.Len(t, inTx, 1, "own staged insert is visible inside the transaction")
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, store.Bookings(), 1)
}

func TestTxManager_RollbackDiscardsStaged(t *testing.T) {
	store := newStore()
	repo := NewBookingRepository(store)
	txm := NewTxManager(store, time.Second)

	err := txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		_, err := repo.Create(txCtx, slot(9))
		require.NoError(t, err)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, store.Bookings())
}

func TestTxManager_CommitRejectsOverlap(t *testing.T) {
	store := newStore()
	repo := NewBookingRepository(store)
	txm := NewTxManager(store, time.Second)

	_, err := repo.Create(context.Background(), slot(9))
	require.NoError(t, err)

	// Без блокировки объекта пересечение ловит фиксация
	err = txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		_, err := repo.Create(txCtx, slot(9))
		return err
	})
	assert.ErrorIs(t, err, bookingRepo.ErrOverlap)
	assert.Len(t, store.Bookings(), 1)
}

func TestListForFacilityWithLock_ExclusiveUntilCommit(t *testing.T) {
	store := newStore()
	repo := NewBookingRepository(store)
	txm := NewTxManager(store, 50*time.Millisecond)
	window := domain.Interval{Start: day, End: day.Add(24 * time.Hour)}

	_, err := repo.ListForFacilityWithLock(context.Background(), 1, window, domain.BlockingStatuses)
	assert.ErrorIs(t, err, bookingRepo.ErrLockRequiresTx)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
			if _, err := repo.ListForFacilityWithLock(txCtx, 1, window, domain.BlockingStatuses); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	err = txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		_, err := repo.ListForFacilityWithLock(txCtx, 1, window, domain.BlockingStatuses)
		return err
	})
	assert.ErrorIs(t, err, txmanager.ErrContention)

	close(release)
	require.NoError(t, <-done)

	err = txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		_, err := repo.ListForFacilityWithLock(txCtx, 1, window, domain.BlockingStatuses)
		return err
	})
	assert.NoError(t, err, "lock is released after the first transaction")

	err = txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		_, err := repo.ListForFacilityWithLock(txCtx, 99, window, domain.BlockingStatuses)
		return err
	})
	assert.ErrorIs(t, err, bookingRepo.ErrFacilityNotFound)
}

func TestCountForUserOnDate_HoldsUserSectionUntilCommit(t *testing.T) {
	store := newStore()
	store.AddFacility(domain.Facility{ID: 2, Type: "tennis_court", Status: domain.FacilityAvailable})
	repo := NewBookingRepository(store)
	txm := NewTxManager(store, 50*time.Millisecond)
	window := domain.Interval{Start: day, End: day.Add(24 * time.Hour)}

	n, err := repo.CountForUserOnDate(context.Background(), 1, window, domain.DailyLimitStatuses)
	require.NoError(t, err)
	assert.Zero(t, n, "outside a transaction counting does not lock")

	counted := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
			if _, err := repo.CountForUserOnDate(txCtx, 1, window, domain.DailyLimitStatuses); err != nil {
				return err
			}
			if _, err := repo.Create(txCtx, slot(9)); err != nil {
				return err
			}
			close(counted)
			<-release
			return nil
		})
	}()
	<-counted

	err = txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		_, err := repo.CountForUserOnDate(txCtx, 1, window, domain.DailyLimitStatuses)
		return err
	})
	assert.ErrorIs(t, err, txmanager.ErrContention, "same user waits for the first transaction")

	err = txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		_, err := repo.CountForUserOnDate(txCtx, 2, window, domain.DailyLimitStatuses)
		return err
	})
	assert.NoError(t, err, "other users are not blocked")

	close(release)
	require.NoError(t, <-done)

	err = txm.DoSerializable(context.Background(), func(txCtx context.Context) error {
		n, err := repo.CountForUserOnDate(txCtx, 1, window, domain.DailyLimitStatuses)
		assert.Equal(t, 1, n, "committed booking is counted")
		return err
	})
	assert.NoError(t, err)
}

func TestLock_CancelledContext(t *testing.T) {
	store := newStore()
	repo := NewBookingRepository(store)
	txm := NewTxManager(store, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := txm.DoSerializable(ctx, func(txCtx context.Context) error {
		_, err := repo.ListForFacilityWithLock(txCtx, 1, domain.Interval{Start: day, End: day.Add(time.Hour)}, domain.BlockingStatuses)
		return err
	})
	assert.ErrorIs(t, err, txmanager.ErrContention)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCancelIfOwned(t *testing.T) {
	store := newStore()
	repo := NewBookingRepository(store)
	ctx := context.Background()

	created, err := repo.Create(ctx, slot(10))
	require.NoError(t, err)

	stranger := int64(2)
	_, err = repo.CancelIfOwned(ctx, created.ID, &stranger)
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound)

	owner := int64(1)
	cancelled, err := repo.CancelIfOwned(ctx, created.ID, &owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = repo.CancelIfOwned(ctx, created.ID, &owner)
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound, "second cancel fails")

	// Отменённое бронирование больше не занимает интервал
	_, err = repo.Create(ctx, slot(10))
	assert.NoError(t, err)
}

func TestUpdateFields(t *testing.T) {
	store := newStore()
	repo := NewBookingRepository(store)
	ctx := context.Background()

	created, err := repo.Create(ctx, slot(11))
	require.NoError(t, err)

	notes := "bring rackets"
	updated, err := repo.UpdateFields(ctx, created.ID, map[string]any{"notes": &notes, "total_cost": 1200.0})
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
	assert.Equal(t, 1200.0, updated.TotalCost)

	_, err = repo.UpdateFields(ctx, created.ID, map[string]any{"start_time": time.Now()})
	assert.ErrorIs(t, err, bookingRepo.ErrUnknownField)
}

func TestMembershipDirectory_NewestActiveWins(t *testing.T) {
	store := NewStore()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	store.AddMembership(domain.Membership{ID: 1, UserID: 5, Status: domain.MembershipActive, EndDate: end, CreatedAt: base,
		Type: domain.MembershipType{Name: "old"}})
	store.AddMembership(domain.Membership{ID: 2, UserID: 5, Status: domain.MembershipActive, EndDate: end, CreatedAt: base.Add(time.Hour),
		Type: domain.MembershipType{Name: "new"}})
	store.AddMembership(domain.Membership{ID: 3, UserID: 5, Status: domain.MembershipCancelled, EndDate: end, CreatedAt: base.Add(2 * time.Hour),
		Type: domain.MembershipType{Name: "cancelled"}})

	dir := NewMembershipDirectory(store)

	m, err := dir.GetActiveMembership(context.Background(), 5, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "new", m.Type.Name)

	_, err = dir.GetActiveMembership(context.Background(), 5, time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, membershipRepo.ErrMembershipNotFound)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	content := `
[[users]]
id = 7
role = "staff"

[[membership_types]]
id = 1
name = "Racket"
facilities_access = ["tennis_court"]
max_bookings_per_day = 2
max_booking_days_ahead = 7

[[memberships]]
id = 1
user_id = 7
membership_type_id = 1
start_date = "2026-01-01"
end_date = "2026-12-31"
status = "active"
created_at = 2026-01-01T09:00:00Z

[[facilities]]
id = 1
name = "Court"
type = "tennis_court"
operating_hours_start = "08:00"
operating_hours_end = "22:00"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	store := NewStore()
	require.NoError(t, store.Apply(seed))

	role, err := NewUserDirectory(store).GetRole(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, role)

	f, err := NewFacilityCatalog(store).GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBookingDurationMinutes, f.BookingDurationMinutes)
	assert.Equal(t, domain.DefaultBookingBufferMinutes, f.BookingBufferMinutes)
	assert.Equal(t, domain.FacilityAvailable, f.Status)

	m, err := NewMembershipDirectory(store).GetActiveMembership(context.Background(), 7, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, m.Grants("tennis_court"))

	seed.Memberships[0].MembershipTypeID = 42
	assert.ErrorIs(t, NewStore().Apply(seed), ErrInvalidSeed)
}
