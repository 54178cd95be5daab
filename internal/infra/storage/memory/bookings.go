package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/booking"
)

// BookingRepository репозиторий бронирований поверх Store
type BookingRepository struct {
	store *Store
}

// NewBookingRepository создает репозиторий бронирований
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// Create сохраняет бронирование. Внутри транзакции вставка откладывается до фиксации.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s := r.store

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	created := cloneBooking(booking)
	created.ID = s.nextID
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt

	if t, ok := txFromContext(ctx); ok {
		t.staged = append(t.staged, created)
		return cloneBooking(created), nil
	}

	if err := s.checkOverlapLocked(created); err != nil {
		return nil, err
	}
	s.bookings[created.ID] = created
	return cloneBooking(created), nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// ListForFacilityWithLock занимает секцию объекта до конца транзакции и возвращает
// его бронирования со статусами statuses, пересекающие window
func (r *BookingRepository) ListForFacilityWithLock(ctx context.Context, facilityID int64, window domain.Interval, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	t, ok := txFromContext(ctx)
	if !ok {
		return nil, bookingRepo.ErrLockRequiresTx
	}

	r.store.mu.RLock()
	_, exists := r.store.facilities[facilityID]
	r.store.mu.RUnlock()
	if !exists {
		return nil, bookingRepo.ErrFacilityNotFound
	}

	if err := r.store.lockIn(ctx, t, facilityLock(facilityID)); err != nil {
		return nil, err
	}

	return r.collect(ctx, func(b *domain.Booking) bool {
		return b.FacilityID == facilityID && b.Status.In(statuses) && b.Interval().Overlaps(window)
	}), nil
}

// ListForFacilityOnDate возвращает бронирования объекта со статусами statuses, пересекающие day
func (r *BookingRepository) ListForFacilityOnDate(ctx context.Context, facilityID int64, day domain.Interval, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	return r.collect(ctx, func(b *domain.Booking) bool {
		return b.FacilityID == facilityID && b.Status.In(statuses) && b.Interval().Overlaps(day)
	}), nil
}

// CountForUserOnDate считает бронирования пользователя, начинающиеся в день day.
// Внутри транзакции занимает секцию пользователя до её завершения, чтобы
// параллельные допуски одного пользователя не прошли лимит вместе.
// Учитываются и отложенные вставки текущей транзакции.
func (r *BookingRepository) CountForUserOnDate(ctx context.Context, userID int64, day domain.Interval, statuses []domain.BookingStatus) (int, error) {
	if t, ok := txFromContext(ctx); ok {
		if err := r.store.lockIn(ctx, t, userLock(userID)); err != nil {
			return 0, err
		}
	}

	matched := r.collect(ctx, func(b *domain.Booking) bool {
		return b.UserID == userID && b.Status.In(statuses) &&
			!b.StartTime.Before(day.Start) && b.StartTime.Before(day.End)
	})
	return len(matched), nil
}

// List получает бронирования по фильтру, порядок как у Postgres репозитория
func (r *BookingRepository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	result := r.collect(ctx, func(b *domain.Booking) bool {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			return false
		}
		if filter.FacilityID != nil && b.FacilityID != *filter.FacilityID {
			return false
		}
		if filter.From != nil && !b.EndTime.After(*filter.From) {
			return false
		}
		if filter.To != nil && !b.StartTime.Before(*filter.To) {
			return false
		}
		if len(filter.Statuses) > 0 && !b.Status.In(filter.Statuses) {
			return false
		}
		return true
	})

	if filter.FacilityID == nil {
		sort.SliceStable(result, func(i, j int) bool {
			if !result[i].StartTime.Equal(result[j].StartTime) {
				return result[i].StartTime.After(result[j].StartTime)
			}
			return result[i].ID > result[j].ID
		})
	}
	return result, nil
}

// CancelIfOwned атомарно отменяет бронирование в отменяемом статусе.
// userID == nil - привилегированная отмена без проверки владельца.
func (r *BookingRepository) CancelIfOwned(ctx context.Context, id int64, userID *int64) (*domain.Booking, error) {
	return r.update(id, func(b *domain.Booking) bool {
		if !b.CanBeCancelled() || (userID != nil && b.UserID != *userID) {
			return false
		}
		b.Status = domain.StatusCancelled
		return true
	})
}

// UpdateStatus переводит бронирование в статус to, если текущий статус входит в from
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	return r.update(id, func(b *domain.Booking) bool {
		if !b.Status.In(from) {
			return false
		}
		b.Status = to
		return true
	})
}

// UpdateFields обновляет разрешённые колонки notes и total_cost
func (r *BookingRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) (*domain.Booking, error) {
	for column, value := range fields {
		switch column {
		case "notes":
			if _, ok := value.(*string); !ok {
				return nil, fmt.Errorf("%w: notes must be *string, got %T", bookingRepo.ErrUnknownField, value)
			}
		case "total_cost":
			if _, ok := value.(float64); !ok {
				return nil, fmt.Errorf("%w: total_cost must be float64, got %T", bookingRepo.ErrUnknownField, value)
			}
		default:
			return nil, fmt.Errorf("%w: %s", bookingRepo.ErrUnknownField, column)
		}
	}

	return r.update(id, func(b *domain.Booking) bool {
		if v, ok := fields["notes"]; ok {
			b.Notes = v.(*string)
		}
		if v, ok := fields["total_cost"]; ok {
			b.TotalCost = v.(float64)
		}
		return true
	})
}

// update применяет mutate к копии под блокировкой; false - условие не выполнено
func (r *BookingRepository) update(id int64, mutate func(b *domain.Booking) bool) (*domain.Booking, error) {
	s := r.store

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}

	next := cloneBooking(current)
	if !mutate(next) {
		return nil, bookingRepo.ErrBookingNotFound
	}
	next.UpdatedAt = s.now()
	s.bookings[id] = next

	return cloneBooking(next), nil
}

// collect возвращает копии сохранённых и отложенных в текущей транзакции
// бронирований, подходящих под match, по возрастанию начала
func (r *BookingRepository) collect(ctx context.Context, match func(b *domain.Booking) bool) []*domain.Booking {
	s := r.store

	s.mu.RLock()
	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			result = append(result, cloneBooking(b))
		}
	}
	s.mu.RUnlock()

	if t, ok := txFromContext(ctx); ok {
		for _, b := range t.staged {
			if match(b) {
				result = append(result, cloneBooking(b))
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].StartTime.Before(result[j].StartTime)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// commit применяет отложенные вставки транзакции целиком или не применяет ни одной
func (s *Store) commit(t *tx) error {
	if len(t.staged) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range t.staged {
		if err := s.checkOverlapLocked(b); err != nil {
			return err
		}
		for _, other := range t.staged[:i] {
			if other.FacilityID == b.FacilityID && other.IsBlocking() && b.IsBlocking() &&
				other.Interval().Overlaps(b.Interval()) {
				return fmt.Errorf("%w: facility=%d", bookingRepo.ErrOverlap, b.FacilityID)
			}
		}
	}

	for _, b := range t.staged {
		s.bookings[b.ID] = b
	}
	return nil
}

// checkOverlapLocked аналог EXCLUDE-ограничения bookings_no_overlap. Вызывается под s.mu.
func (s *Store) checkOverlapLocked(b *domain.Booking) error {
	if !b.IsBlocking() {
		return nil
	}
	for _, existing := range s.bookings {
		if existing.FacilityID == b.FacilityID && existing.IsBlocking() &&
			existing.Interval().Overlaps(b.Interval()) {
			return fmt.Errorf("%w: facility=%d, existing id=%d", bookingRepo.ErrOverlap, b.FacilityID, existing.ID)
		}
	}
	return nil
}
