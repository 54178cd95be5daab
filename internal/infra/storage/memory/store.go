// Package memory хранилище для однонодового запуска и тестов.
// Реализует те же контракты, что и Postgres репозитории, и возвращает их ошибки.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	"github.com/m04kA/SMC-ClubBooking/pkg/txmanager"
)

// Store общее состояние in-memory хранилища
type Store struct {
	mu          sync.RWMutex
	facilities  map[int64]*domain.Facility
	memberships map[int64][]*domain.Membership // по user_id
	users       map[int64]domain.UserRole
	bookings    map[int64]*domain.Booking
	nextID      int64

	locksMu sync.Mutex
	locks   map[lockKey]chan struct{} // эксклюзивные секции, ёмкость 1

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		facilities:  make(map[int64]*domain.Facility),
		memberships: make(map[int64][]*domain.Membership),
		users:       make(map[int64]domain.UserRole),
		bookings:    make(map[int64]*domain.Booking),
		locks:       make(map[lockKey]chan struct{}),
		now:         time.Now,
	}
}

// AddFacility добавляет объект в каталог
func (s *Store) AddFacility(f domain.Facility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities[f.ID] = &f
}

// AddMembership добавляет абонемент пользователя
func (s *Store) AddMembership(m domain.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[m.UserID] = append(s.memberships[m.UserID], &m)
}

// AddUser регистрирует роль пользователя
func (s *Store) AddUser(id int64, role domain.UserRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = role
}

// Bookings возвращает копию всех сохранённых бронирований, упорядоченных по ID
func (s *Store) Bookings() []*domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		result = append(result, cloneBooking(b))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// lockKey ключ эксклюзивной секции: объект или пользователь
type lockKey struct {
	scope string
	id    int64
}

func facilityLock(id int64) lockKey { return lockKey{scope: "facility", id: id} }

func userLock(id int64) lockKey { return lockKey{scope: "user", id: id} }

// lock занимает эксклюзивную секцию key.
// Ожидание ограничено контекстом и timeout (0 - только контекстом).
func (s *Store) lock(ctx context.Context, key lockKey, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s=%d: %w", txmanager.ErrContention, key.scope, key.id, err)
	}

	s.locksMu.Lock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	s.locksMu.Unlock()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s=%d: %w", txmanager.ErrContention, key.scope, key.id, ctx.Err())
	case <-timer:
		return fmt.Errorf("%w: %s=%d: lock timeout %s", txmanager.ErrContention, key.scope, key.id, timeout)
	}
}

func (s *Store) unlock(key lockKey) {
	s.locksMu.Lock()
	ch := s.locks[key]
	s.locksMu.Unlock()
	<-ch
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	if b.Notes != nil {
		notes := *b.Notes
		c.Notes = &notes
	}
	return &c
}
