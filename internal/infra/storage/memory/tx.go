package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	"github.com/m04kA/SMC-ClubBooking/pkg/txmanager"
)

type txKey struct{}

// tx состояние транзакции: занятые секции и отложенные вставки
type tx struct {
	lockTimeout time.Duration
	locked      map[lockKey]struct{}
	staged      []*domain.Booking
}

func txFromContext(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok
}

// TxManager менеджер транзакций in-memory хранилища.
// Секции объектов и пользователей держатся до завершения транзакции,
// вставки применяются при фиксации.
type TxManager struct {
	store       *Store
	lockTimeout time.Duration
}

// NewTxManager создает менеджер транзакций
func NewTxManager(store *Store, lockTimeout time.Duration) *TxManager {
	return &TxManager{store: store, lockTimeout: lockTimeout}
}

// Do выполняет fn в транзакции
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn в транзакции без записи
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoSerializable выполняет fn в транзакции. Повторов нет: конкурирующие
// запросы на один объект или от одного пользователя упорядочены секциями.
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	t := &tx{lockTimeout: m.lockTimeout, locked: make(map[lockKey]struct{})}
	defer func() {
		for key := range t.locked {
			m.store.unlock(key)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}

	if err := m.store.commit(t); err != nil {
		return fmt.Errorf("%w: %w", txmanager.ErrCommit, err)
	}
	return nil
}

// lockIn занимает секцию key в рамках транзакции (повторный вызов не блокирует)
func (s *Store) lockIn(ctx context.Context, t *tx, key lockKey) error {
	if _, ok := t.locked[key]; ok {
		return nil
	}
	if err := s.lock(ctx, key, t.lockTimeout); err != nil {
		return err
	}
	t.locked[key] = struct{}{}
	return nil
}
