package memory

import (
	"context"
	"fmt"

	"puzzle-rewards/internal/core/ports"
)

type UnitOfWorkManager struct {
	store *Store
}

func NewUnitOfWorkManager(store *Store) *UnitOfWorkManager {
	return &UnitOfWorkManager{store: store}
}

// Begin blocks until no other unit of work is open. The returned unit must be
// committed or rolled back to release the store.
func (m *UnitOfWorkManager) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	m.store.txMu.Lock()
	m.store.mu.RLock()
	working := m.store.data.clone()
	m.store.mu.RUnlock()

	return &unitOfWork{
		store:   m.store,
		working: working,
		repos:   newRepositories(binding{store: m.store, tx: working}),
	}, nil
}

func (m *UnitOfWorkManager) Do(ctx context.Context, fn func(uow ports.UnitOfWork) error) (err error) {
	uow, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback(ctx)
			panic(r)
		}
		if err != nil {
			_ = uow.Rollback(ctx)
		}
	}()

	if err = fn(uow); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

type unitOfWork struct {
	store   *Store
	working *state
	repos   ports.Repositories
	closed  bool
}

func (u *unitOfWork) Repositories() ports.Repositories {
	return u.repos
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.closed {
		return fmt.Errorf("unit of work already closed")
	}
	u.closed = true
	defer u.store.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.store.mu.Lock()
	u.store.data = u.working
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback(context.Context) error {
	if u.closed {
		return fmt.Errorf("unit of work already closed")
	}
	u.closed = true
	u.store.txMu.Unlock()
	return nil
}
