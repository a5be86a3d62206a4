package db

import (
	"context"
	"errors"
	"fmt"

	"puzzle-rewards/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"

	defaultMaxRetries = 3
)

// ParseIsolation maps a configured isolation name to the pgx level.
func ParseIsolation(name string) (pgx.TxIsoLevel, error) {
	switch name {
	case "", "read_committed":
		return pgx.ReadCommitted, nil
	case "repeatable_read":
		return pgx.RepeatableRead, nil
	case "serializable":
		return pgx.Serializable, nil
	default:
		return "", fmt.Errorf("unknown isolation level %q", name)
	}
}

type RepoFactory func(q Querier) ports.Repositories

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// UnitOfWorkManager runs units of work in Postgres transactions. Do retries
// the whole unit when Postgres aborts it with a serialization failure or a
// deadlock, so fn must not have side effects outside the transaction.
type UnitOfWorkManager struct {
	db         txBeginner
	opts       pgx.TxOptions
	maxRetries int
	log        *zap.Logger
	factory    RepoFactory
}

func NewUnitOfWorkManager(pool *pgxpool.Pool, log *zap.Logger, factory RepoFactory) *UnitOfWorkManager {
	if pool == nil {
		log.Fatal("database pool is nil")
	}
	return newUnitOfWorkManager(pool, log, factory)
}

func newUnitOfWorkManager(db txBeginner, log *zap.Logger, factory RepoFactory) *UnitOfWorkManager {
	if log == nil {
		panic("logger is nil")
	}
	if factory == nil {
		log.Fatal("repository factory is nil")
	}
	return &UnitOfWorkManager{
		db:         db,
		opts:       pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		maxRetries: defaultMaxRetries,
		log:        log,
		factory:    factory,
	}
}

// WithIsolation overrides the isolation level of new transactions.
func (m *UnitOfWorkManager) WithIsolation(level pgx.TxIsoLevel) *UnitOfWorkManager {
	m.opts.IsoLevel = level
	return m
}

func (m *UnitOfWorkManager) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &unitOfWork{
		tx:    tx,
		repos: m.factory(tx),
	}, nil
}

func (m *UnitOfWorkManager) Do(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		err = m.do(ctx, fn)
		if !retryable(err) || ctx.Err() != nil {
			return err
		}
		m.log.Warn("transaction aborted, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return err
}

func (m *UnitOfWorkManager) do(ctx context.Context, fn func(uow ports.UnitOfWork) error) (err error) {
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
			m.log.Debug("transaction rolled back", zap.Error(err))
			if rbErr := uow.Rollback(ctx); rbErr != nil {
				err = fmt.Errorf("%w; rollback failed: %v", err, rbErr)
			}
		}
	}()

	if err = fn(uow); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

type unitOfWork struct {
	tx     pgx.Tx
	repos  ports.Repositories
	closed bool
}

func (u *unitOfWork) Repositories() ports.Repositories {
	return u.repos
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.closed {
		return errors.New("unit of work already closed")
	}
	u.closed = true
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback after a failed Commit is a no-op.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.closed {
		return nil
	}
	u.closed = true
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
