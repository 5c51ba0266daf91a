package lock

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/postgres"
)

// PostgresLocker implements Locker with transaction scoped advisory locks. A
// held lock pins one pooled connection until it is released. The TTL is not
// used: postgres drops the lock when the holder's session ends.
type PostgresLocker struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPostgresLocker(db *postgres.DB, logger *logger.Logger) *PostgresLocker {
	return &PostgresLocker{db: db, logger: logger}
}

func (l *PostgresLocker) TryAcquire(ctx context.Context, key string, _ time.Duration) (Lock, error) {
	// the lock outlives the caller's request scope
	txCtx, _, err := l.db.BeginTx(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}

	ok, err := l.db.TryAdvisoryLock(txCtx, key)
	if err != nil {
		_ = l.db.RollbackTx(txCtx)
		return nil, err
	}
	if !ok {
		_ = l.db.RollbackTx(txCtx)
		return nil, NewLockHeldError(key)
	}

	l.logger.Debugw("acquired advisory lock", "lock_key", key)
	return &postgresLock{locker: l, key: key, txCtx: txCtx}, nil
}

type postgresLock struct {
	locker *PostgresLocker
	key    string
	txCtx  context.Context
}

func (l *postgresLock) Key() string {
	return l.key
}

func (l *postgresLock) Release(_ context.Context) error {
	return l.locker.db.RollbackTx(l.txCtx)
}
