// Package lock provides run-level mutual exclusion for scheduled sweeps.
package lock

import (
	"context"
	"time"

	ierr "github.com/flexprice/lifecycle/internal/errors"
)

// Locker hands out named, expiring locks.
type Locker interface {
	// TryAcquire takes the lock without waiting. It fails with an error marked
	// ierr.ErrLockHeld when another holder owns key.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock is a held lock. Release is safe to call after the TTL elapsed and only
// removes the lock if it is still owned by this holder.
type Lock interface {
	Key() string
	Release(ctx context.Context) error
}

// SweepKey returns the lock key for a sweep name.
func SweepKey(sweep string) string {
	return "lifecycle:sweep:" + sweep
}

// NewLockHeldError reports a lock owned by another holder
func NewLockHeldError(key string) error {
	return ierr.NewError("lock already held").
		WithHintf("Another run holds %s, try again later", key).
		WithReportableDetails(map[string]any{
			"lock_key": key,
		}).
		Mark(ierr.ErrLockHeld)
}
