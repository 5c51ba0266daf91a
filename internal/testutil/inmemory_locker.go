package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/lifecycle/internal/lock"
)

// InMemoryLocker implements lock.Locker. TTLs are ignored: a lock is held
// until released.
type InMemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{held: make(map[string]bool)}
}

func (l *InMemoryLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (lock.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, lock.NewLockHeldError(key)
	}
	l.held[key] = true
	return &inMemoryLock{locker: l, key: key}, nil
}

// IsHeld reports whether key is currently locked
func (l *InMemoryLocker) IsHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

type inMemoryLock struct {
	locker *InMemoryLocker
	key    string
}

func (l *inMemoryLock) Key() string {
	return l.key
}

func (l *inMemoryLock) Release(ctx context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.held, l.key)
	return nil
}
