package testutil

import (
	"sync"
	"time"

	"github.com/flexprice/lifecycle/internal/types"
)

// MutableClock is a types.Clock tests can move forward
type MutableClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClockAt returns a clock pinned to midnight UTC of d
func NewClockAt(d types.Date) *MutableClock {
	return &MutableClock{now: d.Time}
}

func (c *MutableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// SetDate moves the clock to midnight UTC of d
func (c *MutableClock) SetDate(d types.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = d.Time
}

// AdvanceDays moves the clock n days forward
func (c *MutableClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}
