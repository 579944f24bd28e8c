// internal/period/clock.go
package period

import (
	"sync"
	"time"
)

// Clock is the injectable "now" source. The service never reads the
// system clock directly, so month rollover stays deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock holds a fixed point in time and can be advanced by whole
// months on demand.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by months whole months. The day is
// pinned to the first of the month so AddDate never normalizes across
// an extra month boundary.
func (c *FixedClock) Advance(months int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	first := time.Date(c.now.Year(), c.now.Month(), 1, 0, 0, 0, 0, c.now.Location())
	c.now = first.AddDate(0, months, 0)
}
