package timing

import (
	"sync"
	"time"
)

// ManualClock is a Clock that only advances when slept on. It lets callers
// drive waits deterministically, for example in dry runs and tests.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept += d
}

// Slept returns the total time passed to Sleep.
func (c *ManualClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}
