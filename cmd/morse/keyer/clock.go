package keyer

import (
	"sync"
	"time"
)

// Clock is the monotonic time source the player polls.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock reads the wall clock. time.Now carries a monotonic reading, so
// deadline comparisons are unaffected by clock steps.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// VirtualClock only moves when slept on. It lets a send be simulated
// instantly with exact timestamps.
type VirtualClock struct {
	mu     sync.Mutex
	origin time.Time
	now    time.Time
}

// NewVirtualClock returns a clock starting at origin.
func NewVirtualClock(origin time.Time) *VirtualClock {
	return &VirtualClock{origin: origin, now: origin}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *VirtualClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Elapsed returns how far the clock has advanced since its origin.
func (c *VirtualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.origin)
}
