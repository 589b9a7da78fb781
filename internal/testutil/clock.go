package testutil

import (
	"sync"
	"time"
)

// Clock is a manually advanced time source. Pass clock.Now wherever a
// component accepts a func() time.Time.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at the given time, or at 2026-01-01 06:00 Asia/Colombo
// offset (00:30 UTC) when none is given.
func NewClock(start ...time.Time) *Clock {
	t := time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC)
	if len(start) > 0 {
		t = start[0]
	}
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
