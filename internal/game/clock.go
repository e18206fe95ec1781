package game

import (
	"sync"
	"time"
)

// Clock stamps completions, unlocks and dream ids. Stamps are stored in UTC.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FakeClock only moves when told to.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// DaysUntil counts whole days from now to the freedom date, never below zero.
func DaysUntil(now, freedom time.Time) int {
	days := int(freedom.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
