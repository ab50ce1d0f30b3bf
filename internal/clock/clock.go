// Package clock abstracts wall-clock reads so that generated output names
// can be pinned in tests.
package clock

import "time"

// CompactLayout is ISO 8601 basic format in UTC, without separators.
const CompactLayout = "20060102T150405Z"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock always reports a caller-controlled instant.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a FakeClock pinned at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the pinned instant.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// Set moves the pinned instant to t.
func (c *FakeClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the pinned instant forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// Stamp renders the clock's current time in CompactLayout.
func Stamp(c Clock) string {
	return c.Now().UTC().Format(CompactLayout)
}
