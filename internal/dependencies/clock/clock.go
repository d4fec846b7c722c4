package clock

import "time"

// Clock provides the current time, replaceable in tests
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func New() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant
type FixedClock struct {
	CurrentTime time.Time
}

var _ Clock = (*FixedClock)(nil)

func NewFixed(t time.Time) *FixedClock {
	return &FixedClock{CurrentTime: t}
}

func (c *FixedClock) Now() time.Time {
	return c.CurrentTime
}

// Today truncates the clock's current time to a calendar date in its location
func Today(c Clock) time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
