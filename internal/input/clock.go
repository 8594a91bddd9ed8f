package input

import "time"

// Clock returns a free-running millisecond counter. The counter wraps, so
// callers compare timestamps with wrapping subtraction.
type Clock interface {
	Millis() uint32
}

// SystemClock counts milliseconds since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock starting at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Millis implements Clock.
func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// ManualClock is a Clock driven by hand. It is used by scripted scenarios
// and tests.
type ManualClock struct {
	now uint32
}

// NewManualClock creates a clock reading start.
func NewManualClock(start uint32) *ManualClock {
	return &ManualClock{now: start}
}

// Millis implements Clock.
func (c *ManualClock) Millis() uint32 {
	return c.now
}

// Set moves the clock to now.
func (c *ManualClock) Set(now uint32) {
	c.now = now
}

// Advance moves the clock forward by ms.
func (c *ManualClock) Advance(ms uint32) {
	c.now += ms
}

// HasTimeExpired reports whether ttl milliseconds have passed between
// start and now, using wrapping arithmetic.
func HasTimeExpired(now, start, ttl uint32) bool {
	return now-start >= ttl
}
