// FILE: lixenwraith/logship/clock.go
package logship

import (
	"sync"
	"time"
)

// MonotonicClock issues strictly increasing millisecond timestamps.
// Readings that do not move past the last issued value are replaced by the
// watermark, so bursts within one millisecond and wall clock rollback still
// produce a stable ordering.
type MonotonicClock struct {
	mu        sync.Mutex
	wall      func() int64
	watermark int64
}

// NewMonotonicClock creates a clock backed by the system wall clock
func NewMonotonicClock() *MonotonicClock {
	return newMonotonicClock(wallMillis)
}

// newMonotonicClock creates a clock over an arbitrary millisecond source
func newMonotonicClock(wall func() int64) *MonotonicClock {
	return &MonotonicClock{
		wall:      wall,
		watermark: wall(),
	}
}

// Now returns a timestamp greater than every value previously returned
func (c *MonotonicClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	reading := c.wall()
	if reading > c.watermark {
		c.watermark = reading + 1
		return reading
	}

	ts := c.watermark
	c.watermark++
	return ts
}

// wallMillis reads the system clock in Unix milliseconds
func wallMillis() int64 {
	return time.Now().UnixMilli()
}
