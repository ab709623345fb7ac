package coordinator

import (
	"sync"
	"time"
)

// Clock is the single timestamp source shared by all coordinator
// operations. Implementations must be monotonically non-decreasing: a
// later call never returns a smaller value than an earlier one.
type Clock interface {
	Now() int64
}

// SystemClock returns Unix-second timestamps, clamped so the sequence
// never decreases even if the wall clock steps backwards.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SystemClock struct {
	mu   sync.Mutex
	last int64
}

// NewSystemClock creates a wall-clock-backed monotonic clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current timestamp.
func (c *SystemClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().Unix()
	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}
