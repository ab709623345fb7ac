// Package testutil provides deterministic test doubles for the
// coordinator's clock and identity sources.
package testutil

import "sync"

// SteppingClock is a thread-safe monotonic clock for tests.
//
// Unlike coordinator.SystemClock it advances by exactly one tick per call,
// so tests and golden traces get predictable timestamps. It can be reset
// for test reuse.
type SteppingClock struct {
	mu   sync.Mutex
	base int64
	tick int64
}

// NewSteppingClock creates a clock whose first Now() returns base+1.
func NewSteppingClock(base int64) *SteppingClock {
	return &SteppingClock{base: base}
}

// Now advances the clock one tick and returns the new timestamp.
func (c *SteppingClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	return c.base + c.tick
}

// Current returns the last timestamp handed out without advancing.
func (c *SteppingClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base + c.tick
}

// Reset rewinds the clock so the next Now() returns base+1 again.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = 0
}

// FrozenClock always returns the same timestamp. Useful for forcing
// timestamp-ambiguity conflicts in tests.
type FrozenClock struct {
	At int64
}

// Now returns the frozen timestamp.
func (c FrozenClock) Now() int64 { return c.At }
