// Package testutil holds deterministic helpers shared by the harness and
// its tests.
package testutil

import "sync"

// DeterministicClock is a logical clock. The harness uses one per run to
// number dispatches, so the same scenario always yields the same seq
// values.
//
// Safe for concurrent use.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock returns a clock at 0. The first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next advances the clock and returns the new value.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}
