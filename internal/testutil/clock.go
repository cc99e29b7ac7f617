package testutil

import (
	"sync"
	"time"

	"github.com/roach88/blockaviate/internal/block"
)

// Epoch is the instant DeterministicClock counts from.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock stamps blocks with predictable timestamps for tests.
//
// The n-th call to Now returns Epoch + (n-1) seconds, formatted with
// block.TimestampLayout. Reset restarts the sequence so the same scenario
// produces byte-identical ledgers.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a new deterministic clock.
//
// The first call to Now() returns "2024-01-01 00:00:00.000000".
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Now returns the next timestamp. Implements block.Clock.
func (c *DeterministicClock) Now() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := Epoch.Add(time.Duration(c.seq) * time.Second).Format(block.TimestampLayout)
	c.seq++
	return ts
}

// Calls returns how many timestamps have been issued.
func (c *DeterministicClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset restarts the sequence at Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
