package runner

import "sync/atomic"

// Clock is the monotonic logical clock for run ordering.
//
// Every run event (run start, each check, run finish) is stamped with a
// strictly increasing seq number from this clock. This ensures:
// - Deterministic ordering (no wall-clock race conditions)
// - Replay produces identical order
// - Ledger rows sort the same way on every machine
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// However, the runner walks a suite sequentially, so only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to resume stamping after the last seq recorded in a ledger.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
