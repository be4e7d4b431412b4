package session

import "sync/atomic"

// Clock is a monotonic logical clock for step ordering.
//
// Every journaled step is stamped with a strictly increasing seq number
// from this clock. Logical time avoids wall-clock race conditions and
// makes replay order explicit.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the session's single-writer design means only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used when resuming a session from an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
