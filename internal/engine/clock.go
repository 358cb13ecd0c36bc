package engine

import "sync/atomic"

// Clock is the logical clock stamping dispatched jobs.
//
// Every ScheduledJob handed to a sink carries a strictly increasing seq
// number, so the dispatch order can be recorded and replayed without relying
// on wall-clock time.
//
// Thread-safety: Clock is safe for concurrent use. Several calculation
// streams may share one clock to obtain a global dispatch order.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming after a recorded sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
