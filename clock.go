package busk

import "sync/atomic"

// Clock supplies the logical timestamps recorded on sessions and tips.
// Ticks are opaque monotonic sequence numbers, not wall time — on a chain
// host this would be the block height, in a service the transaction order.
type Clock interface {
	Now() uint64
}

// ClockFunc adapts a plain function to a Clock.
type ClockFunc func() uint64

// Now implements Clock.
func (f ClockFunc) Now() uint64 { return f() }

// SequenceClock is the default Clock: a process-local counter that advances
// by one on every reading.
type SequenceClock struct {
	tick atomic.Uint64
}

// NewSequenceClock creates a SequenceClock starting at tick 1.
func NewSequenceClock() *SequenceClock {
	return &SequenceClock{}
}

// Now implements Clock.
func (c *SequenceClock) Now() uint64 {
	return c.tick.Add(1)
}
