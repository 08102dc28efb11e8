package process

import (
	"sync"
	"sync/atomic"
)

// CancelSignal is a one-shot broadcast stop condition.
//
// It moves from not-requested to requested exactly once and never resets.
// Any number of goroutines may wait on Done.
type CancelSignal struct {
	once      sync.Once
	ch        chan struct{}
	requested atomic.Bool
}

// NewCancelSignal creates a signal in the not-requested state.
func NewCancelSignal() *CancelSignal {
	return &CancelSignal{ch: make(chan struct{})}
}

// Request sets the signal. It returns true only for the call that set it.
func (c *CancelSignal) Request() bool {
	first := false
	c.once.Do(func() {
		c.requested.Store(true)
		close(c.ch)
		first = true
	})
	return first
}

// Done returns a channel that is closed once cancellation is requested.
func (c *CancelSignal) Done() <-chan struct{} {
	return c.ch
}

// Requested reports whether cancellation has been requested.
func (c *CancelSignal) Requested() bool {
	return c.requested.Load()
}
