package output

import (
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is the default capacity of the multiplexer channel.
const DefaultBufferSize = 1024

// ErrClosed is returned when sending to a closed multiplexer.
var ErrClosed = errors.New("multiplexer closed")

// Sink consumes multiplexed output.
//
// A Sink is only ever called from the multiplexer's draining goroutine, one
// call at a time.
type Sink interface {
	// HandleLine is called once for every output line.
	HandleLine(ev Event)

	// HandleExit is called once per command after all of its lines.
	HandleExit(out ExitOutcome)
}

// SinkFuncs adapts plain functions to the Sink interface.
// Nil functions are skipped.
type SinkFuncs struct {
	Line func(ev Event)
	Exit func(out ExitOutcome)
}

// HandleLine implements Sink.
func (f SinkFuncs) HandleLine(ev Event) {
	if f.Line != nil {
		f.Line(ev)
	}
}

// HandleExit implements Sink.
func (f SinkFuncs) HandleExit(out ExitOutcome) {
	if f.Exit != nil {
		f.Exit(out)
	}
}

type message struct {
	line Event
	exit *ExitOutcome
}

// Multiplexer fans in events from many producers and delivers them to a
// single Sink in arrival order.
//
// Producers block when the buffer is full. Multiplexer is safe for
// concurrent use.
type Multiplexer struct {
	sink Sink
	ch   chan message
	done chan struct{}

	// mu guards closed against concurrent Send/Close.
	mu     sync.RWMutex
	closed bool

	lines  atomic.Int64
	panics atomic.Int64
}

// NewMultiplexer creates a multiplexer draining into sink.
// A non-positive buffer uses DefaultBufferSize.
func NewMultiplexer(sink Sink, buffer int) *Multiplexer {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	if sink == nil {
		sink = SinkFuncs{}
	}

	m := &Multiplexer{
		sink: sink,
		ch:   make(chan message, buffer),
		done: make(chan struct{}),
	}
	go m.drain()
	return m
}

// Send queues a line event, blocking while the buffer is full.
func (m *Multiplexer) Send(ev Event) error {
	return m.put(message{line: ev})
}

// Exit queues a command's exit outcome.
func (m *Multiplexer) Exit(out ExitOutcome) error {
	return m.put(message{exit: &out})
}

func (m *Multiplexer) put(msg message) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	m.ch <- msg
	return nil
}

// Close stops accepting events and waits until every queued event has been
// delivered. Close is idempotent.
func (m *Multiplexer) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.ch)
	}
	m.mu.Unlock()

	<-m.done
}

// Done returns a channel that is closed once the sink has received every event.
func (m *Multiplexer) Done() <-chan struct{} {
	return m.done
}

// Lines returns the number of line events delivered so far.
func (m *Multiplexer) Lines() int64 {
	return m.lines.Load()
}

// SinkPanics returns the number of sink calls that panicked.
func (m *Multiplexer) SinkPanics() int64 {
	return m.panics.Load()
}

func (m *Multiplexer) drain() {
	defer close(m.done)

	for msg := range m.ch {
		m.deliver(msg)
	}
}

// deliver calls the sink, keeping the drain loop alive if the sink panics.
func (m *Multiplexer) deliver(msg message) {
	defer func() {
		if r := recover(); r != nil {
			m.panics.Add(1)
		}
	}()

	if msg.exit != nil {
		m.sink.HandleExit(*msg.exit)
		return
	}
	m.lines.Add(1)
	m.sink.HandleLine(msg.line)
}
