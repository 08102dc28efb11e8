package output

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	exits  []ExitOutcome
	order  []string
}

func (r *recordingSink) HandleLine(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.order = append(r.order, ev.String())
}

func (r *recordingSink) HandleExit(out ExitOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits = append(r.exits, out)
	r.order = append(r.order, fmt.Sprintf("exit %d", out.Label()))
}

func TestMultiplexer_DeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	m := NewMultiplexer(sink, 4)

	for i := 0; i < 100; i++ {
		require.NoError(t, m.Send(Event{Index: 0, Line: fmt.Sprintf("line %d", i)}))
	}
	require.NoError(t, m.Exit(ExitOutcome{Index: 0, Code: 0}))
	m.Close()

	require.Len(t, sink.events, 100)
	for i, ev := range sink.events {
		assert.Equal(t, fmt.Sprintf("line %d", i), ev.Line)
	}
	assert.Equal(t, "exit 1", sink.order[len(sink.order)-1])
	assert.Equal(t, int64(100), m.Lines())
}

func TestMultiplexer_ConcurrentProducers(t *testing.T) {
	sink := &recordingSink{}
	m := NewMultiplexer(sink, 8)

	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = m.Send(Event{Index: idx, Stream: Stream(i % 2), Line: fmt.Sprintf("%d-%d", idx, i)})
			}
		}(p)
	}
	wg.Wait()
	m.Close()

	require.Len(t, sink.events, producers*perProducer)

	// Per-producer order is preserved.
	next := make(map[int]int)
	for _, ev := range sink.events {
		assert.Equal(t, fmt.Sprintf("%d-%d", ev.Index, next[ev.Index]), ev.Line)
		next[ev.Index]++
	}
}

func TestMultiplexer_Backpressure(t *testing.T) {
	release := make(chan struct{})
	sink := SinkFuncs{Line: func(Event) { <-release }}
	m := NewMultiplexer(sink, 1)

	sent := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			_ = m.Send(Event{Line: "x"})
		}
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("expected producer to block while the sink is stalled")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not resume after the sink drained")
	}
	m.Close()
}

func TestMultiplexer_SendAfterClose(t *testing.T) {
	m := NewMultiplexer(nil, 0)
	m.Close()
	m.Close()

	assert.ErrorIs(t, m.Send(Event{Line: "late"}), ErrClosed)
	assert.ErrorIs(t, m.Exit(ExitOutcome{}), ErrClosed)
}

func TestMultiplexer_SinkPanicDoesNotStopDrain(t *testing.T) {
	var got []string
	sink := SinkFuncs{Line: func(ev Event) {
		if ev.Line == "bad" {
			panic("sink failure")
		}
		got = append(got, ev.Line)
	}}
	m := NewMultiplexer(sink, 0)

	_ = m.Send(Event{Line: "a"})
	_ = m.Send(Event{Line: "bad"})
	_ = m.Send(Event{Line: "b"})
	m.Close()

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, int64(1), m.SinkPanics())
}
