package output

import (
	"io"
	"sync"
)

// PlainSink writes labeled lines to a stdout/stderr writer pair.
//
// Stdout lines are written as "[i] line", stderr lines as "[i][err] line".
// Each line is a single Write call.
type PlainSink struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// NewPlainSink creates a sink writing to the given writers.
func NewPlainSink(stdout, stderr io.Writer) *PlainSink {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &PlainSink{stdout: stdout, stderr: stderr}
}

// HandleLine implements Sink.
func (s *PlainSink) HandleLine(ev Event) {
	buf := make([]byte, 0, len(ev.Line)+16)
	buf = append(buf, ev.Prefix()...)
	buf = append(buf, ev.Line...)
	buf = append(buf, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Stream == StreamStderr {
		_, _ = s.stderr.Write(buf)
		return
	}
	_, _ = s.stdout.Write(buf)
}

// HandleExit implements Sink. Plain output reports exits only through the
// aggregate exit status.
func (s *PlainSink) HandleExit(ExitOutcome) {}
