package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/ghop/internal/integration/output"
)

// Exit codes with fixed meaning.
const (
	// TimeoutExitCode is reported for a command killed by its watchdog.
	TimeoutExitCode = 124

	// SpawnFailureCode is reported for a command whose shell could not start.
	SpawnFailureCode = -1

	// InternalFailureCode is reported when supervising a command fails
	// unexpectedly, and replaces negative codes in the aggregate.
	InternalFailureCode = 1
)

// readerDrainGrace bounds how long a killed command's readers may keep
// draining before their pipes are closed. Descendants that escaped the
// process group can otherwise hold the pipes open indefinitely.
const readerDrainGrace = 2 * time.Second

// Result is the outcome of a Supervisor run.
type Result struct {
	// ID identifies the run in logs.
	ID string

	// Code is the aggregate exit code.
	Code int

	// Outcomes holds one entry per command, in completion order.
	Outcomes []output.ExitOutcome

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Outcome returns the outcome for the command at index.
func (r *Result) Outcome(index int) (output.ExitOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Index == index {
			return o, true
		}
	}
	return output.ExitOutcome{}, false
}

// Supervisor runs a list of commands concurrently and resolves them to one
// exit code.
//
// The Supervisor provides:
//   - Concurrent launch of every command
//   - Per-command timeout enforcement
//   - Serialized, labeled output through an output.Multiplexer
//   - Cooperative cancellation of all running commands
//
// Supervisor is safe for concurrent use, but runs one command list at a time.
type Supervisor struct {
	mu        sync.RWMutex
	processes map[string]*Process

	launcher   *Launcher
	sink       output.Sink
	bufferSize int
	cancel     *CancelSignal
	logger     *zap.Logger

	// running is set while Run is active.
	running atomic.Bool

	// onProcessExit is called after a process exits and its output is drained.
	onProcessExit func(p *Process)
}

// SupervisorOption configures a Supervisor instance.
type SupervisorOption func(*Supervisor)

// WithLauncher sets the launcher used to start commands.
func WithLauncher(l *Launcher) SupervisorOption {
	return func(s *Supervisor) {
		if l != nil {
			s.launcher = l
		}
	}
}

// WithSink sets the presentation sink receiving output.
func WithSink(sink output.Sink) SupervisorOption {
	return func(s *Supervisor) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithBufferSize sets the multiplexer channel capacity.
func WithBufferSize(n int) SupervisorOption {
	return func(s *Supervisor) {
		s.bufferSize = n
	}
}

// WithCancelSignal shares a cancellation signal with the supervisor.
func WithCancelSignal(c *CancelSignal) SupervisorOption {
	return func(s *Supervisor) {
		if c != nil {
			s.cancel = c
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProcessExitCallback sets a callback for when processes exit.
// A panicking callback is treated as an internal failure of that command.
func WithProcessExitCallback(fn func(p *Process)) SupervisorOption {
	return func(s *Supervisor) {
		s.onProcessExit = fn
	}
}

// NewSupervisor creates a new supervisor. By default it launches through the
// platform shell and prints labeled lines to os.Stdout and os.Stderr.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		processes:  make(map[string]*Process),
		launcher:   NewLauncher(),
		sink:       output.NewPlainSink(os.Stdout, os.Stderr),
		bufferSize: output.DefaultBufferSize,
		cancel:     NewCancelSignal(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run launches every spec concurrently and blocks until each one has
// reported an exit outcome and all output has reached the sink.
//
// An empty list returns ErrNoCommands and an invalid spec returns
// ErrInvalidSpec; nothing is launched in either case. Cancelling ctx has the
// same effect as Cancel.
func (s *Supervisor) Run(ctx context.Context, specs []CommandSpec) (*Result, error) {
	if len(specs) == 0 {
		return nil, ErrNoCommands
	}
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: command %d: %w", ErrInvalidSpec, i+1, err)
		}
	}

	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	res := &Result{ID: uuid.New().String()}
	log := s.logger.With(zap.String("run", res.ID))
	start := time.Now()

	log.Debug("starting commands", zap.Int("count", len(specs)))

	mux := output.NewMultiplexer(s.sink, s.bufferSize)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			if s.cancel.Request() {
				log.Info("context done, canceling commands", zap.Error(ctx.Err()))
			}
		case <-stop:
		}
	}()

	results := make(chan output.ExitOutcome, len(specs))
	for i, spec := range specs {
		go func(index int, spec CommandSpec) {
			out := s.supervise(index, spec, mux, log)
			_ = mux.Exit(out)
			results <- out
		}(i, spec)
	}

	res.Outcomes = make([]output.ExitOutcome, 0, len(specs))
	for range specs {
		res.Outcomes = append(res.Outcomes, <-results)
	}

	mux.Close()

	res.Code = AggregateCode(res.Outcomes)
	res.Duration = time.Since(start)

	log.Debug("commands finished",
		zap.Int("code", res.Code),
		zap.Duration("duration", res.Duration),
		zap.Int64("lines", mux.Lines()),
	)

	return res, nil
}

// supervise runs one command to completion. It always returns an outcome.
func (s *Supervisor) supervise(index int, spec CommandSpec, mux *output.Multiplexer, log *zap.Logger) (out output.ExitOutcome) {
	log = log.With(zap.Int("command", index+1))

	var (
		proc    *Process
		readers sync.WaitGroup
	)
	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Value: r, Stack: string(debug.Stack())}
			log.Error("command supervision failed", zap.Any("panic", r))
			if proc != nil {
				proc.Terminate()
				<-proc.Done()
				_ = proc.Close()
				readers.Wait()
			}
			out = output.ExitOutcome{Index: index, Code: InternalFailureCode, Err: err}
		}
	}()

	p, err := s.launcher.Launch(index, spec)
	if err != nil {
		log.Warn("spawn failed", zap.Error(err))
		_ = mux.Send(output.Event{
			Index:  index,
			Stream: output.StreamStderr,
			Line:   err.Error(),
		})
		return output.ExitOutcome{Index: index, Code: SpawnFailureCode, Err: err}
	}
	proc = p

	s.track(p)
	defer s.untrack(p)
	defer func() { _ = p.Close() }()

	log.Debug("started", zap.String("id", p.ID), zap.Int("pid", p.PID()), zap.String("cmd", spec.Text))

	readers.Add(2)
	go s.pump(&readers, mux, index, output.StreamStdout, p)
	go s.pump(&readers, mux, index, output.StreamStderr, p)

	wd := StartWatchdog(p, spec.Timeout)

	select {
	case <-p.Done():
	case <-s.cancel.Done():
		if p.terminate(reasonCancel) {
			log.Debug("terminating on cancel")
		}
		<-p.Done()
	}
	wd.Stop()
	if wd.Fired() {
		log.Debug("watchdog fired", zap.Duration("timeout", spec.Timeout))
	}

	if err := p.ExitError(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			log.Warn("wait failed", zap.Error(err))
		}
	}

	s.waitReaders(&readers, p, spec.Timeout, log)

	if s.onProcessExit != nil {
		s.onProcessExit(p)
	}

	out = output.ExitOutcome{
		Index:    index,
		Code:     p.ExitCode(),
		TimedOut: p.TimedOut(),
		Canceled: p.Canceled(),
	}

	if out.TimedOut {
		out.Code = TimeoutExitCode
		log.Info("timed out", zap.Duration("timeout", spec.Timeout))
		_ = mux.Send(output.Event{
			Index:  index,
			Stream: output.StreamStderr,
			Line:   fmt.Sprintf("command timed out after %ss", FormatSeconds(spec.Timeout)),
		})
	}

	log.Debug("exited", zap.Int("code", out.Code), zap.Duration("runtime", p.Runtime()))
	return out
}

// pump forwards one stream of p to the multiplexer, line by line.
func (s *Supervisor) pump(wg *sync.WaitGroup, mux *output.Multiplexer, index int, stream output.Stream, p *Process) {
	defer wg.Done()

	r := p.Stdout
	if stream == output.StreamStderr {
		r = p.Stderr
	}

	_ = output.ReadLines(r, func(line string) {
		_ = mux.Send(output.Event{Index: index, Stream: stream, Line: line})
	})
}

// waitReaders waits for both readers.
//
// When the leader exited on its own, other members of its process group may
// still hold the pipes. Cancellation and the command's timeout stay in force
// until the output is drained; either one kills the remaining group. A killed
// command gets readerDrainGrace before its pipes are closed.
func (s *Supervisor) waitReaders(readers *sync.WaitGroup, p *Process, timeout time.Duration, log *zap.Logger) {
	drained := make(chan struct{})
	go func() {
		readers.Wait()
		close(drained)
	}()

	if !p.TimedOut() && !p.Canceled() {
		select {
		case <-drained:
			return
		default:
		}

		var deadline <-chan time.Time
		if timeout > 0 {
			t := time.NewTimer(time.Until(p.Started.Add(timeout)))
			defer t.Stop()
			deadline = t.C
		}

		select {
		case <-drained:
			return
		case <-s.cancel.Done():
			if p.terminateGroup(reasonCancel) {
				log.Debug("killing lingering group on cancel")
			}
		case <-deadline:
			if p.terminateGroup(reasonTimeout) {
				log.Debug("killing lingering group on timeout")
			}
		}
	}

	select {
	case <-drained:
	case <-time.After(readerDrainGrace):
		log.Warn("output still open after kill, closing pipes")
		_ = p.Close()
		<-drained
	}
}

func (s *Supervisor) track(p *Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes[p.ID] = p
}

func (s *Supervisor) untrack(p *Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processes, p.ID)
}

// Cancel requests termination of every running command. It is the entry
// point for presentation layers (quit key, signals). It returns true for the
// first request only.
func (s *Supervisor) Cancel() bool {
	return s.cancel.Request()
}

// KillAll terminates every command still running, using the same path as
// Cancel. It reports whether this call issued the request.
func (s *Supervisor) KillAll() bool {
	return s.Cancel()
}

// CancelSignal returns the supervisor's cancellation signal.
func (s *Supervisor) CancelSignal() *CancelSignal {
	return s.cancel
}

// List returns all running processes.
func (s *Supervisor) List() []*Process {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Process, 0, len(s.processes))
	for _, p := range s.processes {
		result = append(result, p)
	}
	return result
}

// Count returns the number of running processes.
func (s *Supervisor) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.processes)
}

// IsRunning reports whether Run is in progress.
func (s *Supervisor) IsRunning() bool {
	return s.running.Load()
}

// AggregateCode resolves outcomes, in completion order, to one exit code.
//
// It returns 0 if every code is 0. Otherwise it returns the code of the
// last non-zero outcome; a negative code becomes InternalFailureCode.
func AggregateCode(outcomes []output.ExitOutcome) int {
	code := 0
	for _, o := range outcomes {
		if o.Code != 0 {
			code = o.Code // last non-zero wins
		}
	}
	if code < 0 {
		return InternalFailureCode
	}
	return code
}

// PanicError wraps a panic recovered while supervising a command.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Sentinel errors.
var (
	// ErrNoCommands is returned when Run is given an empty list.
	ErrNoCommands = errors.New("no commands provided")

	// ErrInvalidSpec is returned when a command spec fails validation.
	ErrInvalidSpec = errors.New("invalid command")

	// ErrAlreadyRunning is returned when Run is called during another run.
	ErrAlreadyRunning = errors.New("supervisor is already running")
)
