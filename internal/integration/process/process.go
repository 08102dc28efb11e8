package process

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/multierr"
)

// State represents the state of a process.
type State int

const (
	// StateCreated indicates the process has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process has exited normally or with an error.
	StateExited
	// StateKilled indicates the process was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// terminateReason records who asked for a termination.
type terminateReason int

const (
	reasonRequest terminateReason = iota
	reasonTimeout
	reasonCancel
)

// Process represents one launched command.
//
// Process wraps an exec.Cmd with exit tracking and a race-free terminate
// operation. It is safe for concurrent use.
type Process struct {
	// ID is the unique identifier for this process.
	ID string

	// Index is the 0-based position of the command in the input list.
	Index int

	// Spec is the command this process runs.
	Spec CommandSpec

	// Cmd is the underlying exec.Cmd.
	Cmd *exec.Cmd

	// Stdout provides read access to the process's stdout.
	Stdout io.ReadCloser

	// Stderr provides read access to the process's stderr.
	Stderr io.ReadCloser

	// Started is the time the process was started.
	Started time.Time

	// done is closed when the process exits.
	done chan struct{}

	// state tracks the current process state.
	state atomic.Int32

	// exitCode stores the exit code after the process exits.
	exitCode atomic.Int32

	// mu guards the fields below. Termination decisions are made under it.
	mu          sync.Mutex
	exited      bool
	killed      bool
	groupKilled bool
	timedOut    bool
	canceled bool
	exitErr  error
	killErr  error

	// waitOnce ensures Wait is only called once.
	waitOnce sync.Once
	// closeOnce ensures the read ends are closed once.
	closeOnce sync.Once
	closeErr  error
}

func newProcess(id string, index int, spec CommandSpec, cmd *exec.Cmd) *Process {
	p := &Process{
		ID:    id,
		Index: index,
		Spec:  spec,
		Cmd:   cmd,
		done:  make(chan struct{}),
	}
	p.state.Store(int32(StateCreated))
	p.exitCode.Store(-1) // -1 indicates not exited
	return p
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// ExitCode returns the process exit code.
// Returns -1 if the process has not exited or was killed by a signal.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// ExitError returns the error from waiting on the process. It is an
// *exec.ExitError for a non-zero exit and nil for success.
func (p *Process) ExitError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// Done returns a channel that is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// IsRunning returns true if the process is currently running.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// HasExited returns true if the process has exited (normally or killed).
func (p *Process) HasExited() bool {
	state := p.State()
	return state == StateExited || state == StateKilled
}

// PID returns the process ID, or -1 if not started.
func (p *Process) PID() int {
	if p.Cmd.Process == nil {
		return -1
	}
	return p.Cmd.Process.Pid
}

// TimedOut reports whether the watchdog terminated the process.
func (p *Process) TimedOut() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timedOut
}

// Canceled reports whether a cancellation request terminated the process.
func (p *Process) Canceled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canceled
}

// Terminate kills the process and its process group if it is still running.
//
// It returns true if this call delivered the kill and false if the process
// had already exited or was already killed. Terminate does not wait; use
// Done to wait for the exit.
func (p *Process) Terminate() bool {
	return p.terminate(reasonRequest)
}

// terminate performs the check-then-kill sequence under p.mu.
func (p *Process) terminate(reason terminateReason) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.exited || p.killed || p.Cmd.Process == nil {
		return false
	}

	p.killed = true
	p.killErr = killProcessTree(p.Cmd.Process)

	p.markReason(reason)
	return true
}

// terminateGroup kills what is left of the process group after the leader
// exited on its own, e.g. a backgrounded child still holding the output
// pipes. It delivers at most one kill and never after terminate did.
func (p *Process) terminateGroup(reason terminateReason) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.exited || p.killed || p.groupKilled || p.Cmd.Process == nil {
		return false
	}

	p.groupKilled = true
	p.killErr = killGroup(p.Cmd.Process.Pid)
	p.markReason(reason)
	return true
}

func (p *Process) markReason(reason terminateReason) {
	switch reason {
	case reasonTimeout:
		p.timedOut = true
	case reasonCancel:
		p.canceled = true
	}
}

// KillError returns the error from the kill attempt, if any.
func (p *Process) KillError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killErr
}

// start starts the process and begins tracking it.
func (p *Process) start() error {
	if err := p.Cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}

	p.Started = time.Now()
	p.state.Store(int32(StateRunning))

	go p.waitLoop()

	return nil
}

// waitLoop waits for the process to exit and updates state.
func (p *Process) waitLoop() {
	p.waitOnce.Do(func() {
		err := p.Cmd.Wait()

		exitCode := 0
		state := StateExited

		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
				if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
					state = StateKilled
				}
			} else {
				exitCode = -1
			}
		}

		p.mu.Lock()
		p.exited = true
		p.exitErr = err
		p.mu.Unlock()

		p.exitCode.Store(int32(exitCode))
		p.state.Store(int32(state))
		close(p.done)
	})
}

// Close closes the read ends of the output pipes.
// This does not kill the process. Blocked readers return an error.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		if p.Stdout != nil {
			p.closeErr = multierr.Append(p.closeErr, wrapClose("stdout", p.Stdout.Close()))
		}
		if p.Stderr != nil {
			p.closeErr = multierr.Append(p.closeErr, wrapClose("stderr", p.Stderr.Close()))
		}
	})
	return p.closeErr
}

func wrapClose(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("close %s: %w", name, err)
}

// Runtime returns the duration the process has been running.
func (p *Process) Runtime() time.Duration {
	if p.Started.IsZero() {
		return 0
	}
	return time.Since(p.Started)
}

// Sentinel errors for process package.
var (
	// ErrSpawnFailed is returned when the shell could not be started.
	ErrSpawnFailed = errors.New("failed to start command")
)
