// Package app provides the application structure for ghop. It wires a
// command list, the supervisor and a presentation (plain lines, JSON lines
// or the interactive viewer) into a single run.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/dshills/ghop/internal/integration/output"
	"github.com/dshills/ghop/internal/integration/process"
	"github.com/dshills/ghop/internal/renderer/backend"
	"github.com/dshills/ghop/internal/renderer/viewer"
)

// Format selects how non-interactive output is written.
type Format string

const (
	// FormatPlain writes "[i] line" and "[i][err] line".
	FormatPlain Format = "plain"
	// FormatJSON writes one JSON object per line or exit event.
	FormatJSON Format = "json"
)

// ParseFormat parses an output format name. The empty string is plain.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatPlain:
		return FormatPlain, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w %q (must be plain or json)", ErrInvalidFormat, s)
	}
}

// Options configures the application.
type Options struct {
	// Commands are the commands to run, in label order.
	Commands []process.CommandSpec

	// TUI selects the interactive viewer instead of line output.
	TUI bool

	// Format selects the line output format when TUI is false.
	Format Format

	// Shell overrides the shell and its leading arguments, e.g. ["bash", "-c"].
	// A single word keeps the platform's leading arguments.
	Shell []string

	// BufferSize bounds the pending output queue. Zero uses the default.
	BufferSize int

	// Stdout and Stderr receive line output. Default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// Logger receives diagnostics. Defaults to NullLogger.
	Logger *Logger

	// IsTerminal reports whether the viewer can take over the terminal.
	// Defaults to checking stdin and stdout.
	IsTerminal func() bool

	// Backend is the viewer's screen. Defaults to the real terminal.
	Backend backend.Backend
}

// Application runs one command list to completion.
type Application struct {
	opts     Options
	logger   *Logger
	launcher *process.Launcher

	running atomic.Bool
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	if len(opts.Commands) == 0 {
		return nil, process.ErrNoCommands
	}

	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	opts.Format = format

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = NullLogger
	}
	if opts.IsTerminal == nil {
		opts.IsTerminal = stdioIsTerminal
	}

	return &Application{
		opts:     opts,
		logger:   opts.Logger.WithComponent("app"),
		launcher: newLauncher(opts.Shell),
	}, nil
}

func newLauncher(shell []string) *process.Launcher {
	if len(shell) == 0 {
		return process.NewLauncher()
	}
	args := shell[1:]
	if len(args) == 0 {
		_, args = process.NewLauncher().Shell()
	}
	return process.NewLauncher(process.WithShell(shell[0], args...))
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Launcher returns the launcher commands are started with.
func (a *Application) Launcher() *process.Launcher {
	return a.launcher
}

// Run executes every command and returns the aggregate exit code.
// A non-nil error means the run could not be carried out; the code is
// then 1.
func (a *Application) Run(ctx context.Context) (int, error) {
	if !a.running.CompareAndSwap(false, true) {
		return 1, ErrAlreadyRunning
	}
	defer a.running.Store(false)

	shell, args := a.launcher.Shell()
	a.logger.Debug("running %d commands with %s %s", len(a.opts.Commands), shell, strings.Join(args, " "))

	if a.opts.TUI {
		return a.runViewer(ctx)
	}

	var sink output.Sink
	switch a.opts.Format {
	case FormatJSON:
		sink = output.NewJSONSink(a.opts.Stdout)
	default:
		sink = output.NewPlainSink(a.opts.Stdout, a.opts.Stderr)
	}

	res, err := a.newSupervisor(sink).Run(ctx, a.opts.Commands)
	if err != nil {
		return 1, err
	}
	a.logResult(res)
	return res.Code, nil
}

func (a *Application) newSupervisor(sink output.Sink, opts ...process.SupervisorOption) *process.Supervisor {
	return process.NewSupervisor(append([]process.SupervisorOption{
		process.WithLauncher(a.launcher),
		process.WithSink(sink),
		process.WithBufferSize(a.opts.BufferSize),
		process.WithLogger(a.opts.Logger.Zap()),
	}, opts...)...)
}

// runViewer shows the interactive viewer until the user quits, then stops
// whatever is still running.
func (a *Application) runViewer(ctx context.Context) (int, error) {
	if !a.opts.IsTerminal() {
		return 1, ErrNotInteractive
	}

	b := a.opts.Backend
	if b == nil {
		t, err := backend.NewTerminal()
		if err != nil {
			return 1, NewComponentError("viewer", "open terminal", err)
		}
		b = t
	}

	var sup *process.Supervisor
	v := viewer.New(b, a.opts.Commands, viewer.WithQuitHandler(func() {
		a.logRunning(sup)
		if sup.KillAll() {
			a.logger.Info("quit requested, stopping commands")
		}
	}))
	sup = a.newSupervisor(v)

	type runResult struct {
		res *process.Result
		err error
	}
	done := make(chan runResult, 1)
	go func() {
		res, err := sup.Run(ctx, a.opts.Commands)
		done <- runResult{res, err}
	}()

	viewErr := v.Run(ctx)
	sup.KillAll()
	r := <-done

	if viewErr != nil && ctx.Err() == nil {
		return 1, NewComponentError("viewer", "run", viewErr)
	}
	if r.err != nil {
		return 1, r.err
	}
	a.logResult(r.res)
	return r.res.Code, nil
}

// logRunning lists the commands a quit is about to stop.
func (a *Application) logRunning(sup *process.Supervisor) {
	if !a.logger.Enabled(LogLevelInfo) {
		return
	}
	running := sup.List()
	sort.Slice(running, func(i, j int) bool { return running[i].Index < running[j].Index })
	for _, p := range running {
		a.logger.Info("stopping command %d: %s", p.Index+1, p.Spec.Text)
	}
}

func (a *Application) logResult(res *process.Result) {
	if !a.logger.Enabled(LogLevelInfo) {
		return
	}
	for _, o := range res.Outcomes {
		a.logger.Info("command %d exited with %d (timed out: %t, canceled: %t)",
			o.Label(), o.Code, o.TimedOut, o.Canceled)
	}
	a.logger.Info("run %s finished in %s with code %d", res.ID, res.Duration, res.Code)
}
