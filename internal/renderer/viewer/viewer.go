// Package viewer implements the interactive terminal view of running
// commands: one tab and one output pane per command.
package viewer

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/dshills/ghop/internal/integration/output"
	"github.com/dshills/ghop/internal/integration/process"
	"github.com/dshills/ghop/internal/renderer/backend"
)

const (
	// MaxVisibleLines bounds how many lines a pane renders.
	MaxVisibleLines = 1000

	// HelpText is shown on the bottom row.
	HelpText = "q=quit  ←/→=pane  Tab=next  Shift-Tab=prev"

	errPrefix = "[err] "
)

// ansiPattern matches CSI and OSC escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)

// Viewer is an output.Sink that renders each command in its own pane.
//
// HandleLine and HandleExit may be called from any goroutine; Run owns the
// backend and redraws whenever new output arrives.
type Viewer struct {
	backend backend.Backend
	titles  []string

	mu       sync.Mutex
	panes    []*LineBuffer
	selected int

	retention int
	onQuit    func()
	wake      atomic.Bool
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithRetention sets the per-command line retention.
func WithRetention(n int) Option {
	return func(v *Viewer) {
		if n > 0 {
			v.retention = n
		}
	}
}

// WithQuitHandler sets a function called once when the user quits.
func WithQuitHandler(fn func()) Option {
	return func(v *Viewer) {
		v.onQuit = fn
	}
}

// New creates a viewer for the given commands.
func New(b backend.Backend, specs []process.CommandSpec, opts ...Option) *Viewer {
	v := &Viewer{
		backend:   b,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.titles = make([]string, len(specs))
	v.panes = make([]*LineBuffer, len(specs))
	for i, spec := range specs {
		v.titles[i] = fmt.Sprintf("%d: %s", i+1, spec.Text)
		v.panes[i] = NewLineBuffer(v.retention)
	}
	return v
}

// HandleLine implements output.Sink.
func (v *Viewer) HandleLine(ev output.Event) {
	line := ansiPattern.ReplaceAllString(ev.Line, "")
	if ev.Stream == output.StreamStderr {
		line = errPrefix + line
	}
	v.appendLine(ev.Index, line)
}

// HandleExit implements output.Sink.
func (v *Viewer) HandleExit(out output.ExitOutcome) {
	v.appendLine(out.Index, statusLine(out))
}

func statusLine(out output.ExitOutcome) string {
	if out.TimedOut {
		return "[timed out]"
	}
	return fmt.Sprintf("[exit %d]", out.Code)
}

func (v *Viewer) appendLine(index int, line string) {
	v.mu.Lock()
	if index < 0 || index >= len(v.panes) {
		v.mu.Unlock()
		return
	}
	v.panes[index].Append(line)
	v.mu.Unlock()

	// Coalesce redraw requests until the loop picks one up.
	if v.wake.CompareAndSwap(false, true) {
		v.backend.PostWakeup()
	}
}

// Selected returns the index of the visible pane.
func (v *Viewer) Selected() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// Lines returns the retained lines of a pane.
func (v *Viewer) Lines(index int) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index < 0 || index >= len(v.panes) {
		return nil
	}
	return v.panes[index].Lines()
}

// Run initializes the backend and processes events until the user quits or
// ctx is done. The quit handler runs before Run returns on a quit key.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.backend.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer v.backend.Shutdown()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			v.backend.PostWakeup()
		case <-stop:
		}
	}()

	v.draw()
	for {
		ev := v.backend.PollEvent()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch ev.Type {
		case backend.EventKey:
			if v.handleKey(ev) {
				if v.onQuit != nil {
					v.onQuit()
				}
				return nil
			}
		case backend.EventClosed:
			return nil
		}

		v.draw()
	}
}

// handleKey applies a key event and reports whether it requests quitting.
func (v *Viewer) handleKey(ev backend.Event) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := len(v.panes)
	switch ev.Key {
	case backend.KeyCtrlC:
		return true
	case backend.KeyRune:
		switch {
		case ev.Rune == 'q' || ev.Rune == 'Q':
			return true
		case ev.Rune == 'c' && ev.Mod.Has(backend.ModCtrl):
			return true
		}
	case backend.KeyLeft:
		if v.selected > 0 {
			v.selected--
		}
	case backend.KeyRight:
		if v.selected < n-1 {
			v.selected++
		}
	case backend.KeyTab:
		if n > 0 {
			v.selected = (v.selected + 1) % n
		}
	case backend.KeyBacktab:
		if n > 0 {
			v.selected = (v.selected + n - 1) % n
		}
	}
	return false
}
