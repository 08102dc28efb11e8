package process

import (
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/ghop/internal/integration/output"
)

// skipOnWindows skips tests that rely on POSIX shell syntax.
func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// captureSink records everything the multiplexer delivers.
type captureSink struct {
	mu    sync.Mutex
	lines []string
	exits []output.ExitOutcome
	order []string
}

func (c *captureSink) HandleLine(ev output.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, ev.String())
	c.order = append(c.order, ev.String())
}

func (c *captureSink) HandleExit(out output.ExitOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exits = append(c.exits, out)
	c.order = append(c.order, "exit:"+output.Prefix(out.Index, output.StreamStdout))
}

func (c *captureSink) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *captureSink) Order() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

func (c *captureSink) Contains(line string) bool {
	for _, l := range c.Lines() {
		if l == line {
			return true
		}
	}
	return false
}

func (c *captureSink) Joined() string {
	return strings.Join(c.Lines(), "\n")
}
