package process

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Spec validation errors.
var (
	// ErrEmptyCommand is returned for a spec without command text.
	ErrEmptyCommand = errors.New("command text is empty")

	// ErrInvalidTimeout is returned for a negative timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)

// CommandSpec describes one unit of work: shell text and an optional timeout.
// A zero Timeout means the command may run indefinitely.
type CommandSpec struct {
	// Text is passed verbatim to the shell.
	Text string

	// Timeout is the maximum run time. Zero disables the watchdog.
	Timeout time.Duration
}

// Validate checks the spec.
func (s CommandSpec) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptyCommand
	}
	if s.Timeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// HasTimeout reports whether a timeout is configured.
func (s CommandSpec) HasTimeout() bool {
	return s.Timeout > 0
}

// Specs builds CommandSpecs without timeouts from plain command strings.
func Specs(commands ...string) []CommandSpec {
	specs := make([]CommandSpec, len(commands))
	for i, c := range commands {
		specs[i] = CommandSpec{Text: c}
	}
	return specs
}

// FormatSeconds formats d as a number of seconds without trailing zeros,
// e.g. "1", "1.5", "0.25".
func FormatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10)
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
