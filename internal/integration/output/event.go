package output

import "fmt"

// Stream identifies the source stream of a line.
type Stream int

const (
	// StreamStdout is standard output.
	StreamStdout Stream = iota
	// StreamStderr is standard error.
	StreamStderr
)

// String returns the stream name.
func (s Stream) String() string {
	switch s {
	case StreamStdout:
		return "stdout"
	case StreamStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Event is a single line of output produced by one command.
type Event struct {
	// Index is the 0-based position of the command in the input list.
	Index int

	// Stream identifies stdout or stderr.
	Stream Stream

	// Line is the line content without its terminator.
	Line string
}

// Label returns the 1-based command label.
func (e Event) Label() int {
	return e.Index + 1
}

// Prefix returns the label prefix for the event, including the trailing space.
func (e Event) Prefix() string {
	return Prefix(e.Index, e.Stream)
}

// String returns the labeled line.
func (e Event) String() string {
	return e.Prefix() + e.Line
}

// Prefix formats the label prefix for a command index and stream.
func Prefix(index int, stream Stream) string {
	if stream == StreamStderr {
		return fmt.Sprintf("[%d][err] ", index+1)
	}
	return fmt.Sprintf("[%d] ", index+1)
}

// ExitOutcome is the terminal result of one command.
// It is produced once and never modified afterwards.
type ExitOutcome struct {
	// Index is the 0-based position of the command in the input list.
	Index int

	// Code is the reported exit code.
	Code int

	// TimedOut is set when the timeout watchdog terminated the command.
	TimedOut bool

	// Canceled is set when the command was terminated by a cancellation request.
	Canceled bool

	// Err holds a spawn or internal failure, if any.
	Err error
}

// Label returns the 1-based command label.
func (o ExitOutcome) Label() int {
	return o.Index + 1
}

// Success reports whether the command exited with code 0.
func (o ExitOutcome) Success() bool {
	return o.Code == 0
}
