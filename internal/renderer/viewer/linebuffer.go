package viewer

// DefaultRetention is the number of lines kept per command.
const DefaultRetention = 10000

// LineBuffer holds the retained output of one command.
//
// When an append takes the buffer past its capacity, the oldest half is
// dropped. The newest line is always kept. LineBuffer is not safe for
// concurrent use.
type LineBuffer struct {
	lines    []string
	capacity int
	dropped  int
}

// NewLineBuffer creates a buffer retaining up to capacity lines.
// A capacity below 2 is raised to 2.
func NewLineBuffer(capacity int) *LineBuffer {
	if capacity < 2 {
		capacity = 2
	}
	return &LineBuffer{capacity: capacity}
}

// Append adds a line.
func (b *LineBuffer) Append(line string) {
	b.lines = append(b.lines, line)
	if len(b.lines) <= b.capacity {
		return
	}

	drop := b.capacity / 2
	kept := copy(b.lines, b.lines[drop:])
	clear(b.lines[kept:])
	b.lines = b.lines[:kept]
	b.dropped += drop
}

// Len returns the number of retained lines.
func (b *LineBuffer) Len() int {
	return len(b.lines)
}

// Dropped returns how many lines have been discarded.
func (b *LineBuffer) Dropped() int {
	return b.dropped
}

// Tail returns a copy of the last n retained lines.
func (b *LineBuffer) Tail(n int) []string {
	if n <= 0 {
		return nil
	}
	start := max(len(b.lines)-n, 0)
	return append([]string(nil), b.lines[start:]...)
}

// Lines returns a copy of all retained lines.
func (b *LineBuffer) Lines() []string {
	return b.Tail(len(b.lines))
}
