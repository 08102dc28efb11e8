package backend

import (
	"strings"
	"sync"
)

// Cell is one screen position in a NullBackend.
type Cell struct {
	Rune  rune
	Style Style
}

// NullBackend is an in-memory backend for testing.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	cells         [][]Cell
	shows         int
	events        chan Event
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
	}
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.allocate()
	return nil
}

func (b *NullBackend) allocate() {
	b.cells = make([][]Cell, b.height)
	for y := range b.cells {
		b.cells[y] = make([]Cell, b.width)
		for x := range b.cells[y] {
			b.cells[y][x] = Cell{Rune: ' '}
		}
	}
}

// Shutdown unblocks PollEvent with EventClosed.
func (b *NullBackend) Shutdown() {
	b.PostEvent(Event{Type: EventClosed})
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, r rune, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.set(x, y, r, style)
}

func (b *NullBackend) set(x, y int, r rune, style Style) {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = Cell{Rune: r, Style: style}
	}
}

func (b *NullBackend) DrawText(x, y, maxWidth int, text string, style Style) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return layoutText(text, maxWidth, func(col int, r rune, _ []rune) {
		b.set(x+col, y, r, style)
	})
}

func (b *NullBackend) Fill(x, y, width, height int, r rune, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			b.set(col, row, r, style)
		}
	}
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.allocate()
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shows++
}

func (b *NullBackend) PollEvent() Event {
	return <-b.events
}

// PostEvent queues any event type, unlike the terminal backend.
func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

func (b *NullBackend) PostWakeup() {
	b.PostEvent(Event{Type: EventWakeup})
}

// Cell returns the cell at the given position for testing.
func (b *NullBackend) Cell(x, y int) Cell {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y >= 0 && y < len(b.cells) && x >= 0 && x < len(b.cells[y]) {
		return b.cells[y][x]
	}
	return Cell{}
}

// Row returns row y as a string with trailing spaces trimmed.
func (b *NullBackend) Row(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= len(b.cells) {
		return ""
	}
	var sb strings.Builder
	for _, c := range b.cells[y] {
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

// Shows returns how many times Show was called.
func (b *NullBackend) Shows() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.shows
}

// Resize simulates a terminal resize and queues an EventResize.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width = width
	b.height = height
	b.allocate()
	b.mu.Unlock()

	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
