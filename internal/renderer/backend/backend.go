// Package backend provides the terminal abstraction the viewer draws on.
package backend

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventWakeup is posted by PostWakeup to interrupt PollEvent.
	EventWakeup
	// EventClosed is returned by PollEvent after Shutdown.
	EventClosed
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Resize event fields
	Width, Height int
}

// Key represents a keyboard key.
type Key int

// Key constants for the keys the viewer distinguishes.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyCtrlC
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// Color is a terminal palette color.
type Color int

const (
	ColorDefault Color = iota
	ColorWhite
	ColorYellow
	ColorRed
	ColorGreen
	ColorGray
)

// Style describes how a cell is drawn.
type Style struct {
	Foreground Color
	Bold       bool
	Reverse    bool
}

// DefaultStyle is the terminal's default style.
var DefaultStyle = Style{}

// WithForeground returns a copy of s with the foreground color set.
func (s Style) WithForeground(c Color) Style {
	s.Foreground = c
	return s
}

// WithBold returns a copy of s with bold set.
func (s Style) WithBold(b bool) Style {
	s.Bold = b
	return s
}

// Backend defines the interface for terminal/display backends.
type Backend interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetCell sets a single cell. Positions outside the terminal are ignored.
	SetCell(x, y int, r rune, style Style)

	// DrawText draws text starting at (x, y), clipped to maxWidth columns.
	// It returns the number of columns used.
	DrawText(x, y, maxWidth int, text string, style Style) int

	// Fill fills a rectangle with r.
	Fill(x, y, width, height int, r rune, style Style)

	// Clear clears the entire screen with the default style.
	Clear()

	// Show flushes pending changes to the display.
	Show()

	// PollEvent waits for and returns the next terminal event.
	// This is a blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic key event to the event queue.
	PostEvent(event Event)

	// PostWakeup makes a blocked PollEvent return EventWakeup.
	PostWakeup()
}
