package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal implements Backend using tcell for terminal output.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex

	// simulated size applied after Init, zero for a real terminal
	simWidth, simHeight int
}

// NewTerminal creates a new terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewSimulation creates a terminal backed by a tcell simulation screen of the
// given size. The returned screen can inject keys and read back contents.
func NewSimulation(width, height int) (*Terminal, tcell.SimulationScreen) {
	screen := tcell.NewSimulationScreen("UTF-8")
	return &Terminal{screen: screen, simWidth: width, simHeight: height}, screen
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	if sim, ok := t.screen.(tcell.SimulationScreen); ok && t.simWidth > 0 {
		sim.SetSize(t.simWidth, t.simHeight)
	}
	t.screen.HideCursor()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, r rune, style Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, r, nil, convertStyle(style))
}

func (t *Terminal) DrawText(x, y, maxWidth int, text string, style Style) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := convertStyle(style)
	return layoutText(text, maxWidth, func(col int, r rune, comb []rune) {
		t.screen.SetContent(x+col, y, r, comb, ts)
	})
}

func (t *Terminal) Fill(x, y, width, height int, r rune, style Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := convertStyle(style)
	sw, sh := t.screen.Size()
	for row := max(y, 0); row < y+height && row < sh; row++ {
		for col := max(x, 0); col < x+width && col < sw; col++ {
			t.screen.SetContent(col, row, r, nil, ts)
		}
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

// PollEvent does not hold the lock; tcell's queue is safe for concurrent use.
func (t *Terminal) PollEvent() Event {
	return convertEvent(t.screen.PollEvent())
}

func (t *Terminal) PostEvent(event Event) {
	if event.Type == EventKey {
		ev := tcell.NewEventKey(convertToTcellKey(event.Key), event.Rune, convertToTcellMod(event.Mod))
		_ = t.screen.PostEvent(ev) // best-effort; event queue may be full
	}
}

func (t *Terminal) PostWakeup() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // a full queue wakes the poller anyway
}

// convertStyle converts our Style to tcell.Style.
func convertStyle(s Style) tcell.Style {
	style := tcell.StyleDefault
	if s.Foreground != ColorDefault {
		style = style.Foreground(convertColor(s.Foreground))
	}
	if s.Bold {
		style = style.Bold(true)
	}
	if s.Reverse {
		style = style.Reverse(true)
	}
	return style
}

func convertColor(c Color) tcell.Color {
	switch c {
	case ColorWhite:
		return tcell.ColorWhite
	case ColorYellow:
		return tcell.ColorYellow
	case ColorRed:
		return tcell.ColorRed
	case ColorGreen:
		return tcell.ColorGreen
	case ColorGray:
		return tcell.ColorGray
	default:
		return tcell.ColorDefault
	}
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case nil:
		return Event{Type: EventClosed}

	case *tcell.EventKey:
		return Event{
			Type: EventKey,
			Key:  convertKey(e.Key()),
			Rune: e.Rune(),
			Mod:  convertMod(e.Modifiers()),
		}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{
			Type:   EventResize,
			Width:  w,
			Height: h,
		}

	case *tcell.EventInterrupt:
		return Event{Type: EventWakeup}

	default:
		return Event{Type: EventNone}
	}
}

// keyPairs maps the keys the viewer understands to their tcell codes.
var keyPairs = []struct {
	key Key
	tc  tcell.Key
}{
	{KeyRune, tcell.KeyRune},
	{KeyEscape, tcell.KeyEscape},
	{KeyEnter, tcell.KeyEnter},
	{KeyTab, tcell.KeyTab},
	{KeyBacktab, tcell.KeyBacktab},
	{KeyUp, tcell.KeyUp},
	{KeyDown, tcell.KeyDown},
	{KeyLeft, tcell.KeyLeft},
	{KeyRight, tcell.KeyRight},
	{KeyHome, tcell.KeyHome},
	{KeyEnd, tcell.KeyEnd},
	{KeyPageUp, tcell.KeyPgUp},
	{KeyPageDown, tcell.KeyPgDn},
	{KeyCtrlC, tcell.KeyCtrlC},
}

var modPairs = []struct {
	mod ModMask
	tc  tcell.ModMask
}{
	{ModShift, tcell.ModShift},
	{ModCtrl, tcell.ModCtrl},
	{ModAlt, tcell.ModAlt},
}

func convertKey(k tcell.Key) Key {
	for _, p := range keyPairs {
		if p.tc == k {
			return p.key
		}
	}
	return KeyNone
}

func convertToTcellKey(k Key) tcell.Key {
	for _, p := range keyPairs {
		if p.key == k {
			return p.tc
		}
	}
	return tcell.KeyRune
}

func convertMod(m tcell.ModMask) ModMask {
	var result ModMask
	for _, p := range modPairs {
		if m&p.tc != 0 {
			result |= p.mod
		}
	}
	return result
}

func convertToTcellMod(m ModMask) tcell.ModMask {
	var result tcell.ModMask
	for _, p := range modPairs {
		if m&p.mod != 0 {
			result |= p.tc
		}
	}
	return result
}
