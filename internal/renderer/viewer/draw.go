package viewer

import (
	"github.com/dshills/ghop/internal/renderer/backend"
)

var (
	tabStyle      = backend.DefaultStyle.WithForeground(backend.ColorWhite)
	selectedStyle = backend.DefaultStyle.WithForeground(backend.ColorYellow)
	borderStyle   = backend.DefaultStyle
	textStyle     = backend.DefaultStyle
	errStyle      = backend.DefaultStyle.WithForeground(backend.ColorRed)
	helpStyle     = backend.DefaultStyle.WithForeground(backend.ColorGray)
)

const paneTitle = "Output"

// draw renders the whole screen: tabs, the selected pane and the help row.
func (v *Viewer) draw() {
	v.wake.Store(false)

	b := v.backend
	w, h := b.Size()
	b.Clear()
	if w <= 0 || h <= 0 {
		b.Show()
		return
	}

	v.mu.Lock()
	selected := v.selected
	var lines []string
	if selected < len(v.panes) {
		lines = v.panes[selected].Tail(min(MaxVisibleLines, max(h-4, 0)))
	}
	v.mu.Unlock()

	v.drawTabs(w, selected)
	if h >= 3 {
		drawPane(b, 0, 1, w, h-2, lines)
	}
	if h >= 2 {
		b.DrawText(0, h-1, w, HelpText, helpStyle)
	}
	b.Show()
}

func (v *Viewer) drawTabs(w, selected int) {
	x := 0
	for i, title := range v.titles {
		if x >= w {
			return
		}
		if i > 0 {
			x += v.backend.DrawText(x, 0, w-x, "│", tabStyle)
		}
		style := tabStyle
		if i == selected {
			style = selectedStyle
		}
		x += v.backend.DrawText(x, 0, w-x, " "+title+" ", style)
	}
}

// drawPane draws a bordered box and the lines that fit inside it, newest at
// the bottom.
func drawPane(b backend.Backend, x, y, w, h int, lines []string) {
	if w < 2 || h < 2 {
		return
	}

	right, bottom := x+w-1, y+h-1
	b.Fill(x+1, y, w-2, 1, '─', borderStyle)
	b.Fill(x+1, bottom, w-2, 1, '─', borderStyle)
	b.Fill(x, y+1, 1, h-2, '│', borderStyle)
	b.Fill(right, y+1, 1, h-2, '│', borderStyle)
	b.SetCell(x, y, '┌', borderStyle)
	b.SetCell(right, y, '┐', borderStyle)
	b.SetCell(x, bottom, '└', borderStyle)
	b.SetCell(right, bottom, '┘', borderStyle)
	b.DrawText(x+1, y, w-2, paneTitle, borderStyle)

	inner := h - 2
	if len(lines) > inner {
		lines = lines[len(lines)-inner:]
	}
	for i, line := range lines {
		style := textStyle
		if len(line) >= len(errPrefix) && line[:len(errPrefix)] == errPrefix {
			style = errStyle
		}
		b.DrawText(x+1, y+1+i, w-2, line, style)
	}
}
