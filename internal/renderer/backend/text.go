package backend

import (
	"github.com/rivo/uniseg"
)

// tabWidth is the number of columns a tab advances to.
const tabWidth = 4

// layoutText walks the grapheme clusters of text and calls put for each one
// that fits in maxWidth columns. Tabs expand to spaces and other control
// characters are dropped. It returns the number of columns used.
func layoutText(text string, maxWidth int, put func(col int, r rune, comb []rune)) int {
	col := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()

		if runes[0] == '\t' {
			next := (col/tabWidth + 1) * tabWidth
			for ; col < next && col < maxWidth; col++ {
				put(col, ' ', nil)
			}
			if col >= maxWidth {
				break
			}
			continue
		}
		if runes[0] < 0x20 || runes[0] == 0x7f {
			continue
		}

		w := g.Width()
		if w == 0 {
			continue
		}
		if col+w > maxWidth {
			break
		}
		put(col, runes[0], runes[1:])
		col += w
	}
	return col
}

// TextWidth returns the display width of text as DrawText would lay it out.
func TextWidth(text string) int {
	return layoutText(text, int(^uint(0)>>1), func(int, rune, []rune) {})
}
