package text

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// MonoMeasurer measures text on a fixed character grid, the way a terminal
// or a monospace report renders it. East Asian wide runes take two columns.
type MonoMeasurer struct {
	CellWidth  float64 // width of one column
	LineHeight float64 // height of one line
}

// Columns returns how many grid columns fit in width. At least one column is
// always available.
func (m MonoMeasurer) Columns(width float64) int {
	if m.CellWidth <= 0 || width <= 0 {
		return math.MaxInt32
	}
	cols := int(width / m.CellWidth)
	if cols < 1 {
		cols = 1
	}
	return cols
}

// Lines wraps content on token boundaries to the columns available in width.
// Tokens wider than a full line are hard-broken.
func (m MonoMeasurer) Lines(content string, width float64) []string {
	cols := m.Columns(width)
	lines := make([]string, 0)
	current := ""
	currentWidth := 0
	for _, word := range Tokenize(content) {
		w := runewidth.StringWidth(word)
		if current != "" && currentWidth+1+w <= cols {
			current += " " + word
			currentWidth += 1 + w
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		for w > cols {
			head := runewidth.Truncate(word, cols, "")
			if head == "" {
				// a single rune wider than the line
				head = string([]rune(word)[:1])
			}
			lines = append(lines, head)
			word = word[len(head):]
			w = runewidth.StringWidth(word)
		}
		current, currentWidth = word, w
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// Height implements Measurer.
func (m MonoMeasurer) Height(content string, width float64) float64 {
	return float64(len(m.Lines(content, width))) * m.LineHeight
}
