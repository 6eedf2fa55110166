package text

import (
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"tablesplit/pkg/logging"
)

// Measurer reports the height needed to render content wrapped to width.
// Implementations must be deterministic for identical input.
type Measurer interface {
	Height(content string, width float64) float64
}

// FaceMeasurer measures word-wrapped text with a gg font face.
// It holds a gg.Context and is not safe for concurrent use.
type FaceMeasurer struct {
	dc          *gg.Context
	face        font.Face
	lineSpacing float64
}

// NewFaceMeasurer loads fontPath at fontSize. If the path is empty or the
// font cannot be loaded the basic bitmap face is used instead, so
// measurement never fails.
func NewFaceMeasurer(fontPath string, fontSize, lineSpacing float64) *FaceMeasurer {
	var face font.Face = basicfont.Face7x13
	if fontPath != "" {
		loaded, err := gg.LoadFontFace(fontPath, fontSize)
		if err != nil {
			logging.Logger().Warn("font load failed, using basic face", "path", fontPath, "err", err)
		} else {
			face = loaded
		}
	}
	if lineSpacing <= 0 {
		lineSpacing = 1
	}
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	return &FaceMeasurer{dc: dc, face: face, lineSpacing: lineSpacing}
}

// Face returns the font face used for measurement, so text can be drawn
// with the same metrics.
func (m *FaceMeasurer) Face() font.Face {
	return m.face
}

// Ascent is the distance from the top of a line to its baseline.
func (m *FaceMeasurer) Ascent() float64 {
	return float64(m.face.Metrics().Ascent.Ceil())
}

// LineHeight is the advance between two wrapped lines.
func (m *FaceMeasurer) LineHeight() float64 {
	return m.dc.FontHeight() * m.lineSpacing
}

// MeasureString returns the unwrapped width and height of s.
func (m *FaceMeasurer) MeasureString(s string) (width, height float64) {
	return m.dc.MeasureString(s)
}

// Height implements Measurer.
func (m *FaceMeasurer) Height(content string, width float64) float64 {
	lines := m.Lines(content, width)
	return float64(len(lines)) * m.LineHeight()
}

// Lines breaks content into lines no wider than maxWidth. A single word
// wider than maxWidth gets a line of its own. Empty content has no lines.
func (m *FaceMeasurer) Lines(content string, maxWidth float64) []string {
	words := Tokenize(content)
	if len(words) == 0 {
		return nil
	}
	if maxWidth <= 0 {
		return []string{JoinTokens(words)}
	}

	lines := make([]string, 0)
	currentLine := ""
	for _, word := range words {
		testLine := word
		if currentLine != "" {
			testLine = currentLine + " " + word
		}
		lineWidth, _ := m.dc.MeasureString(testLine)
		if lineWidth <= maxWidth || currentLine == "" {
			currentLine = testLine
			continue
		}
		// Word doesn't fit, start new line
		lines = append(lines, currentLine)
		currentLine = word
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}
