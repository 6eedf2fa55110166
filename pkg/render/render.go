// Package render draws paginated table pages to raster images.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"tablesplit/pkg/paginate"
	"tablesplit/pkg/table"
	"tablesplit/pkg/text"
)

// Style holds the colours and geometry used for every page.
type Style struct {
	Margin      float64
	BorderWidth float64
	Background  color.Color
	Border      color.Color
	Text        color.Color
}

// DefaultStyle is black text and borders on white with a 20-unit margin.
func DefaultStyle() Style {
	return Style{
		Margin:      20,
		BorderWidth: 1,
		Background:  color.White,
		Border:      color.Black,
		Text:        color.Black,
	}
}

type Renderer struct {
	context  *gg.Context
	measurer *text.FaceMeasurer
	padding  table.Padding
	style    Style
}

// NewRenderer returns a renderer for width x height pages. Text is wrapped
// and drawn with m, which should be the measurer the table was laid out with.
func NewRenderer(width, height int, m *text.FaceMeasurer, padding table.Padding, style Style) *Renderer {
	dc := gg.NewContext(width, height)
	dc.SetFontFace(m.Face())
	return &Renderer{context: dc, measurer: m, padding: padding, style: style}
}

// PageSize returns the image size needed for a table with the given
// column widths on pages of pageHeight.
func PageSize(columnWidths []float64, pageHeight float64, style Style) (int, int) {
	w := 0.0
	for _, cw := range columnWidths {
		w += cw
	}
	return int(w + 2*style.Margin + 0.5), int(pageHeight + 2*style.Margin + 0.5)
}

// Render clears the canvas and draws page.
func (r *Renderer) Render(page paginate.Page) {
	r.context.SetColor(r.style.Background)
	r.context.Clear()

	firstRow := -1
	if len(page.Rows) > 0 {
		firstRow = page.Rows[0].Index
	}
	for _, cell := range page.Cells {
		r.drawBorder(cell, cell.Row < firstRow)
		r.drawText(cell)
	}
}

// drawBorder outlines a cell. A cell continued from the previous page gets
// a dashed top edge.
func (r *Renderer) drawBorder(cell paginate.PageCell, continued bool) {
	x := r.style.Margin + cell.X
	y := r.style.Margin + cell.Y
	r.context.SetColor(r.style.Border)
	r.context.SetLineWidth(r.style.BorderWidth)

	r.context.DrawLine(x, y+cell.Height, x+cell.Width, y+cell.Height)
	r.context.DrawLine(x, y, x, y+cell.Height)
	r.context.DrawLine(x+cell.Width, y, x+cell.Width, y+cell.Height)
	r.context.Stroke()

	if continued {
		r.context.SetDash(4, 3)
	}
	r.context.DrawLine(x, y, x+cell.Width, y)
	r.context.Stroke()
	r.context.SetDash()
}

func (r *Renderer) drawText(cell paginate.PageCell) {
	if cell.Content == "" {
		return
	}
	r.context.SetColor(r.style.Text)

	x := r.style.Margin + cell.X + r.padding.Left
	y := r.style.Margin + cell.Y + r.padding.Top
	width := cell.Width - r.padding.Left - r.padding.Right
	lh := r.measurer.LineHeight()
	for i, line := range r.measurer.Lines(cell.Content, width) {
		r.context.DrawString(line, x, y+float64(i)*lh+r.measurer.Ascent())
	}
}

// Image returns the rendered page.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

// RenderPages draws every page and returns the images in order.
func RenderPages(pages []paginate.Page, width, height int, m *text.FaceMeasurer, padding table.Padding, style Style) []image.Image {
	out := make([]image.Image, 0, len(pages))
	for _, page := range pages {
		r := NewRenderer(width, height, m, padding, style)
		r.Render(page)
		out = append(out, r.Image())
	}
	return out
}

// PageFilename is the file a page is saved to for the given prefix.
func PageFilename(prefix string, number int) string {
	return fmt.Sprintf("%s-%d.png", prefix, number)
}
