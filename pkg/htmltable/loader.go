// Package htmltable builds a table.Table from the first <table> element of
// an HTML document.
package htmltable

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"tablesplit/pkg/logging"
	"tablesplit/pkg/table"
	"tablesplit/pkg/text"
)

// ErrNoTable is returned when the document has no <table> element.
var ErrNoTable = errors.New("htmltable: no table element")

// Span attributes above these are clamped, as browsers do.
const (
	maxColSpan = 1000
	maxRowSpan = 65534
)

// Options controls how a document is turned into a table.
type Options struct {
	// Width is the total table width shared by columns without a width attribute.
	Width float64
	// Padding is applied to every cell.
	Padding table.Padding
	// ContentType is passed to charset detection; empty means sniff the bytes.
	ContentType string
}

// DefaultOptions returns a 540-point wide table with 4-point padding.
func DefaultOptions() Options {
	return Options{
		Width:   540,
		Padding: table.Padding{Top: 4, Right: 4, Bottom: 4, Left: 4},
	}
}

type rawCell struct {
	content          string
	rowSpan, colSpan int
	width            float64
	height           float64
	hasHeight        bool
}

// Open loads the table in the HTML file at filename.
func Open(filename string, m text.Measurer, opts Options) (*table.Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Load(f, m, opts)
}

// Load parses HTML from r and builds a table measured with m.
func Load(r io.Reader, m text.Measurer, opts Options) (*table.Table, error) {
	utf8, err := charset.NewReader(r, opts.ContentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	doc, err := html.Parse(utf8)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	tableNode := findElement(doc, "table")
	if tableNode == nil {
		return nil, ErrNoTable
	}

	rows := parseTable(tableNode)
	t := table.New(m, opts.Padding)
	widths := make(map[int]float64)
	for i, row := range rows {
		col := 0
		for _, rc := range row {
			for occupied(t, i, col) {
				col++
			}
			rowSpan := min(rc.rowSpan, len(rows)-i)
			colSpan := fitColumns(t, i, col, rc.colSpan)
			if colSpan < rc.colSpan {
				logging.Logger().Warn("overlapping cell span clipped",
					"row", i, "col", col, "colspan", rc.colSpan, "clipped", colSpan)
			}
			id, err := t.AddCell(i, col, rc.content, rowSpan, colSpan)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			if rc.hasHeight {
				if err := t.SetOriginalHeight(id, rc.height); err != nil {
					return nil, err
				}
			}
			if rc.width > 0 && colSpan == 1 {
				if _, ok := widths[col]; !ok {
					widths[col] = rc.width
				}
			}
			col += colSpan
		}
	}
	t.SetColumnWidths(columnWidths(t.NumColumns(), widths, opts.Width))
	logging.Logger().Debug("html table loaded", "rows", t.NumRows(), "columns", t.NumColumns())
	return t, nil
}

func occupied(t *table.Table, row, col int) bool {
	_, ok := t.CellAt(row, col)
	return ok
}

// fitColumns shrinks a colspan starting at (row, col) so it stops before the
// first column a row span from above already occupies. Rows below are free
// wherever this row is, since cells are placed in document order.
func fitColumns(t *table.Table, row, col, colSpan int) int {
	for c := col + 1; c < col+colSpan; c++ {
		if occupied(t, row, c) {
			return c - col
		}
	}
	return colSpan
}

// columnWidths gives explicit widths to their columns and shares what is
// left of total evenly among the rest.
func columnWidths(n int, explicit map[int]float64, total float64) []float64 {
	out := make([]float64, n)
	rest := total
	free := 0
	for i := range out {
		if w, ok := explicit[i]; ok {
			out[i] = w
			rest -= w
		} else {
			free++
		}
	}
	if free == 0 {
		return out
	}
	share := max(rest, 0) / float64(free)
	for i := range out {
		if _, ok := explicit[i]; !ok {
			out[i] = share
		}
	}
	return out
}

// parseTable collects the rows of thead, tbody, tfoot and direct tr children.
func parseTable(tableNode *html.Node) [][]rawCell {
	rows := make([][]rawCell, 0)
	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "thead", "tbody", "tfoot":
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.Data == "tr" {
					rows = append(rows, parseTableRow(tr))
				}
			}
		case "tr":
			rows = append(rows, parseTableRow(c))
		}
	}
	return rows
}

func parseTableRow(tr *html.Node) []rawCell {
	row := make([]rawCell, 0)
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cell := rawCell{
			content: norm.NFC.String(text.JoinTokens(text.Tokenize(getTextContent(c)))),
			rowSpan: 1,
			colSpan: 1,
		}
		for _, attr := range c.Attr {
			switch attr.Key {
			case "rowspan":
				cell.rowSpan = spanValue(attr.Val, maxRowSpan)
			case "colspan":
				cell.colSpan = spanValue(attr.Val, maxColSpan)
			case "height":
				if h, ok := lengthValue(attr.Val); ok {
					cell.height, cell.hasHeight = h, true
				}
			case "width":
				if w, ok := lengthValue(attr.Val); ok {
					cell.width = w
				}
			}
		}
		row = append(row, cell)
	}
	return row
}

// spanValue parses a rowspan or colspan; anything below one counts as one
// and anything above limit as limit.
func spanValue(s string, limit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return limit
	}
	if err != nil || n < 1 {
		return 1
	}
	return min(n, limit)
}

// lengthValue parses "40" or "40px". Percentages are not supported.
func lengthValue(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return result.String()
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "table":
			// Nested tables are not flattened into the cell.
			return
		case "br":
			result.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li":
			result.WriteString(" ")
		}
	}
}
