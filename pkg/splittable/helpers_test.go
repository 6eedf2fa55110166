package splittable

import (
	"testing"

	"tablesplit/pkg/table"
	"tablesplit/pkg/text"
)

// tokenMeasurer makes every token exactly perToken tall regardless of width,
// so "alpha beta gamma delta" measures 10, 20, 30, 40 as it grows.
type tokenMeasurer struct {
	perToken float64
}

func (m tokenMeasurer) Height(content string, _ float64) float64 {
	return float64(len(text.Tokenize(content))) * m.perToken
}

func newTestTable(columns int) *table.Table {
	tb := table.New(tokenMeasurer{perToken: 10}, table.Padding{})
	widths := make([]float64, columns)
	for i := range widths {
		widths[i] = 100
	}
	tb.SetColumnWidths(widths)
	return tb
}

func mustAdd(t *testing.T, tb *table.Table, row, col int, content string, rowSpan, colSpan int) table.CellID {
	t.Helper()
	id, err := tb.AddCell(row, col, content, rowSpan, colSpan)
	if err != nil {
		t.Fatalf("AddCell(%d,%d): %v", row, col, err)
	}
	return id
}

func mustCell(t *testing.T, tb *table.Table, id table.CellID) *table.Cell {
	t.Helper()
	c, err := tb.Cell(id)
	if err != nil {
		t.Fatalf("Cell(%d): %v", id, err)
	}
	return c
}

func mustRow(t *testing.T, tb *table.Table, i int) *table.Row {
	t.Helper()
	r, err := tb.Row(i)
	if err != nil {
		t.Fatalf("Row(%d): %v", i, err)
	}
	return r
}

func dummyAt(t *testing.T, tb *table.Table, row, col int) table.CellID {
	t.Helper()
	c, ok := tb.CellAt(row, col)
	if !ok || !c.IsDummy() {
		t.Fatalf("expected a dummy at (%d,%d)", row, col)
	}
	return c.ID
}
