// Package table is the arena holding a flowed table's rows and cells.
//
// Cells are addressed by CellID and rows by index; a dummy cell stores its
// owner's ID rather than a reference, so the grid has no cycles.
package table

import (
	"errors"
	"fmt"

	"tablesplit/pkg/text"
)

var (
	// ErrMissingRow is returned when a row index is outside the table.
	ErrMissingRow = errors.New("table: missing row")
	// ErrMissingCell is returned for an unknown CellID.
	ErrMissingCell = errors.New("table: missing cell")
	// ErrInvalidSpan is returned by AddCell for spans below one.
	ErrInvalidSpan = errors.New("table: invalid span")
	// ErrOccupied is returned by AddCell when a position is already taken.
	ErrOccupied = errors.New("table: position already occupied")
)

// Table owns the row and cell arenas and the column widths decided by the
// layout pass.
type Table struct {
	measurer     text.Measurer
	padding      Padding
	columnWidths []float64
	rows         []*Row
	cells        []*Cell
	grid         map[[2]int]CellID
	gridColumns  int // one past the rightmost occupied column
}

// New returns an empty table measuring text with m.
func New(m text.Measurer, padding Padding) *Table {
	return &Table{
		measurer: m,
		padding:  padding,
		grid:     make(map[[2]int]CellID),
	}
}

// Padding returns the cell padding.
func (t *Table) Padding() Padding {
	return t.padding
}

// SetColumnWidths sets the width of every column.
func (t *Table) SetColumnWidths(widths []float64) {
	t.columnWidths = append([]float64(nil), widths...)
}

// ColumnWidths returns a copy of the column widths.
func (t *Table) ColumnWidths() []float64 {
	return append([]float64(nil), t.columnWidths...)
}

// NumColumns is the number of grid columns any cell occupies.
func (t *Table) NumColumns() int {
	return max(len(t.columnWidths), t.gridColumns)
}

// AddCell places a real cell at (row, col) covering rowSpan rows and colSpan
// columns, creating a dummy for every other covered position. Rows are
// created as needed.
func (t *Table) AddCell(row, col int, content string, rowSpan, colSpan int) (CellID, error) {
	if rowSpan < 1 || colSpan < 1 {
		return NoCell, fmt.Errorf("%w: %dx%d at (%d,%d)", ErrInvalidSpan, rowSpan, colSpan, row, col)
	}
	for r := row; r < row+rowSpan; r++ {
		for c := col; c < col+colSpan; c++ {
			if _, taken := t.grid[[2]int{r, c}]; taken {
				return NoCell, fmt.Errorf("%w: (%d,%d)", ErrOccupied, r, c)
			}
		}
	}
	t.ensureRows(row + rowSpan)

	owner := t.newCell(Cell{
		Kind:    KindReal,
		Row:     row,
		Col:     col,
		Content: content,
		RowSpan: rowSpan,
		ColSpan: colSpan,
		Owner:   NoCell,
	})
	for r := row; r < row+rowSpan; r++ {
		for c := col; c < col+colSpan; c++ {
			if r == row && c == col {
				continue
			}
			span := ColumnSpan
			if r > row {
				span = RowSpan
			}
			d := t.newCell(Cell{Kind: KindDummy, Row: r, Col: c, Owner: owner.ID, Span: span})
			owner.Dummies = append(owner.Dummies, d.ID)
		}
	}
	return owner.ID, nil
}

func (t *Table) newCell(c Cell) *Cell {
	c.ID = CellID(len(t.cells))
	cell := &c
	t.cells = append(t.cells, cell)
	t.grid[[2]int{c.Row, c.Col}] = c.ID
	t.gridColumns = max(t.gridColumns, c.Col+1)
	return cell
}

func (t *Table) ensureRows(n int) {
	for len(t.rows) < n {
		t.rows = append(t.rows, &Row{Index: len(t.rows)})
	}
}

// SetOriginalHeight records an authored height hint for a real cell.
func (t *Table) SetOriginalHeight(id CellID, height float64) error {
	c, err := t.Cell(id)
	if err != nil {
		return err
	}
	c.OriginalHeight = height
	c.HasOriginalHeight = true
	return nil
}

// Cell returns the cell with the given ID.
func (t *Table) Cell(id CellID) (*Cell, error) {
	if id < 0 || int(id) >= len(t.cells) {
		return nil, fmt.Errorf("%w: %d", ErrMissingCell, id)
	}
	return t.cells[id], nil
}

// CellAt returns the cell occupying (row, col), real or dummy.
func (t *Table) CellAt(row, col int) (*Cell, bool) {
	id, ok := t.grid[[2]int{row, col}]
	if !ok {
		return nil, false
	}
	return t.cells[id], true
}

// Owner returns the real cell owning c. A real cell owns itself.
func (t *Table) Owner(c *Cell) (*Cell, error) {
	if !c.IsDummy() {
		return c, nil
	}
	return t.Cell(c.Owner)
}

// Cells returns every cell in creation order.
func (t *Table) Cells() []*Cell {
	return append([]*Cell(nil), t.cells...)
}

// DummiesOf returns the dummy cells owned by c.
func (t *Table) DummiesOf(c *Cell) []*Cell {
	dummies := make([]*Cell, 0, len(c.Dummies))
	for _, id := range c.Dummies {
		if d, err := t.Cell(id); err == nil {
			dummies = append(dummies, d)
		}
	}
	return dummies
}

// CellsInRow returns every cell, real or dummy, positioned in row i,
// ordered by column.
func (t *Table) CellsInRow(i int) []*Cell {
	n := t.NumColumns()
	cells := make([]*Cell, 0, n)
	for col := 0; col < n; col++ {
		if c, ok := t.CellAt(i, col); ok {
			cells = append(cells, c)
		}
	}
	return cells
}

// NumRows is the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Row returns row i.
func (t *Table) Row(i int) (*Row, error) {
	if i < 0 || i >= len(t.rows) {
		return nil, fmt.Errorf("%w: %d", ErrMissingRow, i)
	}
	return t.rows[i], nil
}

// Rows returns rows from through to-1.
func (t *Table) Rows(from, to int) ([]*Row, error) {
	if from < 0 || to > len(t.rows) || from > to {
		return nil, fmt.Errorf("%w: range [%d,%d)", ErrMissingRow, from, to)
	}
	return append([]*Row(nil), t.rows[from:to]...), nil
}

// CellWidth is the width of the columns c's owner covers.
func (t *Table) CellWidth(c *Cell) float64 {
	owner, err := t.Owner(c)
	if err != nil {
		return 0
	}
	width := 0.0
	for col := owner.Col; col < owner.Col+owner.ColSpan && col < len(t.columnWidths); col++ {
		width += t.columnWidths[col]
	}
	return width
}
