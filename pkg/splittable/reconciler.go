package splittable

import (
	"sort"

	"tablesplit/pkg/logging"
	"tablesplit/pkg/table"
)

// RowHeights maps a row index to the tallest height any cell attributed to
// that row needs.
type RowHeights map[int]float64

// FirstRow returns the lowest row index in h.
func (h RowHeights) FirstRow() (int, bool) {
	first, ok := 0, false
	for row := range h {
		if !ok || row < first {
			first, ok = row, true
		}
	}
	return first, ok
}

// Reconciler fixes row and cell heights for the cells torn apart by one page
// break and selects the cells that continue on the next page. Build one per
// page break and side of the break; call AdjustContentForNewPage (new page
// only), MaxRowHeights, AdjustCellHeights and ReducedCellsForNewPage in that
// order.
type Reconciler struct {
	table      *table.Table
	cells      []table.CellID
	currentRow int
	newPage    bool
}

// NewReconciler returns a reconciler for cells at a break before row
// currentRowNumber. newPage selects the continuation side of the break.
func NewReconciler(cells []table.CellID, currentRowNumber int, newPage bool, t *table.Table) *Reconciler {
	return &Reconciler{
		table:      t,
		cells:      append([]table.CellID(nil), cells...),
		currentRow: currentRowNumber,
		newPage:    newPage,
	}
}

// LastRenderedRow is the last row rendered on the page before the break.
func (r *Reconciler) LastRenderedRow() int {
	return r.currentRow - 1
}

func (r *Reconciler) resolve() ([]*table.Cell, error) {
	cells := make([]*table.Cell, 0, len(r.cells))
	for _, id := range r.cells {
		c, err := r.table.Cell(id)
		if err != nil {
			return nil, contractViolation(err)
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// AdjustContentForNewPage moves each partially split cell's overflow into
// its content. Cells that fit completely on the previous page continue
// empty; cells that were deferred or never split keep their content.
// Calling it again is a no-op.
func (r *Reconciler) AdjustContentForNewPage() error {
	cells, err := r.resolve()
	if err != nil {
		return err
	}
	for _, c := range cells {
		if c.IsDummy() {
			continue
		}
		switch c.Outcome {
		case table.OutcomePartial:
			c.Content = c.Overflow
			c.Overflow = ""
		case table.OutcomeComplete:
			c.Content = ""
		default:
			continue
		}
		// The hand-over is done; the cell starts the new page unsplit.
		c.Outcome = table.OutcomeNone
	}
	return nil
}

// MaxRowHeights returns, for each row, the tallest height a cell starting in
// it needs, ignoring spans. Authored height hints count only on the page
// before the break. For a row-spanning cell the recorded heights of the rows
// its dummies occupy are subtracted, since those rows already provide that
// height. Cells without content are skipped.
//
// The result depends only on the cells and row heights, so it is computed
// once per pass and handed to AdjustCellHeights.
func (r *Reconciler) MaxRowHeights() (RowHeights, error) {
	cells, err := r.resolve()
	if err != nil {
		return nil, err
	}
	heights := make(RowHeights)
	for _, c := range cells {
		if c.IsDummy() || c.Content == "" {
			continue
		}
		h := r.table.NaturalHeight(c, !r.newPage)
		for _, row := range r.rowDummyRows(c, false) {
			rr, err := r.table.Row(row)
			if err != nil {
				return nil, contractViolation(err)
			}
			h -= rr.Height
		}
		if h > heights[c.Row] {
			heights[c.Row] = h
		}
	}
	return heights, nil
}

// AdjustCellHeights sets every real cell to its row's height from heights,
// then stretches row-spanning cells over the recomputed heights of the rows
// they cover on this side of the break. A cell starting before the first
// row in heights takes that row's height.
//
// A covered row whose recomputed height differs from its recorded height
// leaves slack; every later row is moved up by it, once per row, and the
// recorded height is replaced at the end of the pass. The summed slack is
// returned.
func (r *Reconciler) AdjustCellHeights(heights RowHeights) (float64, error) {
	cells, err := r.resolve()
	if err != nil {
		return 0, err
	}
	firstRow, _ := heights.FirstRow()

	offset := 0.0
	committed := make(map[int]float64)
	for _, c := range cells {
		if c.IsDummy() {
			continue
		}
		if c.Row < firstRow {
			c.Height = heights[firstRow]
		} else {
			c.Height = heights[c.Row]
		}

		originalRowsHeight, recalculatedRowsHeight := 0.0, 0.0
		for _, row := range r.rowDummyRows(c, true) {
			rr, err := r.table.Row(row)
			if err != nil {
				return offset, contractViolation(err)
			}
			recalculated, err := r.table.RecalculateRowHeight(row, !r.newPage)
			if err != nil {
				return offset, contractViolation(err)
			}
			originalRowsHeight += rr.Height
			recalculatedRowsHeight += recalculated

			if _, done := committed[row]; done {
				continue
			}
			committed[row] = recalculated
			if slack := rr.Height - recalculated; slack != 0 {
				offset += slack
				r.shiftRowsAfter(row, slack)
			}
		}
		c.Height += recalculatedRowsHeight

		if need := r.table.MeasureHeight(c, c.Content, true); c.Height < need {
			c.Height = need
		}
		c.State = table.StateReconciled
		logging.Logger().Debug("reconciled cell",
			"cell", c.ID, "row", c.Row, "height", c.Height,
			"spannedRows", originalRowsHeight, "recalculatedRows", recalculatedRowsHeight)
	}

	for row, h := range committed {
		rr, _ := r.table.Row(row)
		rr.Height = h
	}
	return offset, nil
}

func (r *Reconciler) shiftRowsAfter(row int, amount float64) {
	for i := row + 1; i < r.table.NumRows(); i++ {
		rr, _ := r.table.Row(i)
		rr.ReduceY(amount)
	}
}

// rowDummyRows returns the distinct rows covered by c's row-span dummies in
// ascending order. With filtered set only rows on this side of the break
// count: up to the last rendered row before it, from the last rendered row
// after it.
func (r *Reconciler) rowDummyRows(c *table.Cell, filtered bool) []int {
	last := r.LastRenderedRow()
	seen := make(map[int]bool)
	rows := make([]int, 0)
	for _, d := range r.table.DummiesOf(c) {
		if !d.IsRowDummy() || seen[d.Row] {
			continue
		}
		if filtered && r.newPage && d.Row < last {
			continue
		}
		if filtered && !r.newPage && d.Row > last {
			continue
		}
		seen[d.Row] = true
		rows = append(rows, d.Row)
	}
	sort.Ints(rows)
	return rows
}

// ReducedCellsForNewPage returns the cells the continuation page has to
// render, in input order. A cell before the last rendered row that spans
// nothing is dropped, as is a spanning cell whose span does not cover the
// last rendered row. Placeholders follow their owner.
func (r *Reconciler) ReducedCellsForNewPage() ([]table.CellID, error) {
	cells, err := r.resolve()
	if err != nil {
		return nil, err
	}
	last := r.LastRenderedRow()
	kept := make([]table.CellID, 0, len(cells))
	for _, c := range cells {
		owner, err := r.table.Owner(c)
		if err != nil {
			return nil, contractViolation(err)
		}
		if r.irrelevant(owner, last) {
			continue
		}
		if !c.IsDummy() {
			c.State = table.StateContinued
		}
		kept = append(kept, c.ID)
	}
	return kept, nil
}

func (r *Reconciler) irrelevant(owner *table.Cell, last int) bool {
	if len(owner.Dummies) == 0 {
		return owner.Row < last
	}
	if owner.Row == last {
		return false
	}
	for _, d := range r.table.DummiesOf(owner) {
		if d.Row == last {
			return false
		}
	}
	return true
}

// Result is the outcome of a full continuation-side pass.
type Result struct {
	Heights RowHeights
	Offset  float64
	Cells   []table.CellID
}

// Reconcile runs the continuation-side steps in order: content hand-over,
// row maxima, height adjustment and cell reduction.
func (r *Reconciler) Reconcile() (Result, error) {
	if len(r.cells) == 0 {
		return Result{Heights: RowHeights{}, Cells: []table.CellID{}}, nil
	}
	if err := r.AdjustContentForNewPage(); err != nil {
		return Result{}, err
	}
	heights, err := r.MaxRowHeights()
	if err != nil {
		return Result{}, err
	}
	offset, err := r.AdjustCellHeights(heights)
	if err != nil {
		return Result{}, err
	}
	cells, err := r.ReducedCellsForNewPage()
	if err != nil {
		return Result{}, err
	}
	return Result{Heights: heights, Offset: offset, Cells: cells}, nil
}
