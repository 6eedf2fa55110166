// Package paginate lays a table out over fixed-height pages, splitting the
// row that overflows each page and carrying its remainder to the next.
package paginate

import (
	"errors"
	"fmt"

	"tablesplit/pkg/logging"
	"tablesplit/pkg/splittable"
	"tablesplit/pkg/table"
)

// ErrInvalidPageHeight is returned for a page with no room for the table.
var ErrInvalidPageHeight = errors.New("paginate: page height must be positive")

// Paginator walks a table's rows and emits one Page per page.
type Paginator struct {
	table    *table.Table
	opts     Options
	splitter *splittable.Splitter

	start   int                   // first row of the current page
	carried map[table.CellID]bool // cells continued from the previous break
	pending float64               // continuation-side offset of the previous break
}

// New returns a Paginator for t.
func New(t *table.Table, opts Options) *Paginator {
	return &Paginator{
		table:    t,
		opts:     opts,
		splitter: splittable.NewSplitter(t),
		carried:  make(map[table.CellID]bool),
	}
}

// Paginate lays out the table and returns its pages in order.
func (p *Paginator) Paginate() ([]Page, error) {
	if p.opts.PageHeight <= 0 || p.opts.available(1) <= 0 {
		return nil, ErrInvalidPageHeight
	}
	p.table.Layout()

	pages := make([]Page, 0)
	n := p.table.NumRows()
	for p.start < n {
		number := len(pages) + 1
		page, next, err := p.layoutPage(number)
		if err != nil {
			return pages, fmt.Errorf("page %d: %w", number, err)
		}
		pages = append(pages, page)
		p.start = next
	}
	return pages, nil
}

// layoutPage places rows from p.start until one overflows, breaks the page
// there and returns the first row of the next page.
func (p *Paginator) layoutPage(number int) (Page, int, error) {
	avail := p.opts.available(number)
	p.translate()

	r := p.start
	for ; r < p.table.NumRows(); r++ {
		row, err := p.table.Row(r)
		if err != nil {
			return Page{}, r, err
		}
		if row.Y+row.Height > avail {
			break
		}
	}
	if r == p.table.NumRows() {
		return p.snapshot(number, r-1), r, nil
	}
	row, _ := p.table.Row(r)
	return p.breakPage(number, r, avail-row.Y)
}

// breakPage splits row r, which starts remaining units above the page
// bottom, reconciles both sides of the break and snapshots the page.
func (p *Paginator) breakPage(number, r int, remaining float64) (Page, int, error) {
	cells, err := p.breakCells(r)
	if err != nil {
		return Page{}, r, err
	}
	logging.Logger().Debug("page break", "page", number, "row", r, "remaining", remaining, "cells", len(cells))

	results := make([]splittable.SplitResult, 0, len(cells))
	for _, id := range cells {
		c, err := p.table.Cell(id)
		if err != nil {
			return Page{}, r, err
		}
		if c.IsDummy() {
			continue
		}
		budget := remaining + p.rowsHeight(max(c.Row, p.start), r)
		res, err := p.splitter.Split(id, budget)
		if err != nil {
			return Page{}, r, err
		}
		results = append(results, res)
	}

	if allDeferred(results) {
		if r > p.start && p.originateIn(results, r) {
			// The whole row moves to the next page.
			p.resetOutcomes(results)
			page := p.snapshot(number, r-1)
			p.carried = make(map[table.CellID]bool)
			p.pending = 0
			return page, r, nil
		}
		if r == p.start {
			return p.forcePlace(number, r, results)
		}
	}
	for _, res := range results {
		if !res.Fits() {
			p.deferWhole(res.Cell)
		}
	}

	breakRow, _ := p.table.Row(r)
	bottom := breakRow.Y + breakRow.Height
	old := splittable.NewReconciler(cells, r+1, false, p.table)
	heights, err := old.MaxRowHeights()
	if err != nil {
		return Page{}, r, err
	}
	if _, err := old.AdjustCellHeights(heights); err != nil {
		return Page{}, r, err
	}
	// Rows of earlier pages may have been resized too; only shifts within
	// this page are kept.
	p.translate()
	offset := bottom - (breakRow.Y + breakRow.Height)
	p.resize(r, p.demandBefore(results, r), p.opts.available(number)-breakRow.Y)
	page := p.snapshot(number, r)
	page.Offset += offset

	res, err := splittable.NewReconciler(cells, r+1, true, p.table).Reconcile()
	if err != nil {
		return page, r, err
	}
	p.carried = make(map[table.CellID]bool, len(res.Cells))
	for _, id := range res.Cells {
		p.carried[id] = true
	}
	p.resize(r, p.demandAfter(res.Cells, r), -1)
	p.pending = res.Offset
	logging.Logger().Debug("page reconciled", "page", number, "offset", page.Offset, "next", res.Offset, "carried", len(res.Cells))
	return page, r, nil
}

// forcePlace handles a row whose first token is taller than an empty page:
// the row is placed whole and overflows the page bottom.
func (p *Paginator) forcePlace(number, r int, results []splittable.SplitResult) (Page, int, error) {
	logging.Logger().Warn("row taller than a page, placing it whole", "page", number, "row", r)
	p.resetOutcomes(results)
	page := p.snapshot(number, r)
	p.carried = make(map[table.CellID]bool)
	p.pending = 0
	for _, res := range results {
		c, _ := p.table.Cell(res.Cell)
		if c.Row+c.RowSpan-1 > r {
			// Already rendered in full; later pages show the rest of its span empty.
			c.Content = ""
			p.carried[c.ID] = true
		}
	}
	return page, r + 1, nil
}

// breakCells returns the real cells occupying row r, including cells from
// earlier rows spanning into it, each followed by its dummies.
func (p *Paginator) breakCells(r int) ([]table.CellID, error) {
	ids := make([]table.CellID, 0)
	seen := make(map[table.CellID]bool)
	for _, c := range p.table.CellsInRow(r) {
		owner, err := p.table.Owner(c)
		if err != nil {
			return nil, err
		}
		if seen[owner.ID] {
			continue
		}
		seen[owner.ID] = true
		ids = append(ids, owner.ID)
		ids = append(ids, owner.Dummies...)
	}
	return ids, nil
}

// deferWhole empties a cell on this page and sends all its content on.
func (p *Paginator) deferWhole(id table.CellID) {
	c, err := p.table.Cell(id)
	if err != nil {
		return
	}
	if c.Overflow != "" {
		c.Overflow = c.Content + " " + c.Overflow
	} else {
		c.Overflow = c.Content
	}
	c.Content = ""
	c.Outcome = table.OutcomePartial
	c.Height = p.table.MeasureHeight(c, "", true)
}

func (p *Paginator) resetOutcomes(results []splittable.SplitResult) {
	for _, res := range results {
		if c, err := p.table.Cell(res.Cell); err == nil {
			c.Outcome = table.OutcomeNone
			c.State = table.StateUnsplit
		}
	}
}

// demandBefore is the height row r needs on the page before the break: each
// cell's kept content less the rows it already covers on this page.
func (p *Paginator) demandBefore(results []splittable.SplitResult, r int) float64 {
	need := 0.0
	for _, res := range results {
		c, err := p.table.Cell(res.Cell)
		if err != nil {
			continue
		}
		h := p.table.MeasureHeight(c, c.Content, true) - p.rowsHeight(max(c.Row, p.start), r)
		need = max(need, h)
	}
	return need
}

// demandAfter is the height row r needs at the top of the next page: each
// continued cell's content less the later rows it spans.
func (p *Paginator) demandAfter(cells []table.CellID, r int) float64 {
	need := 0.0
	for _, id := range cells {
		c, err := p.table.Cell(id)
		if err != nil || c.IsDummy() || c.Content == "" {
			continue
		}
		last := min(c.Row+c.RowSpan, p.table.NumRows())
		h := p.table.MeasureHeight(c, c.Content, true) - p.rowsHeight(r+1, last)
		need = max(need, h)
	}
	return need
}

// resize sets row r to h, at least zero and, when limit is not negative, at
// most limit. Later rows move by the change.
func (p *Paginator) resize(r int, h, limit float64) {
	row, err := p.table.Row(r)
	if err != nil {
		return
	}
	if limit >= 0 {
		h = min(h, limit)
	}
	h = max(h, 0)
	p.shiftFrom(r+1, row.Height-h)
	row.Height = h
}

// translate moves the rows from p.start on so that p.start is at the top of
// the page, keeping their relative positions.
func (p *Paginator) translate() {
	if top, err := p.table.Row(p.start); err == nil {
		p.shiftFrom(p.start, top.Y)
	}
}

// shiftFrom moves every row from index from onward up by amount.
func (p *Paginator) shiftFrom(from int, amount float64) {
	rows, err := p.table.Rows(from, p.table.NumRows())
	if err != nil {
		return
	}
	for _, row := range rows {
		row.ReduceY(amount)
	}
}

// rowsHeight sums the recorded heights of rows from through to-1.
func (p *Paginator) rowsHeight(from, to int) float64 {
	rows, err := p.table.Rows(from, max(from, to))
	if err != nil {
		return 0
	}
	h := 0.0
	for _, row := range rows {
		h += row.Height
	}
	return h
}

// originateIn reports whether every split cell starts in row r.
func (p *Paginator) originateIn(results []splittable.SplitResult, r int) bool {
	for _, res := range results {
		if c, err := p.table.Cell(res.Cell); err != nil || c.Row != r {
			return false
		}
	}
	return true
}

func allDeferred(results []splittable.SplitResult) bool {
	for _, res := range results {
		if res.Fits() {
			return false
		}
	}
	return len(results) > 0
}

// snapshot captures rows p.start through last and the cells on them.
func (p *Paginator) snapshot(number, last int) Page {
	page := Page{Number: number, Offset: p.pending}
	for i := p.start; i <= last; i++ {
		row, err := p.table.Row(i)
		if err != nil {
			break
		}
		page.Rows = append(page.Rows, PageRow{
			Index:     i,
			Y:         row.Y,
			Height:    row.Height,
			Continued: i == p.start && p.carried[p.firstCarriedIn(i)],
		})
		page.Height = row.Y + row.Height
	}

	columnX := p.columnOffsets()
	for _, c := range p.table.Cells() {
		if c.IsDummy() {
			continue
		}
		first, end := max(c.Row, p.start), min(c.Row+c.RowSpan-1, last)
		if first > end {
			continue
		}
		if c.Row < p.start && !p.carried[c.ID] {
			continue
		}
		top, _ := p.table.Row(first)
		bottom, _ := p.table.Row(end)
		x := 0.0
		if c.Col < len(columnX) {
			x = columnX[c.Col]
		}
		page.Cells = append(page.Cells, PageCell{
			Cell:    c.ID,
			Row:     c.Row,
			Col:     c.Col,
			X:       x,
			Y:       top.Y,
			Width:   p.table.CellWidth(c),
			Height:  bottom.Y + bottom.Height - top.Y,
			Content: c.Content,
		})
	}
	return page
}

// firstCarriedIn returns a carried cell positioned in row i, or table.NoCell.
func (p *Paginator) firstCarriedIn(i int) table.CellID {
	for _, c := range p.table.CellsInRow(i) {
		if owner, err := p.table.Owner(c); err == nil && p.carried[owner.ID] {
			return owner.ID
		}
	}
	return table.NoCell
}

func (p *Paginator) columnOffsets() []float64 {
	widths := p.table.ColumnWidths()
	offsets := make([]float64, len(widths))
	x := 0.0
	for i, w := range widths {
		offsets[i] = x
		x += w
	}
	return offsets
}
