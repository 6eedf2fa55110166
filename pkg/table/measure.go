package table

// MeasureHeight returns the height c needs to render content. Padding is
// included. Unless ignoringSpan is set, the recorded heights of the other
// rows a real cell spans are subtracted, leaving what the cell demands from
// its own row.
func (t *Table) MeasureHeight(c *Cell, content string, ignoringSpan bool) float64 {
	width := t.CellWidth(c) - t.padding.Left - t.padding.Right
	h := t.padding.Top + t.padding.Bottom
	if content != "" && t.measurer != nil {
		h += t.measurer.Height(content, width)
	}
	if ignoringSpan || c.IsDummy() {
		return h
	}
	for r := c.Row + 1; r < c.Row+c.RowSpan && r < len(t.rows); r++ {
		h -= t.rows[r].Height
	}
	if h < 0 {
		h = 0
	}
	return h
}

// NaturalHeight is the height of c's current content ignoring its span. When
// respectOriginal is set an authored height hint is honoured as a minimum.
func (t *Table) NaturalHeight(c *Cell, respectOriginal bool) float64 {
	h := t.MeasureHeight(c, c.Content, true)
	if respectOriginal && c.HasOriginalHeight && c.OriginalHeight > h {
		h = c.OriginalHeight
	}
	return h
}

// RecalculateRowHeight returns the height row i needs: the tallest real
// cell that starts in it without spanning further rows, and for every
// row-spanning cell ending in it, what its content still needs after the
// recorded heights of the rows above.
func (t *Table) RecalculateRowHeight(i int, respectOriginal bool) (float64, error) {
	if _, err := t.Row(i); err != nil {
		return 0, err
	}
	h := t.singleRowHeight(i, respectOriginal)
	for _, c := range t.CellsInRow(i) {
		if !c.IsRowDummy() {
			continue
		}
		owner, err := t.Owner(c)
		if err != nil {
			return 0, err
		}
		if owner.Row+owner.RowSpan-1 != i || owner.Col != c.Col {
			continue
		}
		need := t.NaturalHeight(owner, respectOriginal)
		for r := owner.Row; r < i; r++ {
			need -= t.rows[r].Height
		}
		h = max(h, need)
	}
	return h, nil
}

// singleRowHeight is the tallest real cell starting in row i that spans no
// further rows.
func (t *Table) singleRowHeight(i int, respectOriginal bool) float64 {
	h := 0.0
	for _, c := range t.CellsInRow(i) {
		if c.IsDummy() || c.RowSpan > 1 {
			continue
		}
		h = max(h, t.NaturalHeight(c, respectOriginal))
	}
	return h
}

// RecalculateCellHeight re-measures a cell from its current content. A
// dummy takes the recalculated height of its row (row span) or its owner's
// height (column span).
func (t *Table) RecalculateCellHeight(c *Cell, respectOriginal bool) (float64, error) {
	if !c.IsDummy() {
		c.Height = t.NaturalHeight(c, respectOriginal)
		return c.Height, nil
	}
	if c.Span == ColumnSpan {
		owner, err := t.Owner(c)
		if err != nil {
			return 0, err
		}
		c.Height = owner.Height
		return c.Height, nil
	}
	h, err := t.RecalculateRowHeight(c.Row, respectOriginal)
	if err != nil {
		return 0, err
	}
	c.Height = h
	return h, nil
}

// Layout sizes every row from its cells, grows the last spanned row of a
// row-spanning cell whose content does not fit, stacks the rows from y=0 and
// sets each cell's height to the rows it covers.
func (t *Table) Layout() {
	for i, row := range t.rows {
		row.Height = t.singleRowHeight(i, true)
	}
	for _, c := range t.cells {
		if c.IsDummy() || c.RowSpan < 2 {
			continue
		}
		last := c.Row + c.RowSpan - 1
		have := 0.0
		for r := c.Row; r <= last; r++ {
			have += t.rows[r].Height
		}
		if need := t.NaturalHeight(c, true); need > have {
			t.rows[last].Height += need - have
		}
	}
	t.Restack(0, 0)
	t.syncCellHeights()
}

// Restack positions rows from index from onward, starting at y.
func (t *Table) Restack(from int, y float64) {
	for i := from; i < len(t.rows); i++ {
		t.rows[i].Y = y
		y += t.rows[i].Height
	}
}

func (t *Table) syncCellHeights() {
	for _, c := range t.cells {
		if c.IsDummy() {
			c.Height = t.rows[c.Row].Height
			continue
		}
		h := 0.0
		for r := c.Row; r < c.Row+c.RowSpan; r++ {
			h += t.rows[r].Height
		}
		c.Height = h
	}
}
