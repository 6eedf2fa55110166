// Package splittable splits table cells across a page break and reconciles
// the heights of the rows the break tears apart.
package splittable

import (
	"tablesplit/pkg/logging"
	"tablesplit/pkg/table"
	"tablesplit/pkg/text"
)

// SplitResult is what Split decided for one cell.
type SplitResult struct {
	Cell     table.CellID
	Accepted string        // content kept on the current page
	Overflow string        // tokens this split deferred to the next page
	Height   float64       // height of the accepted content
	Outcome  table.Outcome // Partial, Complete or Deferred
}

// Fits reports whether any content stays on the current page.
func (r SplitResult) Fits() bool {
	return r.Outcome == table.OutcomePartial || r.Outcome == table.OutcomeComplete
}

// Splitter finds how much of a cell's content fits a height budget.
type Splitter struct {
	table *table.Table
}

// NewSplitter returns a Splitter measuring cells of t.
func NewSplitter(t *table.Table) *Splitter {
	return &Splitter{table: t}
}

// Split keeps the longest whole-token prefix of the cell's content whose
// height does not exceed maxAvailableHeight and moves the remaining tokens
// to the cell's overflow. Prefixes grow one token at a time and growth stops
// at the first prefix that is too tall. The new remainder is placed ahead of
// any overflow an earlier split left on the cell, so overflow keeps the
// original token order.
//
// When not even the first token fits, the cell keeps its full original
// content and its overflow is left untouched, so it renders whole on the
// next page.
func (s *Splitter) Split(id table.CellID, maxAvailableHeight float64) (SplitResult, error) {
	if maxAvailableHeight < 0 {
		return SplitResult{Cell: id}, ErrNegativeBudget
	}
	cell, err := s.table.Cell(id)
	if err != nil {
		return SplitResult{Cell: id}, contractViolation(err)
	}
	if cell.IsDummy() {
		return SplitResult{Cell: id}, ErrDummyCell
	}

	original := cell.Content
	cell.OriginalContent = original
	tokens := text.Tokenize(original)

	accepted := 0
	for accepted < len(tokens) {
		candidate := text.JoinTokens(tokens[:accepted+1])
		if s.table.MeasureHeight(cell, candidate, true) > maxAvailableHeight {
			break
		}
		accepted++
	}

	res := SplitResult{Cell: id}
	switch {
	case len(tokens) == 0 || accepted == len(tokens):
		res.Outcome = table.OutcomeComplete
		res.Accepted = original
	case accepted == 0:
		res.Outcome = table.OutcomeDeferred
		res.Accepted = original
		logging.Logger().Debug("nothing fits, deferring cell",
			"cell", id, "row", cell.Row, "budget", maxAvailableHeight)
	default:
		res.Outcome = table.OutcomePartial
		res.Accepted = text.JoinTokens(tokens[:accepted])
		res.Overflow = text.JoinTokens(tokens[accepted:])
		cell.Overflow = prependTokens(res.Overflow, cell.Overflow)
	}
	cell.Content = res.Accepted
	cell.State = table.StateSplit
	cell.Outcome = res.Outcome

	res.Height, err = s.recalculateHeights(cell)
	if err != nil {
		return res, err
	}
	logging.Logger().Debug("split cell",
		"cell", id, "outcome", res.Outcome, "kept", accepted, "tokens", len(tokens), "height", res.Height)
	return res, nil
}

// recalculateHeights re-measures the cell from its final content, then each
// of its dummies so span bookkeeping is current for the reconciler.
func (s *Splitter) recalculateHeights(cell *table.Cell) (float64, error) {
	cell.Height = s.table.MeasureHeight(cell, cell.Content, true)
	for _, d := range s.table.DummiesOf(cell) {
		if _, err := s.table.RecalculateCellHeight(d, true); err != nil {
			return cell.Height, contractViolation(err)
		}
	}
	return cell.Height, nil
}

// prependTokens puts the tokens of a new split ahead of tokens deferred by
// an earlier split of the same content, keeping overall token order.
func prependTokens(head, tail string) string {
	switch {
	case tail == "":
		return head
	case head == "":
		return tail
	}
	return head + " " + tail
}
