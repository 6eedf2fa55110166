package table

// CellID addresses a cell in its table's arena.
type CellID int

// NoCell is the Owner of a real cell.
const NoCell CellID = -1

// Kind tags a Cell as real content or as a span placeholder.
type Kind int

const (
	KindReal  Kind = iota // Carries content, may own dummies
	KindDummy             // Placeholder for a position covered by a span
)

// SpanKind tells which direction a dummy extends its owner.
type SpanKind int

const (
	SpanNone   SpanKind = iota // Real cells
	RowSpan                    // Dummy sits in a later row than its owner
	ColumnSpan                 // Dummy sits in the owner's row, in a later column
)

// State is where a real cell is in the per-page-break cycle.
type State int

const (
	StateUnsplit    State = iota // Laid out, not yet split at a page break
	StateSplit                   // Split applied
	StateReconciled              // Heights fixed after a page break
	StateContinued               // Carried onto the continuation page
)

func (s State) String() string {
	switch s {
	case StateUnsplit:
		return "unsplit"
	case StateSplit:
		return "split"
	case StateReconciled:
		return "reconciled"
	case StateContinued:
		return "continued"
	}
	return "unknown"
}

// Outcome records what the last split did with a cell's content.
type Outcome int

const (
	OutcomeNone     Outcome = iota // Never split
	OutcomePartial                 // A prefix fit, the rest is in Overflow
	OutcomeComplete                // Everything fit
	OutcomeDeferred                // Nothing fit, original content restored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePartial:
		return "partial"
	case OutcomeComplete:
		return "complete"
	case OutcomeDeferred:
		return "deferred"
	}
	return "unknown"
}

// Padding is the space between a cell's border and its text.
type Padding struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Cell is one (row, column) position of the grid. Real cells carry content;
// dummy cells only mark positions covered by their owner's span.
type Cell struct {
	ID   CellID
	Kind Kind
	Row  int
	Col  int

	Height float64

	// Real cells
	Content           string
	OriginalContent   string // snapshot taken when the cell is split
	Overflow          string // tokens deferred to the next page
	RowSpan           int
	ColSpan           int
	OriginalHeight    float64 // authored height hint
	HasOriginalHeight bool
	Dummies           []CellID
	State             State
	Outcome           Outcome

	// Dummy cells
	Owner CellID
	Span  SpanKind
}

// IsDummy reports whether c is a span placeholder.
func (c *Cell) IsDummy() bool {
	return c.Kind == KindDummy
}

// IsRowDummy reports whether c is a placeholder for a row span.
func (c *Cell) IsRowDummy() bool {
	return c.Kind == KindDummy && c.Span == RowSpan
}

// Row is one table row.
type Row struct {
	Index  int
	Height float64
	Y      float64 // vertical origin of the row
}

// ReduceY moves the row's origin up by amount.
func (r *Row) ReduceY(amount float64) {
	if amount == 0 {
		return
	}
	r.Y -= amount
}
