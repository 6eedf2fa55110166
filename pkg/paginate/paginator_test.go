package paginate

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tablesplit/pkg/logging"
	"tablesplit/pkg/table"
	"tablesplit/pkg/text"
)

// tokenMeasurer makes every token one 10-unit line.
type tokenMeasurer struct{}

func (tokenMeasurer) Height(content string, _ float64) float64 {
	return float64(len(text.Tokenize(content))) * 10
}

type cellSpec struct {
	row, col         int
	content          string
	rowSpan, colSpan int
}

func buildTable(t *testing.T, columns int, specs []cellSpec) (*table.Table, []table.CellID) {
	t.Helper()
	tb := table.New(tokenMeasurer{}, table.Padding{})
	widths := make([]float64, columns)
	for i := range widths {
		widths[i] = 100
	}
	tb.SetColumnWidths(widths)
	ids := make([]table.CellID, 0, len(specs))
	for _, s := range specs {
		id, err := tb.AddCell(s.row, s.col, s.content, s.rowSpan, s.colSpan)
		if err != nil {
			t.Fatalf("AddCell: %v", err)
		}
		ids = append(ids, id)
	}
	return tb, ids
}

func paginate(t *testing.T, tb *table.Table, pageHeight float64) []Page {
	t.Helper()
	opts := DefaultOptions()
	opts.PageHeight = pageHeight
	pages, err := New(tb, opts).Paginate()
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	return pages
}

// contentOn returns what cell id shows on each page, "-" where it is absent.
func contentOn(pages []Page, id table.CellID) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = "-"
		for _, c := range p.Cells {
			if c.Cell == id {
				out[i] = c.Content
			}
		}
	}
	return out
}

func joinedTokens(parts []string) []string {
	tokens := make([]string, 0)
	for _, p := range parts {
		if p != "-" {
			tokens = append(tokens, text.Tokenize(p)...)
		}
	}
	return tokens
}

func TestPaginate_SinglePage(t *testing.T) {
	tb, ids := buildTable(t, 2, []cellSpec{
		{0, 0, "a b", 1, 1},
		{0, 1, "c", 1, 1},
		{1, 0, "d", 1, 2},
	})
	pages := paginate(t, tb, 100)
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	p := pages[0]
	if len(p.Rows) != 2 || p.Height != 30 {
		t.Errorf("expected 2 rows 30 tall, got %d rows %f tall", len(p.Rows), p.Height)
	}
	want := PageCell{Cell: ids[2], Row: 1, Col: 0, X: 0, Y: 20, Width: 200, Height: 10, Content: "d"}
	if diff := cmp.Diff(want, p.Cells[2]); diff != "" {
		t.Errorf("spanning cell mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginate_LongCellAcrossPages(t *testing.T) {
	words := make([]string, 25)
	for i := range words {
		words[i] = "w"
	}
	content := strings.Join(words, " ")
	tb, ids := buildTable(t, 1, []cellSpec{{0, 0, content, 1, 1}})

	pages := paginate(t, tb, 100)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	got := contentOn(pages, ids[0])
	counts := []int{len(text.Tokenize(got[0])), len(text.Tokenize(got[1])), len(text.Tokenize(got[2]))}
	if diff := cmp.Diff([]int{10, 10, 5}, counts); diff != "" {
		t.Errorf("tokens per page mismatch (-want +got):\n%s", diff)
	}
	for i, p := range pages {
		if p.Height > 100 {
			t.Errorf("page %d is %f tall", p.Number, p.Height)
		}
		if cont := p.Rows[0].Continued; cont != (i > 0) {
			t.Errorf("page %d: continued=%v", p.Number, cont)
		}
	}
}

func TestPaginate_RowSpanAcrossBreak(t *testing.T) {
	tb, ids := buildTable(t, 2, []cellSpec{
		{0, 0, "a1 a2", 1, 1},
		{0, 1, "b1", 1, 1},
		{1, 0, "c1 c2 c3 c4 c5 c6", 2, 1},
		{1, 1, "d1 d2", 1, 1},
		{2, 1, "e1 e2", 1, 1},
		{3, 0, "f1", 1, 1},
		{3, 1, "g1", 1, 1},
	})
	pages := paginate(t, tb, 50)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	assertCellsFit(t, tb, pages)

	tests := []struct {
		name string
		id   table.CellID
		want []string
	}{
		{"before break", ids[0], []string{"a1 a2", "-"}},
		{"spanning cell", ids[2], []string{"c1 c2 c3", "c4 c5 c6"}},
		{"spanned row cell", ids[4], []string{"e1", "e2"}},
		{"after break", ids[5], []string{"-", "f1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, contentOn(pages, tt.id)); diff != "" {
				t.Errorf("content per page mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if pages[0].Height != 50 {
		t.Errorf("expected first page filled to 50, got %f", pages[0].Height)
	}
}

func TestPaginate_RowMovesWhole(t *testing.T) {
	tb, ids := buildTable(t, 1, []cellSpec{
		{0, 0, "a b c d", 1, 1},
		{1, 0, "x y", 1, 1},
	})
	pages := paginate(t, tb, 45)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if diff := cmp.Diff([]string{"-", "x y"}, contentOn(pages, ids[1])); diff != "" {
		t.Errorf("moved row mismatch (-want +got):\n%s", diff)
	}
	if len(pages[0].Rows) != 1 {
		t.Errorf("expected only row 0 on page 1, got %d rows", len(pages[0].Rows))
	}
}

func TestPaginate_DeferredCellSentWhole(t *testing.T) {
	tb, ids := buildTable(t, 2, []cellSpec{
		{0, 0, "o1 o2 o3 o4 o5 o6", 2, 1},
		{0, 1, "r1 r2 r3 r4", 1, 1},
		{1, 1, "s1 s2", 1, 1},
	})
	pages := paginate(t, tb, 45)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	assertCellsFit(t, tb, pages)
	if diff := cmp.Diff([]string{"o1 o2 o3 o4", "o5 o6"}, contentOn(pages, ids[0])); diff != "" {
		t.Errorf("spanning cell mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "s1 s2"}, contentOn(pages, ids[2])); diff != "" {
		t.Errorf("deferred cell mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginate_TokenConservation(t *testing.T) {
	specs := []cellSpec{
		{0, 0, "a b c", 1, 1},
		{0, 1, "d e f g h i j", 3, 1},
		{0, 2, "k", 1, 1},
		{1, 0, "l m n o p", 1, 1},
		{1, 2, "q r", 2, 1},
		{2, 0, "s", 1, 1},
		{3, 0, "t u v w x y z", 1, 3},
		{4, 0, "aa bb cc dd ee ff gg hh ii jj kk", 1, 2},
		{4, 2, "ll", 1, 1},
	}
	for _, pageHeight := range []float64{15, 25, 35, 50, 75, 120} {
		tb, ids := buildTable(t, 3, specs)
		pages := paginate(t, tb, pageHeight)
		for i, id := range ids {
			want := text.Tokenize(specs[i].content)
			got := joinedTokens(contentOn(pages, id))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("page height %f, cell %d tokens (-want +got):\n%s", pageHeight, id, diff)
			}
		}
	}
}

func TestPaginate_RowTallerThanPage(t *testing.T) {
	h := logging.NewBufferedHandler(slog.LevelWarn)
	logging.SetLogger(slog.New(h))
	defer logging.SetLogger(nil)

	tb, ids := buildTable(t, 1, []cellSpec{{0, 0, "a", 1, 1}, {1, 0, "b", 1, 1}})
	pages := paginate(t, tb, 5)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if diff := cmp.Diff([]string{"a", "-"}, contentOn(pages, ids[0])); diff != "" {
		t.Errorf("forced cell mismatch (-want +got):\n%s", diff)
	}
	if !h.Contains("taller than a page") {
		t.Errorf("expected a warning, got %q", h.String())
	}
}

func TestPaginate_FirstPageOffset(t *testing.T) {
	tb, ids := buildTable(t, 1, []cellSpec{{0, 0, "a b c d", 1, 1}})
	opts := Options{PageHeight: 50, FirstPageOffset: 30}
	pages, err := New(tb, opts).Paginate()
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if diff := cmp.Diff([]string{"a b", "c d"}, contentOn(pages, ids[0])); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginate_InvalidPageHeight(t *testing.T) {
	tb, _ := buildTable(t, 1, []cellSpec{{0, 0, "a", 1, 1}})
	for _, opts := range []Options{{PageHeight: 0}, {PageHeight: 10, FirstPageOffset: 10}} {
		if _, err := New(tb, opts).Paginate(); !errors.Is(err, ErrInvalidPageHeight) {
			t.Errorf("%+v: expected ErrInvalidPageHeight, got %v", opts, err)
		}
	}
}

// assertCellsFit checks that every cell's box is tall enough for the
// content it shows on its page.
func assertCellsFit(t *testing.T, tb *table.Table, pages []Page) {
	t.Helper()
	for _, p := range pages {
		for _, pc := range p.Cells {
			c, err := tb.Cell(pc.Cell)
			if err != nil {
				t.Fatalf("Cell(%d): %v", pc.Cell, err)
			}
			if need := tb.MeasureHeight(c, pc.Content, true); pc.Height < need {
				t.Errorf("page %d: cell %d is %f tall, %q needs %f", p.Number, pc.Cell, pc.Height, pc.Content, need)
			}
		}
	}
}

func rowGeometry(p Page) [][3]float64 {
	out := make([][3]float64, 0, len(p.Rows))
	for _, r := range p.Rows {
		out = append(out, [3]float64{float64(r.Index), r.Y, r.Height})
	}
	return out
}

func TestPaginate_SpanGrowthSurvivesReconcile(t *testing.T) {
	tb, ids := buildTable(t, 3, []cellSpec{
		{0, 0, "b1 b2 b3 b4 b5 b6", 2, 1},
		{0, 1, "a", 4, 1},
		{0, 2, "x0", 1, 1},
		{1, 2, "x1", 1, 1},
		{2, 0, "x2", 1, 1},
		{2, 2, "y2", 1, 1},
		{3, 0, "x3", 1, 1},
		{3, 2, "y3", 1, 1},
	})
	pages := paginate(t, tb, 75)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	assertCellsFit(t, tb, pages)

	want := [][3]float64{{0, 0, 10}, {1, 10, 50}, {2, 60, 10}, {3, 70, 0}}
	if diff := cmp.Diff(want, rowGeometry(pages[0])); diff != "" {
		t.Errorf("page 1 rows (index, y, height) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b1 b2 b3 b4 b5 b6", "-"}, contentOn(pages, ids[0])); diff != "" {
		t.Errorf("spanning cell mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "x3"}, contentOn(pages, ids[6])); diff != "" {
		t.Errorf("deferred cell mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginate_SlackMovesLaterRows(t *testing.T) {
	tb, ids := buildTable(t, 2, []cellSpec{
		{0, 0, "o1 o2 o3 o4 o5 o6 o7 o8", 4, 1},
		{0, 1, "p", 1, 1},
		{1, 1, "q", 1, 1},
		{2, 1, "r1 r2 r3 r4", 1, 1},
		{3, 1, "u", 1, 1},
		{4, 0, "s", 1, 1},
		{4, 1, "t", 1, 1},
	})
	pages := paginate(t, tb, 50)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	assertCellsFit(t, tb, pages)

	tests := []struct {
		name string
		page Page
		rows [][3]float64
	}{
		{"page 1", pages[0], [][3]float64{{0, 0, 10}, {1, 10, 10}, {2, 20, 30}}},
		// Row 3 drops from 20 to 10 once the spanning cell's remainder is
		// all it has to hold, and row 4 follows it up.
		{"page 2", pages[1], [][3]float64{{2, 0, 20}, {3, 20, 10}, {4, 30, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.rows, rowGeometry(tt.page)); diff != "" {
				t.Errorf("rows (index, y, height) mismatch (-want +got):\n%s", diff)
			}
		})
	}

	offsets := []float64{pages[0].Offset, pages[1].Offset}
	if diff := cmp.Diff([]float64{10, 30}, offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"o1 o2 o3 o4 o5", "o6 o7 o8"}, contentOn(pages, ids[0])); diff != "" {
		t.Errorf("spanning cell mismatch (-want +got):\n%s", diff)
	}
	for _, pc := range pages[1].Cells {
		if pc.Cell == ids[0] && (pc.Y != 0 || pc.Height != 30) {
			t.Errorf("continued spanning cell at y=%f height=%f, expected 0 and 30", pc.Y, pc.Height)
		}
	}
}
