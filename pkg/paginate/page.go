package paginate

import "tablesplit/pkg/table"

// Page is a snapshot of one rendered page of the table.
type Page struct {
	Number int
	Rows   []PageRow
	Cells  []PageCell
	Height float64 // vertical space the table uses on the page
	// Offset is how far reconciling the breaks that bound this page moved
	// its rows up. It is negative when they moved down.
	Offset float64
}

// PageRow is a row as placed on a page. Continued marks a row that started
// on an earlier page.
type PageRow struct {
	Index     int
	Y         float64
	Height    float64
	Continued bool
}

// PageCell is a real cell as placed on a page, covering every spanned row
// that falls on the page.
type PageCell struct {
	Cell    table.CellID
	Row     int
	Col     int
	X       float64
	Y       float64
	Width   float64
	Height  float64
	Content string
}
