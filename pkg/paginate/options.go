package paginate

// Options configures pagination.
type Options struct {
	// PageHeight is the vertical space available to the table on each page.
	PageHeight float64
	// FirstPageOffset is space already used above the table on the first page.
	FirstPageOffset float64
}

// DefaultOptions returns a US Letter page with half-inch margins, in points.
func DefaultOptions() Options {
	return Options{
		PageHeight:      792 - 72,
		FirstPageOffset: 0,
	}
}

func (o Options) available(pageNumber int) float64 {
	if pageNumber == 1 {
		return o.PageHeight - o.FirstPageOffset
	}
	return o.PageHeight
}
