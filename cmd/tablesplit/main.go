package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tablesplit/pkg/htmltable"
	"tablesplit/pkg/logging"
	"tablesplit/pkg/paginate"
	"tablesplit/pkg/render"
	"tablesplit/pkg/text"
	"tablesplit/pkg/visualtest"
)

// errReferenceMismatch is returned when -ref is given and a page differs
// from its reference image.
var errReferenceMismatch = errors.New("pages differ from reference")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tablesplit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	width := fs.Float64("w", 540, "table width")
	pageHeight := fs.Float64("h", 720, "page height available to the table")
	firstOffset := fs.Float64("first", 0, "space already used on the first page")
	output := fs.String("o", "page", "output file prefix; pages are written to <prefix>-N.png")
	fontPath := fs.String("font", "", "TrueType font file (default: built-in 7x13 face)")
	fontSize := fs.Float64("size", 12, "font size in points")
	mono := fs.Bool("mono", false, "measure on a monospace grid and print pages as text instead of PNGs")
	ref := fs.String("ref", "", "reference prefix; compare each page with <ref>-N.png")
	verbose := fs.Bool("v", false, "log page breaks to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tablesplit [flags] <input.html>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("missing input file")
	}
	input := fs.Arg(0)

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer logging.SetLogger(nil)
	}

	face := text.NewFaceMeasurer(*fontPath, *fontSize, 1)
	var m text.Measurer = face
	if *mono {
		m = text.MonoMeasurer{CellWidth: 7, LineHeight: 13}
	}

	loadOpts := htmltable.DefaultOptions()
	loadOpts.Width = *width
	t, err := htmltable.Open(input, m, loadOpts)
	if err != nil {
		return fmt.Errorf("loading %s: %w", input, err)
	}

	opts := paginate.Options{PageHeight: *pageHeight, FirstPageOffset: *firstOffset}
	pages, err := paginate.New(t, opts).Paginate()
	if err != nil {
		return fmt.Errorf("paginating: %w", err)
	}

	if *mono {
		printPages(stdout, pages)
		return nil
	}

	style := render.DefaultStyle()
	w, h := render.PageSize(t.ColumnWidths(), *pageHeight, style)
	mismatched := 0
	for _, page := range pages {
		r := render.NewRenderer(w, h, face, t.Padding(), style)
		r.Render(page)
		filename := render.PageFilename(*output, page.Number)
		if err := r.SavePNG(filename); err != nil {
			return fmt.Errorf("saving %s: %w", filename, err)
		}
		fmt.Fprintf(stderr, "Saved %s (%s)\n", filename, rowRange(page))

		if *ref != "" {
			refFile := render.PageFilename(*ref, page.Number)
			result, err := visualtest.ComparePNG(filename, refFile, visualtest.DefaultOptions())
			if err != nil || !result.Match {
				mismatched++
				fmt.Fprintf(stderr, "Page %d differs from %s: %v\n", page.Number, refFile, describe(result, err))
			}
		}
	}
	fmt.Fprintf(stdout, "Paginated %d rows onto %d pages\n", t.NumRows(), len(pages))
	if mismatched > 0 {
		return fmt.Errorf("%w: %d of %d", errReferenceMismatch, mismatched, len(pages))
	}
	return nil
}

func describe(result *visualtest.CompareResult, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%d of %d pixels", result.DifferentPixels, result.TotalPixels)
}

func rowRange(page paginate.Page) string {
	if len(page.Rows) == 0 {
		return "no rows"
	}
	first, last := page.Rows[0], page.Rows[len(page.Rows)-1]
	if first.Index == last.Index {
		return fmt.Sprintf("row %d", first.Index)
	}
	return fmt.Sprintf("rows %d-%d", first.Index, last.Index)
}

// printPages writes each page's cells in row order, one per line.
func printPages(w io.Writer, pages []paginate.Page) {
	for _, page := range pages {
		fmt.Fprintf(w, "--- page %d (%s, height %g)\n", page.Number, rowRange(page), page.Height)
		for _, c := range page.Cells {
			fmt.Fprintf(w, "[%d,%d] %s\n", c.Row, c.Col, c.Content)
		}
	}
}
