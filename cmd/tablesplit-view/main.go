package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"tablesplit/pkg/htmltable"
	"tablesplit/pkg/paginate"
	"tablesplit/pkg/render"
	"tablesplit/pkg/text"
)

func main() {
	width := flag.Float64("w", 540, "table width")
	pageHeight := flag.Float64("h", 720, "page height available to the table")
	fontPath := flag.String("font", "", "TrueType font file (default: built-in 7x13 face)")
	fontSize := flag.Float64("size", 12, "font size in points")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tablesplit-view [flags] <input.html>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	input := flag.Arg(0)

	m := text.NewFaceMeasurer(*fontPath, *fontSize, 1)
	loadOpts := htmltable.DefaultOptions()
	loadOpts.Width = *width
	t, err := htmltable.Open(input, m, loadOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", input, err)
		os.Exit(1)
	}
	opts := paginate.DefaultOptions()
	opts.PageHeight = *pageHeight
	pages, err := paginate.New(t, opts).Paginate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error paginating: %v\n", err)
		os.Exit(1)
	}

	style := render.DefaultStyle()
	w, h := render.PageSize(t.ColumnWidths(), *pageHeight, style)
	images := render.RenderPages(pages, w, h, m, t.Padding(), style)
	if len(images) == 0 {
		images = []image.Image{image.NewRGBA(image.Rect(0, 0, w, h))}
	}

	a := app.New()
	win := a.NewWindow("tablesplit: " + input)
	win.Resize(fyne.NewSize(float32(w)+40, float32(h)+80))

	canvasImg := canvas.NewImageFromImage(images[0])
	canvasImg.FillMode = canvas.ImageFillOriginal
	status := widget.NewLabel("")

	current := 0
	show := func(i int) {
		current = i
		canvasImg.Image = images[i]
		canvasImg.Refresh()
		status.SetText(fmt.Sprintf("Page %d of %d", i+1, len(images)))
	}
	prev := widget.NewButton("Previous", func() {
		if current > 0 {
			show(current - 1)
		}
	})
	next := widget.NewButton("Next", func() {
		if current < len(images)-1 {
			show(current + 1)
		}
	})
	show(0)

	// Buttons on top, status at bottom, page fills center
	topBar := container.NewHBox(prev, next)
	content := container.NewBorder(topBar, status, nil, nil, container.NewScroll(canvasImg))
	win.SetContent(content)
	win.ShowAndRun()
}
