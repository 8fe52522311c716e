// Package pdfwriter renders composed sheets to a printable PDF.
package pdfwriter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/arcanaland/proxymancer/internal/imaging"
	"github.com/arcanaland/proxymancer/internal/sheet"
)

const (
	outputMode     = 0o644
	jpegQuality    = 95
	guideLineWidth = 0.5
	creator        = "proxymancer"
)

// IOError reports that the output file could not be created or written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Options controls rendering.
type Options struct {
	DPI        int
	CutGuides  bool
	GuideColor [3]uint8
	Title      string
}

// Result describes a written document.
type Result struct {
	Pages  int // pages in the document
	Images int // distinct images embedded
}

// Write renders pages to a PDF at path. The file is written to a temporary
// name in the same directory and renamed into place once complete.
func Write(path string, pages []sheet.Page, opts Options) (Result, error) {
	if len(pages) == 0 {
		return Result{}, errors.New("nothing to print")
	}
	if opts.DPI <= 0 {
		return Result{}, fmt.Errorf("invalid dpi %d", opts.DPI)
	}

	// Fail before rendering when the destination is not writable.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return Result{}, &IOError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	doc, images, err := render(pages, opts)
	if err != nil {
		return Result{}, err
	}

	if err := doc.Output(tmp); err != nil {
		return Result{}, &IOError{Path: path, Err: err}
	}
	if err := tmp.Chmod(outputMode); err != nil {
		return Result{}, &IOError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return Result{}, &IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return Result{}, &IOError{Path: path, Err: err}
	}
	committed = true

	return Result{Pages: len(pages), Images: images}, nil
}

func render(pages []sheet.Page, opts Options) (*fpdf.Fpdf, int, error) {
	layout := sheet.Letter()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator(creator, true)
	if opts.Title != "" {
		doc.SetTitle(opts.Title, true)
	}

	imageOpts := fpdf.ImageOptions{ImageType: "JPG"}
	registered := make(map[string]string)

	for _, page := range pages {
		doc.AddPage()

		for i, slot := range page.Cells {
			if slot == nil {
				continue
			}
			name, ok := registered[slot.Key]
			if !ok {
				fitted, err := imaging.Fit(slot.Image, opts.DPI)
				if err != nil {
					return nil, 0, fmt.Errorf("%s: %w", slot.Name, err)
				}
				encoded, err := imaging.EncodeJPEG(fitted, jpegQuality)
				if err != nil {
					return nil, 0, fmt.Errorf("%s: %w", slot.Name, err)
				}
				name = fmt.Sprintf("card-%d", len(registered))
				doc.RegisterImageOptionsReader(name, imageOpts, bytes.NewReader(encoded))
				if err := doc.Error(); err != nil {
					return nil, 0, fmt.Errorf("%s: %w", slot.Name, err)
				}
				registered[slot.Key] = name
			}

			cell := layout.Cell(i)
			doc.ImageOptions(name, cell.X, cell.Y, cell.W, cell.H, false, imageOpts, 0, "")
		}

		if opts.CutGuides {
			drawGuides(doc, layout, opts.GuideColor)
		}
	}

	if err := doc.Error(); err != nil {
		return nil, 0, fmt.Errorf("failed to render pdf: %w", err)
	}
	return doc, len(registered), nil
}

// drawGuides draws the grid lines extended to the page edges so they remain
// visible after the cards are cut out.
func drawGuides(doc *fpdf.Fpdf, l sheet.Layout, color [3]uint8) {
	doc.SetDrawColor(int(color[0]), int(color[1]), int(color[2]))
	doc.SetLineWidth(guideLineWidth)

	left, top := l.MarginX(), l.MarginY()
	for col := 0; col <= sheet.Columns; col++ {
		x := left + float64(col)*l.CellWidth
		doc.Line(x, 0, x, l.PageHeight)
	}
	for row := 0; row <= sheet.Rows; row++ {
		y := top + float64(row)*l.CellHeight
		doc.Line(0, y, l.PageWidth, y)
	}
}
