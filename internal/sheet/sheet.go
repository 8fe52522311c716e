// Package sheet lays card images out on printable pages.
//
// Every page is a fixed 3×3 grid of card-sized cells centered on US Letter
// paper. Cells are filled row by row in the order the cards were requested;
// only the last page can have empty cells.
package sheet

import (
	"github.com/arcanaland/proxymancer/internal/card"
	"github.com/arcanaland/proxymancer/internal/imaging"
)

const (
	Columns      = 3
	Rows         = 3
	CellsPerPage = Columns * Rows

	pointsPerInch = 72
)

// Item is a resolved card with the number of copies to print.
type Item struct {
	Card     card.Resolved
	Quantity int
}

// Slot is one printed copy of a card.
type Slot struct {
	Name  string
	Key   string
	Image []byte
}

// Page is a 3×3 grid. A nil cell is left blank.
type Page struct {
	Number int // 1-based
	Cells  [CellsPerPage]*Slot
}

// Filled returns the number of non-empty cells.
func (p *Page) Filled() int {
	n := 0
	for _, c := range p.Cells {
		if c != nil {
			n++
		}
	}
	return n
}

// Expand repeats every item Quantity times, preserving order.
func Expand(items []Item) []Slot {
	total := 0
	for _, it := range items {
		total += max(it.Quantity, 0)
	}

	slots := make([]Slot, 0, total)
	for _, it := range items {
		for i := 0; i < it.Quantity; i++ {
			slots = append(slots, Slot{Name: it.Card.Name, Key: it.Card.Key, Image: it.Card.Image})
		}
	}
	return slots
}

// PageCount returns ceil(slots / CellsPerPage).
func PageCount(slots int) int {
	if slots <= 0 {
		return 0
	}
	return (slots + CellsPerPage - 1) / CellsPerPage
}

// Compose distributes slots over pages in order.
func Compose(slots []Slot) []Page {
	pages := make([]Page, PageCount(len(slots)))
	for i := range slots {
		page := &pages[i/CellsPerPage]
		page.Number = i/CellsPerPage + 1
		page.Cells[i%CellsPerPage] = &slots[i]
	}
	return pages
}

// Rect is a rectangle in PDF points with a top-left origin.
type Rect struct {
	X, Y, W, H float64
}

// Layout describes page and cell geometry in points.
type Layout struct {
	PageWidth  float64
	PageHeight float64
	CellWidth  float64
	CellHeight float64
}

// Letter returns the layout for US Letter paper and standard card size.
func Letter() Layout {
	return Layout{
		PageWidth:  8.5 * pointsPerInch,
		PageHeight: 11 * pointsPerInch,
		CellWidth:  imaging.CardWidthInches * pointsPerInch,
		CellHeight: imaging.CardHeightInches * pointsPerInch,
	}
}

// MarginX returns the left (and right) margin that centers the grid.
func (l Layout) MarginX() float64 {
	return (l.PageWidth - Columns*l.CellWidth) / 2
}

// MarginY returns the top (and bottom) margin that centers the grid.
func (l Layout) MarginY() float64 {
	return (l.PageHeight - Rows*l.CellHeight) / 2
}

// Cell returns the rectangle of cell i, counted row by row from the top left.
func (l Layout) Cell(i int) Rect {
	row, col := i/Columns, i%Columns
	return Rect{
		X: l.MarginX() + float64(col)*l.CellWidth,
		Y: l.MarginY() + float64(row)*l.CellHeight,
		W: l.CellWidth,
		H: l.CellHeight,
	}
}
