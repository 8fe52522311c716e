package sheet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/proxymancer/internal/card"
)

func resolved(name string) card.Resolved {
	return card.Resolved{Name: name, Key: name, Image: []byte(name)}
}

func TestExpandPreservesOrderAndQuantity(t *testing.T) {
	slots := Expand([]Item{
		{Card: resolved("Lightning Bolt"), Quantity: 2},
		{Card: resolved("Shock"), Quantity: 1},
		{Card: resolved("Lava Spike"), Quantity: 3},
	})

	var names []string
	for _, s := range slots {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Lightning Bolt", "Lightning Bolt",
		"Shock",
		"Lava Spike", "Lava Spike", "Lava Spike",
	}, names)
}

func TestPageCount(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 9: 1, 10: 2, 18: 2, 19: 3}
	for slots, want := range cases {
		assert.Equal(t, want, PageCount(slots), "slots=%d", slots)
	}
}

func TestComposeTenSlots(t *testing.T) {
	var items []Item
	for i := 0; i < 10; i++ {
		items = append(items, Item{Card: resolved(fmt.Sprintf("card-%d", i)), Quantity: 1})
	}

	pages := Compose(Expand(items))
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 9, pages[0].Filled())
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, 1, pages[1].Filled())

	require.NotNil(t, pages[1].Cells[0])
	assert.Equal(t, "card-9", pages[1].Cells[0].Name)
	for i := 1; i < CellsPerPage; i++ {
		assert.Nil(t, pages[1].Cells[i], "cell %d should be empty", i)
	}

	for i := 0; i < CellsPerPage; i++ {
		assert.Equal(t, fmt.Sprintf("card-%d", i), pages[0].Cells[i].Name)
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	slots := Expand([]Item{
		{Card: resolved("Lightning Bolt"), Quantity: 4},
		{Card: resolved("Counterspell"), Quantity: 7},
	})

	first := Compose(slots)
	second := Compose(slots)
	assert.Equal(t, first, second)
}

func TestComposeEmpty(t *testing.T) {
	assert.Empty(t, Compose(nil))
}

func TestLetterLayout(t *testing.T) {
	l := Letter()
	assert.Equal(t, 612.0, l.PageWidth)
	assert.Equal(t, 792.0, l.PageHeight)
	assert.Equal(t, 180.0, l.CellWidth)
	assert.Equal(t, 252.0, l.CellHeight)
	assert.Equal(t, 36.0, l.MarginX())
	assert.Equal(t, 18.0, l.MarginY())

	assert.Equal(t, Rect{X: 36, Y: 18, W: 180, H: 252}, l.Cell(0))
	assert.Equal(t, Rect{X: 396, Y: 18, W: 180, H: 252}, l.Cell(2))
	assert.Equal(t, Rect{X: 216, Y: 270, W: 180, H: 252}, l.Cell(4))
	assert.Equal(t, Rect{X: 396, Y: 522, W: 180, H: 252}, l.Cell(8))
}
