package pdfwriter

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/proxymancer/internal/card"
	"github.com/arcanaland/proxymancer/internal/sheet"
)

var (
	pageObject  = regexp.MustCompile(`/Type /Page[^s]`)
	imageObject = regexp.MustCompile(`/Subtype /Image`)
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 50, 70))
	for y := 0; y < 70; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pagesFor(items ...sheet.Item) []sheet.Page {
	return sheet.Compose(sheet.Expand(items))
}

func TestWriteSinglePageReusesImages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "proxies.pdf")
	bolt := card.Resolved{Name: "Lightning Bolt", Key: "lightning bolt", Image: pngBytes(t, color.RGBA{200, 30, 30, 255})}

	res, err := Write(out, pagesFor(sheet.Item{Card: bolt, Quantity: 2}), Options{DPI: 72})
	require.NoError(t, err)
	assert.Equal(t, Result{Pages: 1, Images: 1}, res)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Len(t, pageObject.FindAll(data, -1), 1)
	assert.Len(t, imageObject.FindAll(data, -1), 1)
}

func TestWriteMultiplePages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "proxies.pdf")
	bolt := card.Resolved{Name: "Lightning Bolt", Key: "lightning bolt", Image: pngBytes(t, color.RGBA{200, 30, 30, 255})}
	shock := card.Resolved{Name: "Shock", Key: "shock", Image: pngBytes(t, color.RGBA{30, 30, 200, 255})}

	res, err := Write(out, pagesFor(
		sheet.Item{Card: bolt, Quantity: 9},
		sheet.Item{Card: shock, Quantity: 1},
	), Options{DPI: 72, CutGuides: true, GuideColor: [3]uint8{176, 176, 176}, Title: "Burn"})
	require.NoError(t, err)
	assert.Equal(t, Result{Pages: 2, Images: 2}, res)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, pageObject.FindAll(data, -1), 2)
}

func TestWriteUnwritablePath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "proxies.pdf")
	bolt := card.Resolved{Name: "Lightning Bolt", Key: "lightning bolt", Image: pngBytes(t, color.White)}

	_, err := Write(out, pagesFor(sheet.Item{Card: bolt, Quantity: 1}), Options{DPI: 72})
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr), "expected IOError, got %v", err)
	assert.Equal(t, out, ioErr.Path)
}

func TestWriteLeavesNoTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "proxies.pdf")
	broken := card.Resolved{Name: "Broken", Key: "broken", Image: []byte("not an image")}

	_, err := Write(out, pagesFor(sheet.Item{Card: broken, Quantity: 1}), Options{DPI: 72})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteRejectsEmptyInput(t *testing.T) {
	_, err := Write(filepath.Join(t.TempDir(), "out.pdf"), nil, Options{DPI: 300})
	assert.Error(t, err)
}
