// Package ansiart renders card images as half-block terminal art.
package ansiart

import (
	"fmt"
	"image"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"

	"github.com/arcanaland/proxymancer/internal/imaging"
)

const (
	upperHalfBlock = '▀'
	reset          = "\x1b[0m"
	gutter         = 4
	minTextWidth   = 20
)

// Rows returns the number of terminal rows needed to draw a card width
// columns wide. Each row holds two pixel rows.
func Rows(width int) int {
	return max(1, int(float64(width)*imaging.CardHeightInches/imaging.CardWidthInches/2+0.5))
}

// RenderCard decodes image data and renders it width columns wide.
func RenderCard(data []byte, width int, trueColor bool) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("invalid width %d", width)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return "", err
	}
	return Render(img, width, Rows(width), trueColor), nil
}

// Render draws img in width×height character cells. The top half of every
// cell is the foreground and the bottom half the background.
func Render(img image.Image, width, height int, trueColor bool) string {
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			upper := averageColor(colorAt(resized, x, y), colorAt(resized, x+1, y))
			lower := averageColor(colorAt(resized, x, y+1), colorAt(resized, x+1, y+1))
			buffer.WriteString(cell(upperHalfBlock, upper, lower, trueColor))
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}

func colorAt(img image.Image, x, y int) colorful.Color {
	b := img.Bounds()
	if x < b.Max.X-b.Min.X && y < b.Max.Y-b.Min.Y {
		if c, ok := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y)); ok {
			return c
		}
	}
	// out of bounds or fully transparent
	return colorful.Color{}
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}.Clamped()
}

func cell(char rune, fg, bg colorful.Color, trueColor bool) string {
	if trueColor {
		r1, g1, b1 := fg.RGB255()
		r2, g2, b2 := bg.RGB255()
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c%s", r1, g1, b1, r2, g2, b2, char, reset)
	}
	return fmt.Sprintf("\x1b[38;5;%dm\x1b[48;5;%dm%c%s", xterm256(fg), xterm256(bg), char, reset)
}

// xterm256 maps c onto the 6×6×6 color cube of the 256-color palette
func xterm256(c colorful.Color) int {
	r, g, b := c.RGB255()
	return 16 + 36*cubeIndex(r) + 6*cubeIndex(g) + cubeIndex(b)
}

func cubeIndex(v uint8) int {
	if v < 48 {
		return 0
	}
	if v < 115 {
		return 1
	}
	return int(v-35) / 40
}

// StripANSI removes escape sequences from s.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		switch {
		case inEscape:
			if c == 'm' {
				inEscape = false
			}
		case c == '\x1b':
			inEscape = true
		default:
			result.WriteRune(c)
		}
	}
	return result.String()
}

// VisibleWidth returns the number of runes s occupies once escapes are removed.
func VisibleWidth(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// WrapText breaks text into lines of at most width runes. Words longer than
// width get a line of their own.
func WrapText(text string, width int) []string {
	if width < minTextWidth {
		width = minTextWidth
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// SideBySide writes art on the left and info on the right. Info lines are
// not wrapped; use InfoWidth to size them beforehand.
func SideBySide(w io.Writer, art string, info []string) error {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	artWidth := 0
	for _, line := range artLines {
		artWidth = max(artWidth, VisibleWidth(line))
	}
	infoCol := artWidth + gutter

	var b strings.Builder
	b.WriteString("\n")
	for i := 0; i < max(len(artLines), len(info)); i++ {
		b.WriteString("  ")
		if i < len(artLines) {
			b.WriteString(artLines[i])
			b.WriteString(strings.Repeat(" ", infoCol-VisibleWidth(artLines[i])))
		} else {
			b.WriteString(strings.Repeat(" ", infoCol))
		}
		if i < len(info) {
			b.WriteString(info[i])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// InfoWidth returns the columns left for text next to art width columns wide
// in a terminal termWidth columns wide.
func InfoWidth(termWidth, artWidth int) int {
	return max(minTextWidth, termWidth-artWidth-gutter-4)
}
