package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Physical card size in inches
const (
	CardWidthInches  = 2.5
	CardHeightInches = 3.5
)

// CardPixels returns the pixel size of a card printed at dpi
func CardPixels(dpi int) (width, height int) {
	return int(CardWidthInches * float64(dpi)), int(CardHeightInches * float64(dpi))
}

// Decode decodes PNG, JPEG, GIF or WebP image data
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Check reports whether data is an image format Decode understands,
// reading only the header.
func Check(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("unsupported image data: %w", err)
	}
	return nil
}

// Fit decodes a card image and scales it to exactly fill a card at dpi.
// Transparent areas (rounded corners on Scryfall PNGs) become white. The
// image is scaled to cover the card and the overflow is cropped evenly from
// both sides.
func Fit(data []byte, dpi int) (image.Image, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid dpi %d", dpi)
	}
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}
	width, height := CardPixels(dpi)
	return cover(flatten(src, color.White), width, height), nil
}

// EncodeJPEG encodes img as a JPEG with the given quality
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten composites src over a solid background
func flatten(src image.Image, bg color.Color) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// cover resizes img to cover width×height and center-crops the rest
func cover(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if srcW == 0 || srcH == 0 {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		return dst
	}

	srcRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(width) / float64(height)

	var newW, newH int
	if srcRatio > targetRatio {
		// wider than a card
		newH = height
		newW = max(width, int(float64(height)*srcRatio+0.5))
	} else {
		newW = width
		newH = max(height, int(float64(width)/srcRatio+0.5))
	}

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
	rb := resized.Bounds()
	left := (rb.Dx() - width) / 2
	top := (rb.Dy() - height) / 2
	draw.Draw(dst, dst.Bounds(), resized, image.Pt(rb.Min.X+left, rb.Min.Y+top), draw.Src)
	return dst
}
