package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
)

// PrepareForOCR converts img to grayscale, first adjusting contrast by the given
// amount (-1 to 1, 0 leaves it unchanged). Tesseract binarizes internally, so a
// clean grayscale input is usually all it needs.
func PrepareForOCR(img image.Image, contrast float64) *image.Gray {
	src := img
	if contrast != 0 {
		src = adjust.Contrast(img, contrast)
	}
	rgba := effect.Grayscale(src)

	b := rgba.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// Grayscale leaves R, G and B equal.
			gray.Pix[gray.PixOffset(x, y)] = rgba.Pix[rgba.PixOffset(x, y)]
		}
	}
	return gray
}
