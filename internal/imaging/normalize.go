package imaging

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedImage is returned for nil or zero-sized images.
var ErrUnsupportedImage = errors.New("unsupported image: nil or empty")

// Normalize returns a copy of img as non-premultiplied 8-bit RGBA with bounds
// starting at (0,0). Grayscale, 16-bit, paletted and YCbCr inputs are all converted.
// The input is never aliased, so callers may mutate the result freely.
func Normalize(img image.Image) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrUnsupportedImage
	}
	return imaging.Clone(img), nil
}
