package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular region from an image
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrUnsupportedImage
	}
	bounds := img.Bounds()

	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: must have positive width and height", r)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}

	return imaging.Crop(img, r), nil
}

// Magnify zooms into the centre of img by factor and returns an image of the same
// size. A factor of 1 or less returns a normalized copy.
func Magnify(img image.Image, factor int) (*image.NRGBA, error) {
	dst, err := Normalize(img)
	if err != nil {
		return nil, err
	}
	if factor <= 1 {
		return dst, nil
	}

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	cw, ch := max(w/factor, 1), max(h/factor, 1)
	center := imaging.CropCenter(dst, cw, ch)
	return imaging.Resize(center, w, h, imaging.Lanczos), nil
}
