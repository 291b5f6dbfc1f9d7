package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// LoadImage decodes an image file. PNG, JPEG, GIF, TIFF and BMP are supported.
// EXIF orientation is applied so photos of screens come out upright.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return img, nil
}

// SaveImage encodes img to path; the format follows the file extension.
func SaveImage(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
