package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Dumper writes intermediate images to a directory for debugging. A Dumper with
// an empty directory does nothing.
type Dumper struct {
	Dir string
}

// Enabled reports whether dumps are written.
func (d *Dumper) Enabled() bool {
	return d != nil && d.Dir != ""
}

// Dump saves img as "<stage>-<timestamp>-<uuid>.png" and returns the path.
func (d *Dumper) Dump(stage string, img image.Image) (string, error) {
	if !d.Enabled() || img == nil {
		return "", nil
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.png", stage, time.Now().Format("20060102-150405"), uuid.NewString())
	path := filepath.Join(d.Dir, name)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}
