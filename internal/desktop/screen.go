package desktop

import (
	"fmt"
	"image"

	"github.com/ironsheep/lenzu/internal/geometry"
	"github.com/kbinani/screenshot"
	"github.com/rs/zerolog"
)

// ScreenGrabber copies desktop pixels with kbinani/screenshot.
type ScreenGrabber struct{}

// Grab captures r in desktop coordinates. The result has its origin at 0,0.
func (ScreenGrabber) Grab(r geometry.Rect) (image.Image, error) {
	if r.Empty() {
		return nil, fmt.Errorf("cannot capture empty rectangle %s", r)
	}
	img, err := screenshot.CaptureRect(r.Image())
	if err != nil {
		return nil, fmt.Errorf("screen capture %s failed: %w", r, err)
	}
	return img, nil
}

// Monitors answers work-area queries from the active displays. The display bounds
// include taskbars; kbinani/screenshot has no work-area query.
type Monitors struct {
	log zerolog.Logger

	// bounds enumerates the displays; tests replace it.
	bounds func() []image.Rectangle
}

// NewMonitors creates a Monitors backed by the live display list.
func NewMonitors(log zerolog.Logger) *Monitors {
	return &Monitors{log: log, bounds: activeDisplayBounds}
}

// WorkAreaNear returns the display containing p, or the closest one.
func (m *Monitors) WorkAreaNear(p geometry.ScreenPoint) geometry.MonitorRegion {
	regions := Regions(m.bounds())
	if len(regions) == 0 {
		m.log.Warn().Msg("no active displays reported")
	}
	return geometry.NearestRegion(regions, p)
}

// Regions converts display bounds to monitor regions, skipping empty ones.
func Regions(bounds []image.Rectangle) []geometry.MonitorRegion {
	regions := make([]geometry.MonitorRegion, 0, len(bounds))
	for _, b := range bounds {
		if b.Empty() {
			continue
		}
		regions = append(regions, geometry.MonitorRegion{
			Origin: geometry.ScreenPoint{X: int32(b.Min.X), Y: int32(b.Min.Y)},
			Width:  uint32(b.Dx()),
			Height: uint32(b.Dy()),
		})
	}
	return regions
}

func activeDisplayBounds() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	bounds := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		bounds = append(bounds, screenshot.GetDisplayBounds(i))
	}
	return bounds
}
