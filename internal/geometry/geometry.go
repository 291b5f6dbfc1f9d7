package geometry

import (
	"fmt"
	"image"
)

// Floor applied to the work area of the monitor under the cursor.
const (
	MinMonitorWidth  uint32 = 1024
	MinMonitorHeight uint32 = 768
)

// ScreenPoint is a position in desktop coordinates. Either component may be negative.
type ScreenPoint struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

func (p ScreenPoint) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect is a desktop rectangle. Left/Top are inclusive, Right/Bottom exclusive.
type Rect struct {
	Left   int32 `json:"left"`
	Top    int32 `json:"top"`
	Right  int32 `json:"right"`
	Bottom int32 `json:"bottom"`
}

// Dx returns the rectangle width, or 0 when the rectangle is inverted.
func (r Rect) Dx() int32 {
	if r.Right <= r.Left {
		return 0
	}
	return r.Right - r.Left
}

// Dy returns the rectangle height, or 0 when the rectangle is inverted.
func (r Rect) Dy() int32 {
	if r.Bottom <= r.Top {
		return 0
	}
	return r.Bottom - r.Top
}

// Empty reports whether the rectangle contains no pixels.
func (r Rect) Empty() bool {
	return r.Dx() == 0 || r.Dy() == 0
}

// Image converts the rectangle to an image.Rectangle in the same coordinate space.
func (r Rect) Image() image.Rectangle {
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom))
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// MonitorRegion is the work area of a monitor: the display area minus taskbars and
// other reserved system UI.
type MonitorRegion struct {
	Origin ScreenPoint `json:"origin"`
	Width  uint32      `json:"width"`
	Height uint32      `json:"height"`
}

// Rect returns the work area as a desktop rectangle.
func (m MonitorRegion) Rect() Rect {
	return Rect{
		Left:   m.Origin.X,
		Top:    m.Origin.Y,
		Right:  m.Origin.X + int32(m.Width),
		Bottom: m.Origin.Y + int32(m.Height),
	}
}

// Contains reports whether p lies inside the work area.
func (m MonitorRegion) Contains(p ScreenPoint) bool {
	r := m.Rect()
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// withFloor widens the region to at least MinMonitorWidth x MinMonitorHeight.
func (m MonitorRegion) withFloor() MonitorRegion {
	if m.Width < MinMonitorWidth {
		m.Width = MinMonitorWidth
	}
	if m.Height < MinMonitorHeight {
		m.Height = MinMonitorHeight
	}
	return m
}

// CaptureWindowFrame is the application window, re-centred so that its visual centre
// is the cursor. It is deliberately left unclamped.
type CaptureWindowFrame struct {
	Origin ScreenPoint `json:"origin"`
	Width  uint32      `json:"width"`
	Height uint32      `json:"height"`
}

// Rect returns the frame as a desktop rectangle.
func (w CaptureWindowFrame) Rect() Rect {
	return Rect{
		Left:   w.Origin.X,
		Top:    w.Origin.Y,
		Right:  w.Origin.X + int32(w.Width),
		Bottom: w.Origin.Y + int32(w.Height),
	}
}

// CursorFrame is a consistent per-tick snapshot of cursor, monitor and window.
type CursorFrame struct {
	Cursor  ScreenPoint        `json:"cursor"`
	Monitor MonitorRegion      `json:"monitor"`
	Window  CaptureWindowFrame `json:"window"`
}

// CaptureRect derives the pixel-capture rectangle: the window frame with each edge
// clamped independently to the current monitor work area.
func (f CursorFrame) CaptureRect() Rect {
	win := f.Window.Rect()
	mon := f.Monitor.Rect()

	r := Rect{
		Left:   max32(mon.Left, win.Left),
		Top:    max32(mon.Top, win.Top),
		Right:  min32(mon.Right, win.Right),
		Bottom: min32(mon.Bottom, win.Bottom),
	}
	if r.Right < r.Left {
		r.Right = r.Left
	}
	if r.Bottom < r.Top {
		r.Bottom = r.Top
	}
	return r
}

// InitialFrame is the frame used before the first successful refresh.
func InitialFrame() CursorFrame {
	return CursorFrame{
		Monitor: MonitorRegion{Width: MinMonitorWidth, Height: MinMonitorHeight},
		Window:  CaptureWindowFrame{Width: 1, Height: 1},
	}
}

// Update computes the CursorFrame for the given cursor position. It has no side
// effects beyond the two queries.
func Update(cursor ScreenPoint, monitors MonitorQuery, window WindowQuery) CursorFrame {
	monitor := monitors.WorkAreaNear(cursor).withFloor()

	w, h := window.CurrentSize()
	return CursorFrame{
		Cursor:  cursor,
		Monitor: monitor,
		Window: CaptureWindowFrame{
			Origin: ScreenPoint{
				X: cursor.X - int32(w/2),
				Y: cursor.Y - int32(h/2),
			},
			Width:  w,
			Height: h,
		},
	}
}

// NearestRegion returns the region containing p, or failing that the region whose
// edge is closest to p. With no regions it returns the floor-sized region at the
// origin.
func NearestRegion(regions []MonitorRegion, p ScreenPoint) MonitorRegion {
	if len(regions) == 0 {
		return MonitorRegion{}.withFloor()
	}

	best := regions[0]
	bestDist := int64(-1)
	for _, r := range regions {
		if r.Contains(p) {
			return r
		}
		d := distanceSquared(r.Rect(), p)
		if bestDist < 0 || d < bestDist {
			best = r
			bestDist = d
		}
	}
	return best
}

// distanceSquared is the squared distance from p to the closest point of r.
func distanceSquared(r Rect, p ScreenPoint) int64 {
	var dx, dy int64
	switch {
	case p.X < r.Left:
		dx = int64(r.Left - p.X)
	case p.X >= r.Right:
		dx = int64(p.X - r.Right + 1)
	}
	switch {
	case p.Y < r.Top:
		dy = int64(r.Top - p.Y)
	case p.Y >= r.Bottom:
		dy = int64(p.Y - r.Bottom + 1)
	}
	return dx*dx + dy*dy
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
