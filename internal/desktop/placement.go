package desktop

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// windowAPI is the slice of ebiten's window API used for placement. ebiten
// reports and sets positions relative to the monitor the window is on.
type windowAPI interface {
	Position() (int, int)
	SetPosition(x, y int)
	Size() (int, int)
}

type ebitenWindow struct{}

func (ebitenWindow) Position() (int, int) { return ebiten.WindowPosition() }
func (ebitenWindow) SetPosition(x, y int) { ebiten.SetWindowPosition(x, y) }
func (ebitenWindow) Size() (int, int) { return ebiten.WindowSize() }

// parkingGap is the distance between a parked window and its monitor's edge.
const parkingGap = 16

// placement tracks the window in desktop coordinates on top of ebiten's
// monitor-relative positions. The desktop origin of the window's monitor is
// desktop minus rel.
type placement struct {
	win      windowAPI
	displays func() []image.Rectangle

	// clampsNegative is set where ebiten keeps a window from being placed left
	// of or above its current monitor (Windows).
	clampsNegative bool

	desktop image.Point // window position on the desktop
	rel     image.Point // what ebiten reported for desktop
}

func newPlacement(win windowAPI, displays func() []image.Rectangle, clampsNegative bool) *placement {
	return &placement{win: win, displays: displays, clampsNegative: clampsNegative}
}

// origin returns the desktop origin of the window's monitor. A move that did
// not come from moveTo, such as a drag, is assumed to stay on the same monitor.
// Before the first moveTo the window is assumed to be on the monitor at 0,0.
func (p *placement) origin() image.Point {
	x, y := p.win.Position()
	if now := image.Pt(x, y); now != p.rel {
		p.desktop = p.desktop.Sub(p.rel).Add(now)
		p.rel = now
	}
	return p.desktop.Sub(p.rel)
}

// position returns the window's desktop position.
func (p *placement) position() image.Point {
	p.origin()
	return p.desktop
}

// monitor returns the desktop bounds of the window's monitor, or false when no
// display starts at the derived origin.
func (p *placement) monitor() (image.Rectangle, bool) {
	o := p.origin()
	for _, d := range p.displays() {
		if !d.Empty() && d.Min == o {
			return d, true
		}
	}
	return image.Rectangle{}, false
}

// moveTo places the window at target, in desktop coordinates. The window may
// change monitor, so the resulting desktop position is re-derived from ebiten's
// report: the display origin that puts the window closest to target wins. A
// clamped request leaves the window on its monitor.
func (p *placement) moveTo(target image.Point) {
	o := p.origin()
	rel := target.Sub(o)
	p.win.SetPosition(rel.X, rel.Y)

	x, y := p.win.Position()
	p.rel = image.Pt(x, y)

	best := o.Add(p.rel)
	if p.clampsNegative && (rel.X < 0 || rel.Y < 0) {
		p.desktop = best
		return
	}
	bestDist := dist2(best, target)
	for _, d := range p.displays() {
		if d.Empty() {
			continue
		}
		c := d.Min.Add(p.rel)
		if dd := dist2(c, target); dd < bestDist {
			best, bestDist = c, dd
		}
	}
	p.desktop = best
}

// park moves the window beside its monitor, outside every display. It reports
// false, without moving, when there is no such spot.
func (p *placement) park() bool {
	mon, ok := p.monitor()
	if !ok {
		return false
	}
	w, h := p.win.Size()
	spot, ok := parkingSpot(mon, p.displays(), image.Pt(w, h))
	if !ok {
		return false
	}
	p.moveTo(spot)
	return true
}

// parkingSpot returns a desktop position where a window of the given size
// overlaps no display and mon stays the display nearest to it, trying right of
// mon and then below it. ok is false when every side is taken by a neighbour.
func parkingSpot(mon image.Rectangle, displays []image.Rectangle, size image.Point) (image.Point, bool) {
	spots := []image.Point{
		{X: mon.Max.X + parkingGap, Y: mon.Min.Y},
		{X: mon.Min.X, Y: mon.Max.Y + parkingGap},
	}
	for _, s := range spots {
		r := image.Rectangle{Min: s, Max: s.Add(size)}
		if parkable(r, mon, displays) {
			return s, true
		}
	}
	return image.Point{}, false
}

func parkable(r, mon image.Rectangle, displays []image.Rectangle) bool {
	own := rectDist2(r, mon)
	for _, d := range displays {
		if d.Empty() || d == mon {
			continue
		}
		if d.Overlaps(r) || rectDist2(r, d) <= own {
			return false
		}
	}
	return true
}

// rectDist2 is the squared gap between two rectangles, zero when they touch.
func rectDist2(a, b image.Rectangle) int64 {
	dx := int64(max(b.Min.X-a.Max.X, a.Min.X-b.Max.X, 0))
	dy := int64(max(b.Min.Y-a.Max.Y, a.Min.Y-b.Max.Y, 0))
	return dx*dx + dy*dy
}

func dist2(a, b image.Point) int64 {
	dx, dy := int64(a.X-b.X), int64(a.Y-b.Y)
	return dx*dx + dy*dy
}
