// Package desktop connects the magnifier to the real desktop: an ebiten window
// that presents frames and reads input, plus screen capture and monitor queries
// through kbinani/screenshot.
package desktop

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ironsheep/lenzu/internal/geometry"
	"github.com/ironsheep/lenzu/internal/magnifier"
	"github.com/rs/zerolog"
)

// Title is the window title.
const Title = "lenzu"

var (
	_ magnifier.Display    = (*Host)(nil)
	_ geometry.CursorQuery = (*Host)(nil)
	_ ebiten.Game          = (*Host)(nil)
)

// Ticker advances the magnifier by one tick.
type Ticker interface {
	Tick(ctx context.Context, in magnifier.Input) error
}

// WindowOptions configures the host window.
type WindowOptions struct {
	Width, Height int
	TPS           int
}

// Host is the magnifier window. It implements magnifier.Display,
// geometry.CursorQuery and ebiten.Game. All methods run on ebiten's game
// goroutine.
type Host struct {
	opts   WindowOptions
	log    zerolog.Logger
	ctx    context.Context
	ticker Ticker

	frame   *ebiten.Image
	scratch *image.RGBA

	place     *placement
	hidden    bool
	minimized bool        // hidden by minimizing instead of parking
	restore   image.Point // desktop position to return to when shown
}

// NewHost creates a host; the window opens in Run.
func NewHost(opts WindowOptions, log zerolog.Logger) *Host {
	return &Host{
		opts:  opts,
		log:   log,
		ctx:   context.Background(),
		place: newPlacement(ebitenWindow{}, activeDisplayBounds, runtime.GOOS == "windows"),
	}
}

// Run opens the window and drives t until Escape, window close or ctx
// cancellation. Escape and close return nil.
func (h *Host) Run(ctx context.Context, t Ticker) error {
	h.ctx = ctx
	h.ticker = t

	ebiten.SetWindowTitle(Title)
	ebiten.SetWindowSize(h.opts.Width, h.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowFloating(true)
	if h.opts.TPS > 0 {
		ebiten.SetTPS(h.opts.TPS)
	}

	h.log.Info().Int("width", h.opts.Width).Int("height", h.opts.Height).Int("tps", h.opts.TPS).Msg("opening window")
	err := ebiten.RunGame(h)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update reads input and ticks the magnifier.
func (h *Host) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.log.Info().Msg("escape pressed")
		return ebiten.Termination
	}

	in := magnifier.InputNone
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		in = magnifier.InputToggle
	}

	if err := h.ticker.Tick(h.ctx, in); err != nil {
		if h.ctx.Err() != nil {
			h.log.Info().Err(err).Msg("shutting down")
			return ebiten.Termination
		}
		return err
	}
	return nil
}

// Draw shows the last presented frame at the top-left corner.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.frame == nil {
		return
	}
	screen.DrawImage(h.frame, nil)
}

// Layout keeps one logical pixel per window pixel.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Present uploads img for the next Draw.
func (h *Host) Present(img image.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if h.scratch == nil || h.scratch.Bounds().Size() != b.Size() {
		h.scratch = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		h.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	draw.Draw(h.scratch, h.scratch.Bounds(), img, b.Min, draw.Src)
	h.frame.WritePixels(h.scratch.Pix)
}

// SetVisible moves the window next to its monitor, outside every display, or
// brings it back. When all sides of the monitor border other displays the
// window is minimized instead.
func (h *Host) SetVisible(visible bool) {
	switch {
	case !visible && !h.hidden:
		h.hidden = true
		h.restore = h.place.position()
		if h.place.park() {
			return
		}
		h.minimized = true
		ebiten.MinimizeWindow()
	case visible && h.hidden:
		h.hidden = false
		if h.minimized {
			h.minimized = false
			ebiten.RestoreWindow()
		}
		h.place.moveTo(h.restore)
	}
}

// MoveTo places the window at p in desktop coordinates. While hidden only the
// restore position changes.
func (h *Host) MoveTo(p geometry.ScreenPoint) {
	target := image.Pt(int(p.X), int(p.Y))
	if h.hidden {
		h.restore = target
		return
	}
	h.place.moveTo(target)
}

// CurrentSize returns the window's client size.
func (h *Host) CurrentSize() (uint32, uint32) {
	w, ht := ebiten.WindowSize()
	return uint32(max(w, 0)), uint32(max(ht, 0))
}

// Position returns the cursor in desktop coordinates. ebiten reports it relative
// to the window, and the window relative to its monitor.
func (h *Host) Position() (geometry.ScreenPoint, error) {
	if ebiten.IsWindowMinimized() {
		return geometry.ScreenPoint{}, geometry.ErrCursorUnavailable
	}
	p := h.place.position().Add(image.Pt(ebiten.CursorPosition()))
	return geometry.ScreenPoint{X: int32(p.X), Y: int32(p.Y)}, nil
}
