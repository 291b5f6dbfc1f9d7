package magnifier

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/ironsheep/lenzu/internal/geometry"
	"github.com/ironsheep/lenzu/internal/imaging"
	"github.com/ironsheep/lenzu/internal/ocr"
	"github.com/ironsheep/lenzu/internal/translate"
	"github.com/rs/zerolog"
)

var errFake = errors.New("fake failure")

type fakeCursor struct {
	pos geometry.ScreenPoint
	err error
}

func (c *fakeCursor) Position() (geometry.ScreenPoint, error) {
	return c.pos, c.err
}

type fakeMonitors struct {
	region geometry.MonitorRegion
}

func (m *fakeMonitors) WorkAreaNear(geometry.ScreenPoint) geometry.MonitorRegion {
	return m.region
}

// fakeDisplay records every call in order.
type fakeDisplay struct {
	w, h      uint32
	visible   bool
	calls     []string
	presented []image.Image
	moves     []geometry.ScreenPoint
}

func newFakeDisplay(w, h uint32) *fakeDisplay {
	return &fakeDisplay{w: w, h: h, visible: true}
}

func (d *fakeDisplay) Present(img image.Image) {
	d.calls = append(d.calls, "present")
	d.presented = append(d.presented, img)
}

func (d *fakeDisplay) SetVisible(v bool) {
	d.visible = v
	if v {
		d.calls = append(d.calls, "show")
	} else {
		d.calls = append(d.calls, "hide")
	}
}

func (d *fakeDisplay) MoveTo(p geometry.ScreenPoint) {
	d.calls = append(d.calls, "move")
	d.moves = append(d.moves, p)
}

func (d *fakeDisplay) CurrentSize() (uint32, uint32) { return d.w, d.h }

// fakeCapturer returns a solid image of the requested size and remembers whether
// the display was visible at grab time.
type fakeCapturer struct {
	display       *fakeDisplay
	err           error
	rects         []geometry.Rect
	visibleAtGrab []bool
}

func (c *fakeCapturer) Grab(r geometry.Rect) (image.Image, error) {
	c.rects = append(c.rects, r)
	if c.display != nil {
		c.display.calls = append(c.display.calls, "grab")
		c.visibleAtGrab = append(c.visibleAtGrab, c.display.visible)
	}
	if c.err != nil {
		return nil, c.err
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(r.Dx()), int(r.Dy())))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0x20, 0x20, 0x20, 0xff
	}
	return img, nil
}

type fakeEngine struct {
	mu     sync.Mutex
	text   string
	err    error
	block  bool
	calls  int
	images []image.Image
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Init(context.Context) ([]string, error) { return []string{"jpn"}, nil }

func (e *fakeEngine) Evaluate(ctx context.Context, img image.Image) (*ocr.Result, error) {
	e.mu.Lock()
	e.calls++
	e.images = append(e.images, img)
	e.mu.Unlock()

	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return ocr.NewResult("fake", e.text, nil), nil
}

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type fakeTranslator struct {
	prefix string
	err    error
	inputs []string
}

func (t *fakeTranslator) Name() string { return "fake" }

func (t *fakeTranslator) Init(context.Context) ([]string, error) { return []string{"ja", "ja"}, nil }

func (t *fakeTranslator) Convert(_ context.Context, text string) (*translate.Result, error) {
	t.inputs = append(t.inputs, text)
	if t.err != nil {
		return nil, t.err
	}
	return translate.NewResult(t.prefix + text), nil
}

// boxFont draws each rune as a solid block so overlays are easy to detect.
type boxFont struct{}

func (boxFont) GlyphAdvance() int { return 4 }

func (boxFont) MeasureLine(text string) (int, int) { return len([]rune(text)) * 4, 4 }

func (f boxFont) DrawLine(dst draw.Image, text string, x, y int, c color.Color) {
	w, h := f.MeasureLine(text)
	draw.Draw(dst, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, draw.Over)
}

func newTestCompositor() *imaging.Compositor {
	c := imaging.NewCompositor(boxFont{})
	c.Margin = 1
	return c
}

type harness struct {
	cursor     *fakeCursor
	display    *fakeDisplay
	capturer   *fakeCapturer
	engine     *fakeEngine
	translator *fakeTranslator
	machine    *Machine
}

func newHarness(cfg Config) *harness {
	h := &harness{
		cursor:     &fakeCursor{pos: geometry.ScreenPoint{X: 500, Y: 400}},
		display:    newFakeDisplay(200, 100),
		engine:     &fakeEngine{text: "日本語"},
		translator: &fakeTranslator{prefix: "にほんご:"},
	}
	h.capturer = &fakeCapturer{display: h.display}
	monitors := &fakeMonitors{region: geometry.MonitorRegion{Width: 1920, Height: 1080}}
	pipeline := NewPipeline(h.engine, h.translator, newTestCompositor(), PipelineOptions{}, zerolog.Nop())
	h.machine = NewMachine(Deps{
		Cursor:   h.cursor,
		Monitors: monitors,
		Display:  h.display,
		Capturer: h.capturer,
		Pipeline: pipeline,
	}, cfg, zerolog.Nop())
	return h
}
