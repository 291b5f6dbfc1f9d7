package magnifier

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/lenzu/internal/geometry"
	"github.com/ironsheep/lenzu/internal/imaging"
	"github.com/rs/zerolog"
)

// ErrEmptyCapture means the capture rectangle lies entirely off the monitor.
var ErrEmptyCapture = errors.New("capture rectangle is empty")

// Capturer copies desktop pixels.
type Capturer interface {
	Grab(r geometry.Rect) (image.Image, error)
}

// Display is the magnifier window.
type Display interface {
	// Present shows img in the window.
	Present(img image.Image)

	// SetVisible hides the window from screen captures, or shows it again.
	SetVisible(visible bool)

	// MoveTo places the window's top-left corner.
	MoveTo(p geometry.ScreenPoint)

	// CurrentSize returns the window's client size.
	CurrentSize() (uint32, uint32)
}

// Config tunes a Machine.
type Config struct {
	// Magnify is the zoom factor applied in Free and MoveWindow. 1 shows the capture
	// at its natural size.
	Magnify int

	// HideOnCapture hides the window around every grab so it does not capture
	// itself.
	HideOnCapture bool
}

// Deps are the collaborators of a Machine.
type Deps struct {
	Cursor   geometry.CursorQuery
	Monitors geometry.MonitorQuery
	Display  Display
	Capturer Capturer
	Pipeline *Pipeline
}

// Machine drives the magnifier one tick at a time. It is not safe for concurrent
// use; the host calls Tick from its update loop.
type Machine struct {
	state   ToggleState
	tracker *geometry.Tracker
	deps    Deps
	cfg     Config
	log     zerolog.Logger
	last    *Outcome
}

// NewMachine creates a Machine in the Free state.
func NewMachine(deps Deps, cfg Config, log zerolog.Logger) *Machine {
	return &Machine{
		state:   Free,
		tracker: geometry.NewTracker(),
		deps:    deps,
		cfg:     cfg,
		log:     log,
	}
}

// State returns the current state.
func (m *Machine) State() ToggleState { return m.state }

// Frame returns the last computed cursor frame.
func (m *Machine) Frame() geometry.CursorFrame { return m.tracker.Last() }

// LastOutcome returns the result of the most recent capture, or nil.
func (m *Machine) LastOutcome() *Outcome { return m.last }

// Tick applies in and performs the work of the resulting state. Recoverable
// failures are logged and never returned; the error is only set when ctx is done.
//
// # Per-state work
//
//   - Free: refresh the cursor frame, grab and present (magnified when configured).
//   - MoveWindow: move the window onto the cursor, then as Free.
//   - Capturing: grab once, run the pipeline, present the best image and freeze.
//   - Frozen: nothing; the last image stays on screen.
//
// OCR and translation block the call for at most their configured timeouts.
func (m *Machine) Tick(ctx context.Context, in Input) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if in == InputToggle {
		prev := m.state
		m.state = m.state.Next()
		m.log.Info().Stringer("from", prev).Stringer("to", m.state).Msg("toggle")
	}

	switch m.state {
	case Free:
		m.follow(false)
	case MoveWindow:
		m.follow(true)
	case Capturing:
		m.capture(ctx)
		m.state = Frozen
		m.log.Debug().Stringer("to", m.state).Msg("capture complete")
	case Frozen:
	}
	return nil
}

func (m *Machine) refresh() geometry.CursorFrame {
	frame, err := m.tracker.Refresh(m.deps.Cursor, m.deps.Monitors, m.deps.Display)
	if err != nil {
		m.log.Warn().Err(err).Msg("using last cursor position")
	}
	return frame
}

// follow shows the magnified area under the cursor, optionally dragging the window
// along.
func (m *Machine) follow(move bool) {
	frame := m.refresh()
	if move {
		m.deps.Display.MoveTo(frame.Window.Origin)
	}

	img, err := m.grab(frame.CaptureRect())
	if err != nil {
		m.log.Warn().Err(err).Stringer("rect", frame.CaptureRect()).Msg("grab failed")
		return
	}

	if m.cfg.Magnify > 1 {
		zoomed, err := imaging.Magnify(img, m.cfg.Magnify)
		if err != nil {
			m.log.Warn().Err(err).Msg("magnify failed")
		} else {
			img = zoomed
		}
	}
	m.deps.Display.Present(img)
}

func (m *Machine) capture(ctx context.Context) {
	frame := m.refresh()
	img, err := m.grab(frame.CaptureRect())
	if err != nil {
		m.log.Warn().Err(err).Stringer("rect", frame.CaptureRect()).Msg("grab failed; nothing to recognize")
		return
	}

	m.last = m.deps.Pipeline.Run(ctx, img)
	m.deps.Display.Present(m.last.Display())
}

// grab captures r with the window hidden.
func (m *Machine) grab(r geometry.Rect) (image.Image, error) {
	if r.Empty() {
		return nil, ErrEmptyCapture
	}
	release := m.hideForCapture()
	defer release()
	return m.deps.Capturer.Grab(r)
}

// hideForCapture hides the window and returns the func that shows it again.
func (m *Machine) hideForCapture() func() {
	if !m.cfg.HideOnCapture {
		return func() {}
	}
	m.deps.Display.SetVisible(false)
	return func() { m.deps.Display.SetVisible(true) }
}
