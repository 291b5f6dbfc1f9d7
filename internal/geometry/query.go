package geometry

import (
	"errors"
	"fmt"
)

// CursorQuery reports the absolute cursor position. Failures are recoverable.
type CursorQuery interface {
	Position() (ScreenPoint, error)
}

// MonitorQuery returns the work area of the monitor nearest a point. A failed
// platform query may return a zero region; the floor takes care of it.
type MonitorQuery interface {
	WorkAreaNear(p ScreenPoint) MonitorRegion
}

// WindowQuery reports the live application window size.
type WindowQuery interface {
	CurrentSize() (width, height uint32)
}

// ErrCursorUnavailable is returned by cursor queries that have nothing to report.
var ErrCursorUnavailable = errors.New("cursor position unavailable")

// RecoverableQueryError reports a platform query that failed for one tick. The frame
// returned alongside it is built from the last known values.
type RecoverableQueryError struct {
	Query string
	Err   error
}

func (e *RecoverableQueryError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Query, e.Err)
}

func (e *RecoverableQueryError) Unwrap() error {
	return e.Err
}

// Tracker remembers the last cursor position so a failed cursor query degrades to
// "no movement this tick".
type Tracker struct {
	last CursorFrame
}

// NewTracker creates a tracker starting from InitialFrame.
func NewTracker() *Tracker {
	return &Tracker{last: InitialFrame()}
}

// Last returns the most recently computed frame.
func (t *Tracker) Last() CursorFrame {
	return t.last
}

// Refresh recomputes the frame from live queries. If the cursor query fails the
// previous cursor position is reused and a *RecoverableQueryError is returned
// together with the (still valid) frame.
func (t *Tracker) Refresh(cursor CursorQuery, monitors MonitorQuery, window WindowQuery) (CursorFrame, error) {
	pos, err := cursor.Position()
	if err != nil {
		pos = t.last.Cursor
		err = &RecoverableQueryError{Query: "cursor", Err: err}
	}

	t.last = Update(pos, monitors, window)
	return t.last, err
}
