package magnifier

// ToggleState is the interaction mode of the magnifier window.
type ToggleState int

const (
	// Free magnifies the area under the cursor; the window stays put.
	Free ToggleState = iota

	// MoveWindow magnifies and keeps the window centred on the cursor.
	MoveWindow

	// Capturing runs one recognize-translate-compose cycle. It only lasts one tick.
	Capturing

	// Frozen keeps the last result on screen and does no work.
	Frozen
)

// String returns the lower-case state name used in logs.
func (s ToggleState) String() string {
	switch s {
	case Free:
		return "free"
	case MoveWindow:
		return "move-window"
	case Capturing:
		return "capturing"
	case Frozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Next returns the state a toggle leads to.
func (s ToggleState) Next() ToggleState {
	switch s {
	case Free:
		return MoveWindow
	case MoveWindow:
		return Capturing
	case Capturing:
		// Capturing never survives a tick; a toggle seen here freezes the result.
		return Frozen
	default:
		return Free
	}
}

// Input is the user input observed during one tick.
type Input int

const (
	// InputNone leaves the state unchanged.
	InputNone Input = iota

	// InputToggle advances to the next state (Space or right click).
	InputToggle
)
