package touch

// Kind discriminates between a steady-state report and a one-shot edge
// event in a PollResult.
type Kind uint8

// PollResult kinds.
const (
	// KindSteady reports the current debounced (or ambiguous) state.
	KindSteady Kind = iota
	// KindEdge reports a confirmed transition; fires exactly once.
	KindEdge
)

// State is the current touch state when no transition has been confirmed.
type State uint8

// Steady states.
const (
	// StateUncertain means the pressure fell in the dead zone between
	// the release and touch thresholds.
	StateUncertain State = iota
	// StateNoTouch means the screen is not being touched.
	StateNoTouch
	// StateTouchPresent means the screen is being touched.
	StateTouchPresent
)

// Edge is a confirmed, debounced transition.
type Edge uint8

// Edge events. Touch and release always alternate.
const (
	// EdgeTouch is a debounced transition into touching.
	EdgeTouch Edge = iota
	// EdgeRelease is a debounced transition into released.
	EdgeRelease
)

// PollResult is the outcome of one detector poll. Kind selects which of
// State or Edge is meaningful. The mapped display coordinates, raw
// touchscreen coordinates, and pressure of the sample just read are
// always populated, so a caller can track the finger position while a
// touch is held.
type PollResult struct {
	Kind     Kind
	State    State
	Edge     Edge
	X        int16
	Y        int16
	RawX     int16
	RawY     int16
	Pressure int16
}

// String names the state for logs and wire payloads.
func (s State) String() string {
	switch s {
	case StateNoTouch:
		return "no_touch"
	case StateTouchPresent:
		return "touch_present"
	default:
		return "uncertain"
	}
}

// String names the edge for logs and wire payloads.
func (e Edge) String() string {
	if e == EdgeRelease {
		return "release"
	}
	return "touch"
}
