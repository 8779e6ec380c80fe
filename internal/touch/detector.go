package touch

import (
	"fmt"
	"time"

	"github.com/touchplate/touchplate/internal/tsmap"
)

// Default detection parameters, suitable for most panels.
const (
	DefaultDebounceMillis     = 20
	DefaultMinTouchPressure   = 5
	DefaultMaxReleasePressure = 0
)

// Clock returns a monotonic millisecond timestamp. It may wrap; elapsed
// time is computed by unsigned subtraction, which stays correct across a
// single wraparound.
type Clock func() uint32

// Config sets the detector's debounce and hysteresis parameters.
// Pressures between MaxReleasePressure and MinTouchPressure are the
// ambiguous dead zone that keeps noisy samples near a single threshold
// from flickering between touch and release.
type Config struct {
	DebounceMillis     uint32
	MinTouchPressure   int16
	MaxReleasePressure int16
}

// DefaultConfig returns the default detection parameters.
func DefaultConfig() Config {
	return Config{
		DebounceMillis:     DefaultDebounceMillis,
		MinTouchPressure:   DefaultMinTouchPressure,
		MaxReleasePressure: DefaultMaxReleasePressure,
	}
}

// Detector turns the stream of raw pressure samples from a Source into a
// debounced two-state event stream, annotating every report with mapped
// display coordinates. It is single-threaded: all state is mutated only
// by Poll calls from the owning loop.
type Detector struct {
	src    Source
	mapper *tsmap.Mapper
	cfg    Config

	lastWasTouch bool
	mark         uint32
	now          Clock
}

// NewDetector wires a detector to its raw source and mapper. The
// thresholds must satisfy MaxReleasePressure < MinTouchPressure;
// inverted thresholds would make every sample permanently ambiguous, so
// they are rejected here rather than discovered in the field.
func NewDetector(src Source, mapper *tsmap.Mapper, cfg Config) (*Detector, error) {
	if src == nil {
		return nil, fmt.Errorf("touch source is required")
	}
	if mapper == nil {
		return nil, fmt.Errorf("mapper is required")
	}
	if cfg.MaxReleasePressure >= cfg.MinTouchPressure {
		return nil, fmt.Errorf("max release pressure %d must be below min touch pressure %d",
			cfg.MaxReleasePressure, cfg.MinTouchPressure)
	}

	d := &Detector{
		src:    src,
		mapper: mapper,
		cfg:    cfg,
		now:    defaultClock(),
	}
	d.mark = d.now()
	return d, nil
}

// SetClock overrides the millisecond clock, for tests.
func (d *Detector) SetClock(fn Clock) {
	if fn != nil {
		d.now = fn
		d.mark = fn()
	}
}

// Mapper returns the coordinate mapper the detector annotates with.
func (d *Detector) Mapper() *tsmap.Mapper { return d.mapper }

// Poll reads exactly one raw sample, classifies it against the pressure
// thresholds, and runs the debounce step. A candidate state matching the
// last confirmed state resets the debounce timer and reports steady
// state; a differing candidate must hold for DebounceMillis before the
// transition is confirmed and the one-shot edge fires. Poll never blocks.
func (d *Detector) Poll() PollResult {
	s := d.src.ReadSample()
	x, y := d.mapper.ToDisplay(s.X, s.Y)

	res := PollResult{
		Kind:     KindSteady,
		State:    StateUncertain,
		X:        x,
		Y:        y,
		RawX:     s.X,
		RawY:     s.Y,
		Pressure: s.Z,
	}

	candidate := d.lastWasTouch
	switch {
	case s.Z >= d.cfg.MinTouchPressure:
		candidate = true
		res.State = StateTouchPresent
	case s.Z <= d.cfg.MaxReleasePressure:
		candidate = false
		res.State = StateNoTouch
	}

	// No change from the last confirmed state: restart the debounce timer.
	if candidate == d.lastWasTouch {
		d.mark = d.now()
		return res
	}

	// Candidate differs; don't confirm until it has held long enough.
	if d.now()-d.mark < d.cfg.DebounceMillis {
		return res
	}

	d.mark = d.now()
	d.lastWasTouch = candidate
	res.Kind = KindEdge
	if candidate {
		res.Edge = EdgeTouch
	} else {
		res.Edge = EdgeRelease
	}
	return res
}

// defaultClock counts milliseconds since construction, truncated to
// uint32 so long uptimes wrap the same way embedded counters do.
func defaultClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}
