package stream

import (
	"testing"

	"github.com/touchplate/touchplate/internal/display"
	"github.com/touchplate/touchplate/internal/touch"
	"github.com/touchplate/touchplate/internal/tsmap"
)

// newTestServer returns a server on a rotation-2 240x320 mapper and a
// pointer to the params the apply hook received. The hook commits to
// the mapper the way the owning app does.
func newTestServer(t *testing.T) (*Server, *[]tsmap.Params) {
	t.Helper()
	m, err := tsmap.New(display.Rotation180, 240, 320)
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	var applied []tsmap.Params
	s := NewServer(m, func(p tsmap.Params) error {
		m.SetParams(p)
		applied = append(applied, p)
		return nil
	}, false)
	return s, &applied
}

// touchEdge builds a touch-edge poll result at the given raw coords.
func touchEdge(rawX, rawY int16) touch.PollResult {
	return touch.PollResult{
		Kind: touch.KindEdge,
		Edge: touch.EdgeTouch,
		RawX: rawX,
		RawY: rawY,
	}
}

// TestCalibration_FullFlow verifies start, two taps, preview, and apply.
func TestCalibration_FullFlow(t *testing.T) {
	s, applied := newTestServer(t)

	s.handleMessage(Message{T: MsgCalibStart, Offset: 12})
	if s.calib == nil {
		t.Fatalf("expected open calibration session")
	}
	if s.calib.xLR != 227 || s.calib.yLR != 307 {
		t.Fatalf("expected anchors (227,307), got (%d,%d)", s.calib.xLR, s.calib.yLR)
	}

	// Simulate taps exactly at what the current calibration maps the
	// anchors to, so the solved params match the current ones.
	tsxUL, tsyUL := s.mapper.ToTouch(12, 12)
	tsxLR, tsyLR := s.mapper.ToTouch(227, 307)
	before := s.mapper.Params()

	if err := s.HandleEvent(touchEdge(tsxUL, tsyUL)); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if s.calib.preview != nil {
		t.Fatalf("preview after one tap")
	}
	if err := s.HandleEvent(touchEdge(tsxLR, tsyLR)); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if s.calib.preview == nil {
		t.Fatalf("expected preview after two taps")
	}
	if s.mapper.Params() != before {
		t.Fatalf("preview must not mutate mapper params")
	}

	s.handleMessage(Message{T: MsgCalibApply})
	if s.calib != nil {
		t.Fatalf("expected session closed after apply")
	}
	if len(*applied) != 1 {
		t.Fatalf("expected one apply, got %d", len(*applied))
	}
	if (*applied)[0] != s.mapper.Params() {
		t.Fatalf("applied %+v but mapper has %+v", (*applied)[0], s.mapper.Params())
	}
}

// TestCalibration_IgnoresNonTouchEdges verifies releases and steady
// reports are not counted as taps.
func TestCalibration_IgnoresNonTouchEdges(t *testing.T) {
	s, _ := newTestServer(t)
	s.handleMessage(Message{T: MsgCalibStart})

	_ = s.HandleEvent(touch.PollResult{Kind: touch.KindEdge, Edge: touch.EdgeRelease, RawX: 100, RawY: 100})
	_ = s.HandleEvent(touch.PollResult{Kind: touch.KindSteady, State: touch.StateTouchPresent, RawX: 100, RawY: 100})

	if len(s.calib.taps) != 0 {
		t.Fatalf("expected no taps recorded, got %d", len(s.calib.taps))
	}
}

// TestCalibration_CancelDiscards verifies cancel drops the session
// without touching the mapper.
func TestCalibration_CancelDiscards(t *testing.T) {
	s, applied := newTestServer(t)
	before := s.mapper.Params()

	s.handleMessage(Message{T: MsgCalibStart})
	_ = s.HandleEvent(touchEdge(3600, 3650))
	_ = s.HandleEvent(touchEdge(400, 380))
	s.handleMessage(Message{T: MsgCalibCancel})

	if s.calib != nil {
		t.Fatalf("expected session cleared")
	}
	if s.mapper.Params() != before || len(*applied) != 0 {
		t.Fatalf("cancel must not apply or save")
	}
}

// TestCalibration_ApplyWithoutPreview verifies apply is refused before
// two taps were collected.
func TestCalibration_ApplyWithoutPreview(t *testing.T) {
	s, applied := newTestServer(t)
	before := s.mapper.Params()

	s.handleMessage(Message{T: MsgCalibApply})
	s.handleMessage(Message{T: MsgCalibStart})
	_ = s.HandleEvent(touchEdge(3600, 3650))
	s.handleMessage(Message{T: MsgCalibApply})

	if s.mapper.Params() != before || len(*applied) != 0 {
		t.Fatalf("apply without preview must be a no-op")
	}
}

// TestCalibStart_DefaultInset verifies a missing offset uses the default.
func TestCalibStart_DefaultInset(t *testing.T) {
	s, _ := newTestServer(t)
	s.handleMessage(Message{T: MsgCalibStart})
	if s.calib.xUL != defaultAnchorInset || s.calib.yUL != defaultAnchorInset {
		t.Fatalf("expected default inset %d, got (%d,%d)", defaultAnchorInset, s.calib.xUL, s.calib.yUL)
	}
}

// TestEventFromPoll_Filtering verifies what reaches the wire.
func TestEventFromPoll_Filtering(t *testing.T) {
	edge := touch.PollResult{Kind: touch.KindEdge, Edge: touch.EdgeRelease, X: 10, Y: 20}
	ev, ok := eventFromPoll(edge, false)
	if !ok || ev.T != EvRelease {
		t.Fatalf("expected release event, got %+v ok=%v", ev, ok)
	}

	held := touch.PollResult{Kind: touch.KindSteady, State: touch.StateTouchPresent, X: 10, Y: 20}
	if _, ok := eventFromPoll(held, false); ok {
		t.Fatalf("steady reports must be filtered when disabled")
	}
	ev, ok = eventFromPoll(held, true)
	if !ok || ev.T != EvState || ev.State != "touch_present" {
		t.Fatalf("expected state event, got %+v ok=%v", ev, ok)
	}

	idle := touch.PollResult{Kind: touch.KindSteady, State: touch.StateNoTouch}
	if _, ok := eventFromPoll(idle, true); ok {
		t.Fatalf("idle steady reports are never streamed")
	}
}
