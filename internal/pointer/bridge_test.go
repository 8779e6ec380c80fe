package pointer_test

import (
	"testing"

	"github.com/touchplate/touchplate/internal/pointer"
	"github.com/touchplate/touchplate/internal/testutil"
	"github.com/touchplate/touchplate/internal/touch"
)

// newTestBridge maps a 240x320 display onto a 480x640 rect at (100,50).
func newTestBridge(t *testing.T) (*pointer.Bridge, *testutil.FakeInjector) {
	t.Helper()
	inj := &testutil.FakeInjector{}
	b, err := pointer.NewBridge(inj, 240, 320, pointer.Rect{X: 100, Y: 50, W: 480, H: 640})
	if err != nil {
		t.Fatalf("NewBridge failed: %v", err)
	}
	return b, inj
}

// TestHandleEvent_TouchEdge_MovesThenPresses verifies the press sequence.
func TestHandleEvent_TouchEdge_MovesThenPresses(t *testing.T) {
	b, inj := newTestBridge(t)

	res := touch.PollResult{Kind: touch.KindEdge, Edge: touch.EdgeTouch, X: 0, Y: 0}
	if err := b.HandleEvent(res); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(inj.Calls) != 2 || inj.Calls[0].Name != "MoveAbs" || inj.Calls[1].Name != "LeftDown" {
		t.Fatalf("expected move then left-down, got %#v", inj.Calls)
	}
	if inj.Calls[0].X != 100 || inj.Calls[0].Y != 50 {
		t.Fatalf("expected origin of target rect, got (%d,%d)", inj.Calls[0].X, inj.Calls[0].Y)
	}
}

// TestHandleEvent_HeldTouch_TracksFinger verifies steady touches move
// the cursor without pressing.
func TestHandleEvent_HeldTouch_TracksFinger(t *testing.T) {
	b, inj := newTestBridge(t)

	res := touch.PollResult{Kind: touch.KindSteady, State: touch.StateTouchPresent, X: 239, Y: 319}
	if err := b.HandleEvent(res); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(inj.Calls) != 1 || inj.Calls[0].Name != "MoveAbs" {
		t.Fatalf("expected single move, got %#v", inj.Calls)
	}
	if inj.Calls[0].X != 100+479 || inj.Calls[0].Y != 50+639 {
		t.Fatalf("expected far corner of target rect, got (%d,%d)", inj.Calls[0].X, inj.Calls[0].Y)
	}
}

// TestHandleEvent_ReleaseEdge_LetsGo verifies the release sequence.
func TestHandleEvent_ReleaseEdge_LetsGo(t *testing.T) {
	b, inj := newTestBridge(t)

	res := touch.PollResult{Kind: touch.KindEdge, Edge: touch.EdgeRelease, X: 10, Y: 10}
	if err := b.HandleEvent(res); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(inj.Calls) != 1 || inj.Calls[0].Name != "LeftUp" {
		t.Fatalf("expected left-up only, got %#v", inj.Calls)
	}
}

// TestHandleEvent_IdleStates_DoNothing verifies no-touch and uncertain
// reports produce no input.
func TestHandleEvent_IdleStates_DoNothing(t *testing.T) {
	b, inj := newTestBridge(t)

	_ = b.HandleEvent(touch.PollResult{Kind: touch.KindSteady, State: touch.StateNoTouch})
	_ = b.HandleEvent(touch.PollResult{Kind: touch.KindSteady, State: touch.StateUncertain})
	if len(inj.Calls) != 0 {
		t.Fatalf("expected no calls, got %#v", inj.Calls)
	}
}

// TestHandleEvent_ClampsExtrapolatedCoordinates verifies out-of-range
// mapped coordinates stay inside the target rect.
func TestHandleEvent_ClampsExtrapolatedCoordinates(t *testing.T) {
	b, inj := newTestBridge(t)

	res := touch.PollResult{Kind: touch.KindSteady, State: touch.StateTouchPresent, X: -30, Y: 500}
	if err := b.HandleEvent(res); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if inj.Calls[0].X != 100 || inj.Calls[0].Y != 50+639 {
		t.Fatalf("expected clamped corner, got (%d,%d)", inj.Calls[0].X, inj.Calls[0].Y)
	}
}

// TestNewBridge_RejectsBadGeometry verifies construction validation.
func TestNewBridge_RejectsBadGeometry(t *testing.T) {
	inj := &testutil.FakeInjector{}
	if _, err := pointer.NewBridge(nil, 240, 320, pointer.Rect{W: 1, H: 1}); err == nil {
		t.Fatalf("expected error for nil injector")
	}
	if _, err := pointer.NewBridge(inj, 1, 320, pointer.Rect{W: 10, H: 10}); err == nil {
		t.Fatalf("expected error for degenerate display")
	}
	if _, err := pointer.NewBridge(inj, 240, 320, pointer.Rect{W: 0, H: 10}); err == nil {
		t.Fatalf("expected error for empty target rect")
	}
}
