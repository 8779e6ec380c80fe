package pointer

import (
	"fmt"

	"github.com/touchplate/touchplate/internal/touch"
)

// Rect is a host-screen rectangle the display maps onto.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Bridge scales mapped display coordinates onto a host-screen rectangle
// and drives the injector: touch presses the button, held touches track
// the finger, release lets go.
type Bridge struct {
	inj     Injector
	pixelsX int
	pixelsY int
	target  Rect
}

// NewBridge validates geometry and returns a bridge.
func NewBridge(inj Injector, pixelsX, pixelsY int, target Rect) (*Bridge, error) {
	if inj == nil {
		return nil, fmt.Errorf("injector is required")
	}
	if pixelsX <= 1 || pixelsY <= 1 {
		return nil, fmt.Errorf("display size must exceed 1x1, got %dx%d", pixelsX, pixelsY)
	}
	if target.W <= 0 || target.H <= 0 {
		return nil, fmt.Errorf("target rectangle must have positive size, got %dx%d", target.W, target.H)
	}
	return &Bridge{inj: inj, pixelsX: pixelsX, pixelsY: pixelsY, target: target}, nil
}

// HandleEvent applies one poll result to the host pointer.
func (b *Bridge) HandleEvent(res touch.PollResult) error {
	x, y := b.toHost(res.X, res.Y)

	if res.Kind == touch.KindEdge {
		if res.Edge == touch.EdgeTouch {
			if err := b.inj.MoveAbs(x, y); err != nil {
				return err
			}
			return b.inj.LeftDown()
		}
		return b.inj.LeftUp()
	}

	if res.State == touch.StateTouchPresent {
		return b.inj.MoveAbs(x, y)
	}
	return nil
}

// toHost scales a display coordinate onto the target rectangle,
// clamping to its bounds.
func (b *Bridge) toHost(x, y int16) (int, int) {
	hx := b.target.X + clamp(int(x), 0, b.pixelsX-1)*(b.target.W-1)/(b.pixelsX-1)
	hy := b.target.Y + clamp(int(y), 0, b.pixelsY-1)*(b.target.H-1)/(b.pixelsY-1)
	return hx, hy
}

// clamp bounds v to [lo,hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
