// Package tsmap maps between touchscreen and display coordinate spaces.
package tsmap

import (
	"fmt"

	"github.com/touchplate/touchplate/internal/display"
)

// Factory-default calibration seeds. The values are empirical for common
// XPT2046 panels and are expected to be overwritten by a real calibration.
// "short" refers to the coordinate along the panel's shorter side in the
// current rotation, "long" to the other one.
const (
	defULShort = 3800
	defULLong  = 3700
	defLRShort = 275
	defLRLong  = 165
)

// tsReflect flips a touchscreen coordinate across the sensor's span. The
// sensor reports coordinates that invert under some rotations relative to
// the display's logical orientation.
const tsReflect = 4095

// Params holds the four calibration parameters: the touchscreen-space
// coordinates corresponding to the display's upper-left and lower-right
// corners. The sensor reports decreasing values toward the lower-right,
// so the UL values are larger than the LR values.
type Params struct {
	ULX int16
	ULY int16
	LRX int16
	LRY int16
}

// Mapper converts between touchscreen and display coordinates using a
// two-point linear calibration. Display geometry is captured once at
// construction and treated as fixed.
type Mapper struct {
	params  Params
	pixelsX int
	pixelsY int
}

// New returns a Mapper for the given rotation and display size, seeded
// with the rotation-dependent default calibration.
func New(rot display.Rotation, pixelsX, pixelsY int) (*Mapper, error) {
	if rot > display.Rotation270 {
		return nil, fmt.Errorf("rotation must be 0-3, got %d", rot)
	}
	if pixelsX <= 0 || pixelsY <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", pixelsX, pixelsY)
	}

	m := &Mapper{pixelsX: pixelsX, pixelsY: pixelsY}

	// Which axes need reflecting is fixed per rotation by how the sensor
	// is mounted relative to the display's logical orientation.
	switch rot {
	case display.Rotation0:
		m.params = Params{
			ULX: tsReflect - defLRShort,
			ULY: tsReflect - defLRLong,
			LRX: tsReflect - defULShort,
			LRY: tsReflect - defULLong,
		}
	case display.Rotation90:
		m.params = Params{
			ULX: tsReflect - defLRShort,
			ULY: defULShort,
			LRX: tsReflect - defULShort,
			LRY: defLRShort,
		}
	case display.Rotation180:
		m.params = Params{
			ULX: defULShort,
			ULY: defULShort,
			LRX: defLRShort,
			LRY: defLRShort,
		}
	case display.Rotation270:
		m.params = Params{
			ULX: defULShort,
			ULY: tsReflect - defLRLong,
			LRX: defLRShort,
			LRY: tsReflect - defULLong,
		}
	}

	return m, nil
}

// FromSurface returns a Mapper sized and rotated to match a pixel surface.
func FromSurface(s display.Surface) (*Mapper, error) {
	return New(s.Rotation(), s.Width(), s.Height())
}

// ToDisplay maps a touchscreen point to display coordinates. Inputs
// outside the calibrated range extrapolate rather than clamp.
func (m *Mapper) ToDisplay(tsX, tsY int16) (x, y int16) {
	x = lerp(tsX, m.params.ULX, m.params.LRX, 0, int16(m.pixelsX))
	y = lerp(tsY, m.params.ULY, m.params.LRY, 0, int16(m.pixelsY))
	return x, y
}

// ToTouch maps a display point to touchscreen coordinates, the exact
// inverse of ToDisplay.
func (m *Mapper) ToTouch(x, y int16) (tsX, tsY int16) {
	tsX = lerp(x, 0, int16(m.pixelsX), m.params.ULX, m.params.LRX)
	tsY = lerp(y, 0, int16(m.pixelsY), m.params.ULY, m.params.LRY)
	return tsX, tsY
}

// AnchorPoints returns two display points inset from the upper-left and
// lower-right corners by pixelOffset pixels. These are the targets a
// calibration UI asks the user to tap; pushing them toward the corners
// maximizes the measured span and with it the calibration accuracy.
func (m *Mapper) AnchorPoints(pixelOffset int16) (xUL, yUL, xLR, yLR int16) {
	xUL = pixelOffset
	yUL = pixelOffset
	xLR = int16(m.pixelsX) - pixelOffset - 1
	yLR = int16(m.pixelsY) - pixelOffset - 1
	return xUL, yUL, xLR, yLR
}

// Solve computes new calibration parameters from two display anchor
// points and their measured touchscreen correspondences. The result is
// returned without being applied, so a calibration UI can preview and
// reject it; call SetParams to commit. The anchor points must span a
// nonzero distance on both axes.
func (m *Mapper) Solve(xUL, yUL, xLR, yLR, tsxUL, tsyUL, tsxLR, tsyLR int16) (Params, error) {
	if xLR == xUL || yLR == yUL {
		return Params{}, fmt.Errorf("calibration anchors must be distinct on both axes: (%d,%d) and (%d,%d)", xUL, yUL, xLR, yLR)
	}

	sx := float64(tsxLR-tsxUL) / float64(xLR-xUL)
	sy := float64(tsyLR-tsyUL) / float64(yLR-yUL)

	// Extrapolate what the sensor would report at the true display
	// corners (0,0) and (pixelsX,pixelsY).
	return Params{
		ULX: int16(float64(tsxUL) + float64(0-xUL)*sx),
		LRX: int16(float64(tsxUL) + float64(int16(m.pixelsX)-xUL)*sx),
		ULY: int16(float64(tsyUL) + float64(0-yUL)*sy),
		LRY: int16(float64(tsyUL) + float64(int16(m.pixelsY)-yUL)*sy),
	}, nil
}

// Params returns the current calibration parameters.
func (m *Mapper) Params() Params { return m.params }

// SetParams replaces the current calibration parameters.
func (m *Mapper) SetParams(p Params) { m.params = p }

// Size returns the display dimensions the mapper was built with.
func (m *Mapper) Size() (pixelsX, pixelsY int) { return m.pixelsX, m.pixelsY }

// lerp linearly maps v from [inMin,inMax] onto [outMin,outMax] with
// 32-bit intermediate math. Division truncates toward zero, matching the
// inverse mapping's rounding.
func lerp(v, inMin, inMax, outMin, outMax int16) int16 {
	return int16(int32(v-inMin)*int32(outMax-outMin)/int32(inMax-inMin) + int32(outMin))
}
