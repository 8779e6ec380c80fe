// Package display describes pixel-surface geometry and rotation.
package display

import "fmt"

// Rotation identifies one of the four fixed screen orientations.
// 0 is upright portrait, each step adds 90 degrees counterclockwise.
type Rotation uint8

// The four supported orientations.
const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// ParseRotation validates a raw rotation value.
func ParseRotation(n int) (Rotation, error) {
	if n < 0 || n > 3 {
		return 0, fmt.Errorf("rotation must be 0-3, got %d", n)
	}
	return Rotation(n), nil
}

// Surface exposes the geometry of a pixel-based display in its
// current, fixed rotation.
type Surface interface {
	Rotation() Rotation
	Width() int
	Height() int
}

// Screen is a Surface with fixed dimensions, used when the display is
// described by configuration rather than queried from a driver.
type Screen struct {
	W   int
	H   int
	Rot Rotation
}

// Rotation returns the screen rotation.
func (s Screen) Rotation() Rotation { return s.Rot }

// Width returns the pixel width in the current rotation.
func (s Screen) Width() int { return s.W }

// Height returns the pixel height in the current rotation.
func (s Screen) Height() int { return s.H }
