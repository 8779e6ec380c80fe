// Package pointer forwards debounced touch events as host mouse input.
package pointer

// Injector defines the mouse operations the bridge drives.
type Injector interface {
	MoveAbs(x, y int) error
	LeftDown() error
	LeftUp() error
}
