package testutil

import "github.com/touchplate/touchplate/internal/pointer"

// Call records a single injected mouse action.
type Call struct {
	Name string
	X    int
	Y    int
}

// FakeInjector implements pointer.Injector and records calls for tests.
type FakeInjector struct {
	Calls []Call
}

// Ensure FakeInjector implements the interface.
var _ pointer.Injector = (*FakeInjector)(nil)

// MoveAbs records an absolute move.
func (f *FakeInjector) MoveAbs(x, y int) error {
	f.Calls = append(f.Calls, Call{Name: "MoveAbs", X: x, Y: y})
	return nil
}

// LeftDown records a left mouse down.
func (f *FakeInjector) LeftDown() error {
	f.Calls = append(f.Calls, Call{Name: "LeftDown"})
	return nil
}

// LeftUp records a left mouse up.
func (f *FakeInjector) LeftUp() error {
	f.Calls = append(f.Calls, Call{Name: "LeftUp"})
	return nil
}
