// Package testutil provides fakes shared by package tests.
package testutil

import "github.com/touchplate/touchplate/internal/touch"

// FakeSource replays a scripted sequence of raw samples. Once the script
// is exhausted the last sample repeats, so a test can keep polling.
type FakeSource struct {
	Samples []touch.Sample
	Reads   int

	idx int
}

// Ensure FakeSource implements the interface.
var _ touch.Source = (*FakeSource)(nil)

// ReadSample returns the next scripted sample and counts the read.
func (f *FakeSource) ReadSample() touch.Sample {
	f.Reads++
	if len(f.Samples) == 0 {
		return touch.Sample{}
	}
	s := f.Samples[f.idx]
	if f.idx < len(f.Samples)-1 {
		f.idx++
	}
	return s
}

// Touched reports whether the upcoming sample has nonzero pressure.
func (f *FakeSource) Touched() bool {
	if len(f.Samples) == 0 {
		return false
	}
	return f.Samples[f.idx].Z > 0
}

// FakeClock is a manually advanced millisecond clock.
type FakeClock struct {
	Millis uint32
}

// Now returns the current fake timestamp.
func (c *FakeClock) Now() uint32 { return c.Millis }

// Advance moves the clock forward.
func (c *FakeClock) Advance(ms uint32) { c.Millis += ms }
