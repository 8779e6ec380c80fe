// Package touch debounces raw touchscreen samples into touch and
// release events.
package touch

// Sample is one instantaneous touchscreen reading: raw coordinates plus
// pressure. Read fresh on every poll, never cached across polls.
type Sample struct {
	X int16
	Y int16
	Z int16
}

// Source provides raw touch samples. Implementations talk to the sensor
// hardware (or the kernel input layer); the detector only ever observes
// them through these synchronous calls.
type Source interface {
	// Touched reports whether the sensor currently registers a touch.
	Touched() bool
	// ReadSample returns the latest instantaneous sample.
	ReadSample() Sample
}
