//go:build linux

// Package evinput reads raw touch samples from a Linux kernel input device.
package evinput

import (
	"context"
	"sync"

	"github.com/kenshaw/evdev"

	"github.com/touchplate/touchplate/internal/touch"
)

// Source accumulates the latest absolute X/Y/pressure events from an
// evdev device and serves them as instantaneous samples. The kernel
// driver pushes events; the detector polls the latest snapshot.
type Source struct {
	mu     sync.Mutex
	x      int16
	y      int16
	z      int16
	dev    *evdev.Evdev
	cancel context.CancelFunc
}

// Ensure the source can feed the event detector.
var _ touch.Source = (*Source)(nil)

// Open starts reading events from the device at path.
func Open(path string) (*Source, error) {
	dev, err := evdev.OpenFile(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Source{dev: dev, cancel: cancel}

	ch := dev.Poll(ctx)
	go func() {
		for event := range ch {
			if event == nil {
				return
			}
			switch event.Type.(type) {
			case evdev.AbsoluteType:
				s.mu.Lock()
				switch event.Type {
				case evdev.AbsoluteX:
					s.x = int16(event.Value)
				case evdev.AbsoluteY:
					s.y = int16(event.Value)
				case evdev.AbsolutePressure:
					s.z = int16(event.Value)
				}
				s.mu.Unlock()
			}
		}
	}()

	return s, nil
}

// ReadSample returns the latest accumulated sample.
func (s *Source) ReadSample() touch.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return touch.Sample{X: s.x, Y: s.y, Z: s.z}
}

// Touched reports whether the last pressure event was nonzero.
func (s *Source) Touched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.z > 0
}

// Close stops the event loop and releases the device.
func (s *Source) Close() error {
	s.cancel()
	return s.dev.Close()
}
