//go:build !linux

// Package evinput reads raw touch samples from a Linux kernel input device.
package evinput

import (
	"errors"

	"github.com/touchplate/touchplate/internal/touch"
)

// ErrUnsupported indicates evdev input is only available on Linux.
var ErrUnsupported = errors.New("evinput is only supported on Linux")

// Source is a placeholder for non-Linux builds.
type Source struct{}

// Ensure the stub still satisfies the interface.
var _ touch.Source = (*Source)(nil)

// Open returns ErrUnsupported on non-Linux platforms.
func Open(path string) (*Source, error) {
	_ = path
	return nil, ErrUnsupported
}

// ReadSample returns an empty sample.
func (s *Source) ReadSample() touch.Sample { return touch.Sample{} }

// Touched reports no touch.
func (s *Source) Touched() bool { return false }

// Close is a no-op.
func (s *Source) Close() error { return nil }
