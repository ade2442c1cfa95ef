//go:build !linux

package gpio

import "errors"

// RealSignal is not available on non-Linux platforms.
type RealSignal struct{}

// NewRealSignal returns an error on non-Linux platforms.
func NewRealSignal(chipName string, pinRed, pinGreen int) (*RealSignal, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (r *RealSignal) Set(light Light) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealSignal) Close() error {
	return nil
}
