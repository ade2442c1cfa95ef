//go:build !linux

package loadcell

import (
	"errors"
	"time"
)

const (
	GainA128 = 1
	GainB32  = 2
	GainA64  = 3
)

// HX711 is not available on non-Linux platforms.
type HX711 struct{}

// NewHX711 returns an error on non-Linux platforms.
func NewHX711(chipName string, doutPin, sckPin, gain int, timeout time.Duration) (*HX711, error) {
	return nil, errors.New("loadcell: not supported on this platform (requires Linux)")
}

// ReadRaw is not implemented on non-Linux platforms.
func (h *HX711) ReadRaw() (int32, error) {
	return 0, errors.New("loadcell: not supported")
}

// Close is not implemented on non-Linux platforms.
func (h *HX711) Close() error {
	return nil
}
