// Package gpio drives the drive-on/drive-off signal lamps next to the scale.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/truck-scale/internal/logic"

// Light is the lamp shown to drivers.
type Light string

const (
	LightOff   Light = "OFF"
	LightGreen Light = "GREEN" // scale empty, drive on
	LightRed   Light = "RED"   // load present or scale unavailable
)

// Signal sets the lamp outputs.
type Signal interface {
	Set(light Light) error

	// Close turns the lamps off and releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinRed   = 23
	DefaultPinGreen = 24
)

// LightFor returns the lamp for the scale state. Calibration shows red so
// nobody drives on while a reference weight is in place.
func LightFor(mode logic.Mode, state logic.DetectionState) Light {
	if mode == logic.ModeCalibrating || state == logic.StateLoaded {
		return LightRed
	}
	return LightGreen
}

// Lamp wraps a Signal and only touches the hardware when the light changes.
type Lamp struct {
	signal  Signal
	current Light
}

// NewLamp creates a Lamp. The first Update always writes.
func NewLamp(s Signal) *Lamp {
	return &Lamp{signal: s}
}

// Update sets light if it differs from the last successful write.
func (l *Lamp) Update(light Light) error {
	if light == l.current {
		return nil
	}
	if err := l.signal.Set(light); err != nil {
		return err
	}
	l.current = light
	return nil
}

// Current returns the last light written.
func (l *Lamp) Current() Light {
	return l.current
}
