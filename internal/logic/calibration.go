package logic

import (
	"errors"
	"math"
	"strconv"
	"time"
)

// DefaultFactor is used when no valid calibration factor has been stored.
const DefaultFactor = -7050

// DefaultCalibrationSamples is how many raw readings are averaged on commit.
const DefaultCalibrationSamples = 10

var (
	// ErrInvalidCalibrationInput means the entered known weight is not a positive number.
	ErrInvalidCalibrationInput = errors.New("known weight must be a positive number")
	// ErrInvalidRawReading means the averaged raw reading cannot produce a usable factor.
	ErrInvalidRawReading = errors.New("raw reading must be finite and non-zero")
	// ErrNotCalibrating is returned by Commit outside calibration mode.
	ErrNotCalibrating = errors.New("calibration mode is not active")
)

// ValidFactor reports whether f can be used to convert raw readings to kg.
func ValidFactor(f float64) bool {
	return nonZeroFinite(f)
}

func nonZeroFinite(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Calibrator owns the calibration factor and the keypad entry sub-state.
type Calibrator struct {
	factor float64
	entry  EntryBuffer
	active bool
	since  time.Time
}

// NewCalibrator creates a calibrator with the given factor, substituting
// DefaultFactor if it is unusable.
func NewCalibrator(factor float64) *Calibrator {
	if !ValidFactor(factor) {
		factor = DefaultFactor
	}
	return &Calibrator{factor: factor}
}

// Factor returns the current calibration factor in raw units per kg.
func (c *Calibrator) Factor() float64 {
	return c.factor
}

// Active reports whether calibration mode is on.
func (c *Calibrator) Active() bool {
	return c.active
}

// Entry returns the keypad buffer contents.
func (c *Calibrator) Entry() string {
	return c.entry.String()
}

// Enter switches to calibration mode with an empty buffer.
func (c *Calibrator) Enter(now time.Time) {
	c.active = true
	c.since = now
	c.entry.Clear()
}

// Abandon leaves calibration mode without touching the factor.
func (c *Calibrator) Abandon() {
	c.active = false
	c.entry.Clear()
}

// Expired reports whether calibration has been idle longer than timeout.
// A timeout <= 0 never expires.
func (c *Calibrator) Expired(now time.Time, timeout time.Duration) bool {
	return c.active && timeout > 0 && now.Sub(c.since) >= timeout
}

// Key applies a keypad action. It returns true when the operator asked to
// commit a non-empty value; the caller then reads the sensor and calls Commit.
// Any key press counts as activity for the idle timeout.
func (c *Calibrator) Key(a Action, now time.Time) bool {
	if !c.active {
		return false
	}
	c.since = now
	switch {
	case a.IsDigit():
		c.entry.AppendDigit(a.Char())
	case a == ActionDecimal:
		c.entry.AppendDecimal()
	case a == ActionClear:
		c.entry.Clear()
	case a == ActionEnter:
		return !c.entry.Empty()
	}
	return false
}

// KnownWeight parses the entry buffer as kg.
func (c *Calibrator) KnownWeight() (float64, error) {
	w, err := strconv.ParseFloat(c.entry.String(), 64)
	if err != nil || w <= 0 || math.IsInf(w, 0) {
		return 0, ErrInvalidCalibrationInput
	}
	return w, nil
}

// Commit computes factor = raw / known weight and leaves calibration mode.
// On error the factor is unchanged, the buffer is cleared, and the mode stays
// active so the operator can enter a new value.
func (c *Calibrator) Commit(raw float64) (float64, error) {
	if !c.active {
		return c.factor, ErrNotCalibrating
	}
	known, err := c.KnownWeight()
	if err != nil {
		c.entry.Clear()
		return c.factor, err
	}
	if !nonZeroFinite(raw) {
		c.entry.Clear()
		return c.factor, ErrInvalidRawReading
	}
	factor := raw / known
	if !ValidFactor(factor) {
		c.entry.Clear()
		return c.factor, ErrInvalidRawReading
	}
	c.factor = factor
	c.Abandon()
	return factor, nil
}
