// Package loadcell provides load cell sampling with hardware abstraction.
// The real implementation bit-bangs an HX711 amplifier over the Linux GPIO
// character device. The fake implementation allows testing without hardware.
package loadcell

import (
	"errors"
	"fmt"
)

// DefaultTareSamples is the number of readings averaged when zeroing.
const DefaultTareSamples = 10

// ErrNotReady is returned when the amplifier does not signal a conversion in time.
var ErrNotReady = errors.New("loadcell: amplifier not ready")

// Sensor is the scale as seen by the controller.
type Sensor interface {
	// Sample returns the current filtered weight in kg using the active factor.
	Sample() (float64, error)

	// AverageRaw returns the mean of n tare-compensated raw readings.
	AverageRaw(n int) (float64, error)

	// SetFactor sets the raw-units-per-kg calibration factor.
	SetFactor(f float64)

	// Tare makes the current load read as zero.
	Tare() error

	// Close releases hardware resources.
	Close() error
}

// RawReader returns single signed conversions from the amplifier.
type RawReader interface {
	ReadRaw() (int32, error)
	Close() error
}

// Scale turns raw conversions into kg: (mean(raw) - offset) / factor.
type Scale struct {
	raw     RawReader
	offset  float64
	factor  float64
	samples int
}

// NewScale creates a Scale. samples is how many conversions are averaged
// per Sample call (minimum 1).
func NewScale(raw RawReader, factor float64, samples int) *Scale {
	if samples < 1 {
		samples = 1
	}
	return &Scale{raw: raw, factor: factor, samples: samples}
}

func (s *Scale) mean(n int) (float64, error) {
	if n < 1 {
		n = 1
	}
	var sum float64
	for i := 0; i < n; i++ {
		v, err := s.raw.ReadRaw()
		if err != nil {
			return 0, fmt.Errorf("read conversion %d/%d: %w", i+1, n, err)
		}
		sum += float64(v)
	}
	return sum / float64(n), nil
}

// Sample returns the current weight in kg.
func (s *Scale) Sample() (float64, error) {
	m, err := s.mean(s.samples)
	if err != nil {
		return 0, err
	}
	return (m - s.offset) / s.factor, nil
}

// AverageRaw returns the mean of n readings minus the tare offset.
func (s *Scale) AverageRaw(n int) (float64, error) {
	m, err := s.mean(n)
	if err != nil {
		return 0, err
	}
	return m - s.offset, nil
}

// SetFactor sets the calibration factor.
func (s *Scale) SetFactor(f float64) {
	s.factor = f
}

// Factor returns the calibration factor.
func (s *Scale) Factor() float64 {
	return s.factor
}

// Offset returns the tare offset in raw units.
func (s *Scale) Offset() float64 {
	return s.offset
}

// Tare averages DefaultTareSamples readings and uses them as the zero point.
// The previous offset is kept if reading fails.
func (s *Scale) Tare() error {
	m, err := s.mean(DefaultTareSamples)
	if err != nil {
		return fmt.Errorf("tare: %w", err)
	}
	s.offset = m
	return nil
}

// Close closes the underlying reader.
func (s *Scale) Close() error {
	return s.raw.Close()
}
