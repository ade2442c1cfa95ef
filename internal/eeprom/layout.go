package eeprom

import (
	"errors"
	"fmt"
	"math"

	"github.com/sweeney/truck-scale/internal/logic"
)

// Fixed, non-overlapping field offsets.
const (
	AddrLoadCount   = 0 // 2 bytes
	AddrTotalWeight = 2 // 4 bytes
	AddrCalFactor   = 6 // 4 bytes

	// LayoutSize is the number of bytes the layout occupies.
	LayoutSize = 10
)

// erasedCount is what an erased (all 0xFF) counter cell decodes to.
const erasedCount = 0xFFFF

// ErrInvalidValue is returned when asked to persist NaN, Inf or otherwise unusable values.
var ErrInvalidValue = errors.New("eeprom: refusing to persist invalid value")

// Store reads and writes the scale's persistent fields.
type Store struct {
	codec *Codec
}

// NewStore creates a Store over dev.
func NewStore(dev Device) *Store {
	return &Store{codec: NewCodec(dev)}
}

// LoadTotals reads the accumulator. If either field is invalid (erased
// counter, NaN/Inf/negative weight) it returns zero totals and valid=false.
func (s *Store) LoadTotals() (logic.Totals, bool, error) {
	count, err := s.codec.ReadU16(AddrLoadCount)
	if err != nil {
		return logic.Totals{}, false, fmt.Errorf("load count: %w", err)
	}
	weight, err := s.codec.ReadF32(AddrTotalWeight)
	if err != nil {
		return logic.Totals{}, false, fmt.Errorf("total weight: %w", err)
	}
	w := float64(weight)
	if count == erasedCount || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return logic.Totals{}, false, nil
	}
	return logic.Totals{LoadCount: count, TotalWeight: w}, true, nil
}

// SaveTotals persists both accumulator fields.
func (s *Store) SaveTotals(t logic.Totals) error {
	w := float64(float32(t.TotalWeight))
	if t.LoadCount == erasedCount || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return ErrInvalidValue
	}
	if err := s.codec.WriteU16(AddrLoadCount, t.LoadCount); err != nil {
		return fmt.Errorf("save load count: %w", err)
	}
	if err := s.codec.WriteF32(AddrTotalWeight, float32(t.TotalWeight)); err != nil {
		return fmt.Errorf("save total weight: %w", err)
	}
	return nil
}

// LoadFactor reads the calibration factor. An unusable stored value (NaN,
// Inf, zero) yields logic.DefaultFactor and valid=false.
func (s *Store) LoadFactor() (float64, bool, error) {
	f, err := s.codec.ReadF32(AddrCalFactor)
	if err != nil {
		return logic.DefaultFactor, false, fmt.Errorf("calibration factor: %w", err)
	}
	if !logic.ValidFactor(float64(f)) {
		return logic.DefaultFactor, false, nil
	}
	return float64(f), true, nil
}

// SaveFactor persists the calibration factor.
func (s *Store) SaveFactor(f float64) error {
	if !logic.ValidFactor(f) || !logic.ValidFactor(float64(float32(f))) {
		return ErrInvalidValue
	}
	if err := s.codec.WriteF32(AddrCalFactor, float32(f)); err != nil {
		return fmt.Errorf("save calibration factor: %w", err)
	}
	return nil
}
