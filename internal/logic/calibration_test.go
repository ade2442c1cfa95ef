package logic

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func typeKeys(c *Calibrator, keys string) bool {
	commit := false
	for _, k := range keys {
		commit = c.Key(Action(string(k)), t0)
	}
	return commit
}

func TestNewCalibratorDefaults(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, DefaultFactor},
		{math.NaN(), DefaultFactor},
		{math.Inf(1), DefaultFactor},
		{math.Inf(-1), DefaultFactor},
		{700, 700},
		{-7050, -7050},
	}
	for _, tt := range tests {
		c := NewCalibrator(tt.in)
		if c.Factor() != tt.want {
			t.Errorf("NewCalibrator(%v): factor %v, want %v", tt.in, c.Factor(), tt.want)
		}
	}
}

func TestEntrySecondDecimalIgnored(t *testing.T) {
	c := NewCalibrator(DefaultFactor)
	c.Enter(t0)
	typeKeys(c, "1.2.")
	if c.Entry() != "1.2" {
		t.Errorf("entry: got %q, want %q", c.Entry(), "1.2")
	}
}

func TestEntryBounded(t *testing.T) {
	c := NewCalibrator(DefaultFactor)
	c.Enter(t0)
	typeKeys(c, strings.Repeat("9", MaxEntryLen+5))
	if len(c.Entry()) != MaxEntryLen {
		t.Errorf("entry length: got %d, want %d", len(c.Entry()), MaxEntryLen)
	}
	typeKeys(c, ".")
	if strings.Contains(c.Entry(), ".") {
		t.Error("decimal should be ignored once the buffer is full")
	}
}

func TestEntryBufferRejectsNonDigits(t *testing.T) {
	var e EntryBuffer
	if e.AppendDigit('a') {
		t.Error("non-digit accepted")
	}
	if !e.AppendDigit('7') || !e.AppendDecimal() || e.AppendDecimal() {
		t.Error("unexpected append result")
	}
	if e.String() != "7." || e.Len() != 2 {
		t.Errorf("got %q len %d", e.String(), e.Len())
	}
	e.Clear()
	if !e.Empty() {
		t.Error("expected empty after Clear")
	}
	if !e.AppendDecimal() {
		t.Error("decimal should be accepted again after Clear")
	}
}

func TestClearKey(t *testing.T) {
	c := NewCalibrator(DefaultFactor)
	c.Enter(t0)
	typeKeys(c, "12.5C")
	if c.Entry() != "" {
		t.Errorf("entry after clear: got %q", c.Entry())
	}
	typeKeys(c, "3.3")
	if c.Entry() != "3.3" {
		t.Errorf("entry after clear and retype: got %q", c.Entry())
	}
}

func TestEnterOnEmptyBufferIsNoop(t *testing.T) {
	c := NewCalibrator(DefaultFactor)
	c.Enter(t0)
	if c.Key(ActionEnter, t0) {
		t.Error("enter on empty buffer should not request commit")
	}
	if !c.Active() {
		t.Error("should still be calibrating")
	}
}

func TestKeysIgnoredWhenInactive(t *testing.T) {
	c := NewCalibrator(DefaultFactor)
	if typeKeys(c, "5E") {
		t.Error("commit requested while inactive")
	}
	if c.Entry() != "" {
		t.Errorf("entry changed while inactive: %q", c.Entry())
	}
}

func TestCommitComputesFactor(t *testing.T) {
	c := NewCalibrator(DefaultFactor)
	c.Enter(t0)
	if !typeKeys(c, "12.5E") {
		t.Fatal("expected commit request")
	}

	factor, err := c.Commit(8750.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if factor != 700 {
		t.Errorf("factor: got %v, want 700", factor)
	}
	if c.Factor() != 700 {
		t.Errorf("stored factor: got %v, want 700", c.Factor())
	}
	if c.Active() {
		t.Error("calibration should end after commit")
	}
	if c.Entry() != "" {
		t.Errorf("entry should be discarded, got %q", c.Entry())
	}
}

func TestCommitRejectsZeroWeight(t *testing.T) {
	for _, keys := range []string{"0", "0.0", "00", ".", "0."} {
		t.Run(keys, func(t *testing.T) {
			c := NewCalibrator(DefaultFactor)
			c.Enter(t0)
			typeKeys(c, keys)

			factor, err := c.Commit(8750)
			if !errors.Is(err, ErrInvalidCalibrationInput) {
				t.Fatalf("expected ErrInvalidCalibrationInput, got %v", err)
			}
			if factor != DefaultFactor || c.Factor() != DefaultFactor {
				t.Errorf("factor changed: %v", c.Factor())
			}
			if !c.Active() {
				t.Error("should stay in calibration mode for re-entry")
			}
			if c.Entry() != "" {
				t.Errorf("entry should be cleared for re-prompt, got %q", c.Entry())
			}
		})
	}
}

func TestCommitRejectsBadRawReading(t *testing.T) {
	for _, raw := range []float64{0, math.NaN(), math.Inf(1), math.Inf(-1)} {
		c := NewCalibrator(700)
		c.Enter(t0)
		typeKeys(c, "10")
		_, err := c.Commit(raw)
		if !errors.Is(err, ErrInvalidRawReading) {
			t.Errorf("raw %v: expected ErrInvalidRawReading, got %v", raw, err)
		}
		if c.Factor() != 700 {
			t.Errorf("raw %v: factor changed to %v", raw, c.Factor())
		}
	}
}

func TestCommitNotCalibrating(t *testing.T) {
	c := NewCalibrator(700)
	if _, err := c.Commit(100); !errors.Is(err, ErrNotCalibrating) {
		t.Errorf("expected ErrNotCalibrating, got %v", err)
	}
}

func TestNegativeFactorAllowed(t *testing.T) {
	c := NewCalibrator(DefaultFactor)
	c.Enter(t0)
	typeKeys(c, "2")
	factor, err := c.Commit(-14100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if factor != -7050 {
		t.Errorf("factor: got %v, want -7050", factor)
	}
}

func TestAbandonKeepsFactor(t *testing.T) {
	c := NewCalibrator(700)
	c.Enter(t0)
	typeKeys(c, "55")
	c.Abandon()
	if c.Active() || c.Entry() != "" || c.Factor() != 700 {
		t.Errorf("unexpected state after abandon: active=%v entry=%q factor=%v", c.Active(), c.Entry(), c.Factor())
	}
}

func TestExpired(t *testing.T) {
	c := NewCalibrator(700)
	if c.Expired(t0.Add(time.Hour), time.Minute) {
		t.Error("inactive calibrator should never expire")
	}

	c.Enter(t0)
	if c.Expired(t0.Add(59*time.Second), time.Minute) {
		t.Error("expired too early")
	}
	if !c.Expired(t0.Add(time.Minute), time.Minute) {
		t.Error("should expire after timeout")
	}
	if c.Expired(t0.Add(time.Hour), 0) {
		t.Error("zero timeout disables expiry")
	}

	// A key press restarts the idle clock.
	c.Key(DigitAction(1), t0.Add(50*time.Second))
	if c.Expired(t0.Add(time.Minute), time.Minute) {
		t.Error("key press should reset idle timer")
	}
}
