package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/truck-scale/internal/logic"
)

func TestLightFor(t *testing.T) {
	tests := []struct {
		mode  logic.Mode
		state logic.DetectionState
		want  Light
	}{
		{logic.ModeNormal, logic.StateEmpty, LightGreen},
		{logic.ModeNormal, logic.StateLoaded, LightRed},
		{logic.ModeCalibrating, logic.StateEmpty, LightRed},
		{logic.ModeCalibrating, logic.StateLoaded, LightRed},
	}
	for _, tt := range tests {
		if got := LightFor(tt.mode, tt.state); got != tt.want {
			t.Errorf("LightFor(%s, %s): got %s, want %s", tt.mode, tt.state, got, tt.want)
		}
	}
}

func TestLampWritesOnlyOnChange(t *testing.T) {
	sig := NewFakeSignal()
	lamp := NewLamp(sig)

	for _, l := range []Light{LightGreen, LightGreen, LightRed, LightRed, LightRed, LightGreen} {
		if err := lamp.Update(l); err != nil {
			t.Fatalf("update %s: %v", l, err)
		}
	}

	want := []Light{LightGreen, LightRed, LightGreen}
	if len(sig.Lights) != len(want) {
		t.Fatalf("writes: got %v, want %v", sig.Lights, want)
	}
	for i := range want {
		if sig.Lights[i] != want[i] {
			t.Errorf("write %d: got %s, want %s", i, sig.Lights[i], want[i])
		}
	}
	if lamp.Current() != LightGreen {
		t.Errorf("current: got %s", lamp.Current())
	}
}

func TestLampRetriesAfterError(t *testing.T) {
	sig := NewFakeSignal()
	lamp := NewLamp(sig)

	sig.SetError = errors.New("line busy")
	if err := lamp.Update(LightRed); err == nil {
		t.Fatal("expected error")
	}
	if lamp.Current() != "" {
		t.Errorf("failed write should not update current, got %s", lamp.Current())
	}

	sig.SetError = nil
	if err := lamp.Update(LightRed); err != nil {
		t.Fatal(err)
	}
	if sig.Last() != LightRed {
		t.Errorf("expected retry to write RED, got %s", sig.Last())
	}
}

func TestFakeSignalClose(t *testing.T) {
	sig := NewFakeSignal()
	if sig.Last() != LightOff {
		t.Errorf("fresh fake: got %s", sig.Last())
	}
	sig.Close()
	if !sig.Closed {
		t.Error("expected Closed=true")
	}
}
