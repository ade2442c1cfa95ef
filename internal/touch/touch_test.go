package touch

import (
	"errors"
	"testing"
)

func TestActionable(t *testing.T) {
	if (Point{Pressure: DefaultPressureThreshold}).Actionable(DefaultPressureThreshold) {
		t.Error("pressure equal to threshold should not be actionable")
	}
	if !(Point{Pressure: DefaultPressureThreshold + 1}).Actionable(DefaultPressureThreshold) {
		t.Error("pressure above threshold should be actionable")
	}
}

func TestBoundsMap(t *testing.T) {
	b := Bounds{MinX: 100, MaxX: 1100, MinY: 0, MaxY: 1000, Width: 500, Height: 250}
	tests := []struct {
		rawX, rawY int
		x, y       int
	}{
		{100, 0, 0, 0},
		{600, 500, 250, 125},
		{50, -10, 0, 0},        // clamped low
		{5000, 5000, 499, 249}, // clamped high
	}
	for _, tt := range tests {
		x, y := b.Map(tt.rawX, tt.rawY)
		if x != tt.x || y != tt.y {
			t.Errorf("Map(%d,%d) = (%d,%d), want (%d,%d)", tt.rawX, tt.rawY, x, y, tt.x, tt.y)
		}
	}
}

func TestBoundsDegenerate(t *testing.T) {
	b := Bounds{MinX: 5, MaxX: 5, Width: 100, Height: 0}
	if x, y := b.Map(10, 10); x != 0 || y != 0 {
		t.Errorf("degenerate bounds: got (%d,%d)", x, y)
	}
}

func TestFakePanel(t *testing.T) {
	f := NewFakePanel(Press(10, 20), nil)

	p, ok, err := f.Poll()
	if err != nil || !ok || p.X != 10 || p.Y != 20 {
		t.Errorf("first poll: %+v ok=%v err=%v", p, ok, err)
	}
	if _, ok, _ := f.Poll(); ok {
		t.Error("nil entry should report no touch")
	}
	if _, ok, _ := f.Poll(); ok {
		t.Error("exhausted script should report no touch")
	}
	if f.Polls != 3 {
		t.Errorf("polls: got %d, want 3", f.Polls)
	}

	f.PollError = errors.New("i2c fault")
	if _, _, err := f.Poll(); err == nil {
		t.Error("expected error")
	}
}
