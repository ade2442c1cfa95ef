package logic

import (
	"math"
	"testing"
)

func feed(d *Detector, totals *Totals, samples ...float64) int {
	completed := 0
	for _, w := range samples {
		if _, ok := d.Process(totals, w); ok {
			completed++
		}
	}
	return completed
}

func TestNewDetectorDefaultGate(t *testing.T) {
	for _, gate := range []float64{0, -1, math.NaN()} {
		d := NewDetector(gate)
		if d.noiseGate != DefaultNoiseGate {
			t.Errorf("gate %v: expected default %v, got %v", gate, DefaultNoiseGate, d.noiseGate)
		}
	}
	if d := NewDetector(2); d.noiseGate != 2 {
		t.Errorf("expected gate 2, got %v", d.noiseGate)
	}
}

func TestNoiseGate(t *testing.T) {
	d := NewDetector(DefaultNoiseGate)
	var totals Totals

	for _, w := range []float64{0.1, -0.4, 0.49, -0.49} {
		d.Process(&totals, w)
		if d.Current() != 0 {
			t.Errorf("sample %v: expected gated to 0, got %v", w, d.Current())
		}
		if d.State() != StateEmpty {
			t.Errorf("sample %v: expected EMPTY, got %s", w, d.State())
		}
	}

	d.Process(&totals, 0.5)
	if d.State() != StateLoaded {
		t.Errorf("0.5 should pass the gate, state=%s", d.State())
	}
}

func TestSingleLoadCycle(t *testing.T) {
	d := NewDetector(DefaultNoiseGate)
	var totals Totals

	if _, ok := d.Process(&totals, 1200); ok {
		t.Fatal("deposit should not complete a cycle")
	}
	if d.State() != StateLoaded {
		t.Fatalf("expected LOADED, got %s", d.State())
	}
	if totals.LoadCount != 0 {
		t.Fatalf("accumulator changed before unload: %+v", totals)
	}

	credited, ok := d.Process(&totals, 0)
	if !ok {
		t.Fatal("unload should complete the cycle")
	}
	if credited != 1200 {
		t.Errorf("credited: got %v, want 1200", credited)
	}
	if totals.LoadCount != 1 || totals.TotalWeight != 1200 {
		t.Errorf("totals: got %+v, want {1 1200}", totals)
	}
	if d.State() != StateEmpty || d.LastWeight() != 0 {
		t.Errorf("expected EMPTY with lastWeight 0, got %s %v", d.State(), d.LastWeight())
	}
}

func TestOneIncrementPerCycleRegardlessOfRunLength(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    uint16
	}{
		{"single positive", []float64{10, 0}, 1},
		{"long run", []float64{10, 20, 30, 40, 50, 60, 70, 0}, 1},
		{"repeated zeros", []float64{10, 0, 0, 0, 0}, 1},
		{"two cycles", []float64{10, 11, 0, 20, 0}, 2},
		{"jitter inside run", []float64{10, 0.2, 0}, 1},
		{"unfinished cycle", []float64{10, 20, 30}, 0},
		{"zeros only", []float64{0, 0, 0.3, -0.3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(DefaultNoiseGate)
			var totals Totals
			feed(d, &totals, tt.samples...)
			if totals.LoadCount != tt.want {
				t.Errorf("load count: got %d, want %d", totals.LoadCount, tt.want)
			}
		})
	}
}

func TestTotalIsSumOfLastPositiveSample(t *testing.T) {
	d := NewDetector(DefaultNoiseGate)
	var totals Totals

	// Peak 900 then settles at 850 before unloading.
	feed(d, &totals, 100, 900, 850, 0)
	// First 50, last 400.
	feed(d, &totals, 50, 200, 400, 0)

	if totals.LoadCount != 2 {
		t.Fatalf("load count: got %d, want 2", totals.LoadCount)
	}
	if totals.TotalWeight != 1250 {
		t.Errorf("total weight: got %v, want 1250 (850+400)", totals.TotalWeight)
	}
}

func TestNegativeSampleDoesNotEndCycle(t *testing.T) {
	d := NewDetector(DefaultNoiseGate)
	var totals Totals

	feed(d, &totals, 500, -3)
	if d.State() != StateLoaded {
		t.Fatalf("negative sample should not unload, state=%s", d.State())
	}
	if d.LastWeight() != 500 {
		t.Errorf("lastWeight: got %v, want 500", d.LastWeight())
	}
	feed(d, &totals, 0)
	if totals.TotalWeight != 500 {
		t.Errorf("total weight: got %v, want 500", totals.TotalWeight)
	}
}

func TestNaNSampleIgnored(t *testing.T) {
	d := NewDetector(DefaultNoiseGate)
	var totals Totals
	feed(d, &totals, 500, math.NaN())
	if d.State() != StateLoaded || d.LastWeight() != 500 {
		t.Errorf("NaN should be ignored, got %s %v", d.State(), d.LastWeight())
	}
}

func TestTareWhileLoadedDiscardsLoad(t *testing.T) {
	d := NewDetector(DefaultNoiseGate)
	totals := Totals{LoadCount: 3, TotalWeight: 3000}

	feed(d, &totals, 700, 750)
	d.Tare()

	if d.State() != StateEmpty {
		t.Errorf("expected EMPTY after tare, got %s", d.State())
	}
	if d.LastWeight() != 0 || d.Current() != 0 {
		t.Errorf("expected zeroed weights, got last=%v current=%v", d.LastWeight(), d.Current())
	}

	// The following zero must not credit the discarded load.
	feed(d, &totals, 0)
	if totals.LoadCount != 3 || totals.TotalWeight != 3000 {
		t.Errorf("tare credited the accumulator: %+v", totals)
	}
}

func TestResetZeroesTotals(t *testing.T) {
	d := NewDetector(DefaultNoiseGate)
	var totals Totals
	feed(d, &totals, 10, 0, 20, 0, 30)

	totals.Reset()
	d.Reset()

	if totals.LoadCount != 0 || totals.TotalWeight != 0 {
		t.Errorf("expected zero totals, got %+v", totals)
	}
	if d.State() != StateEmpty {
		t.Errorf("expected EMPTY, got %s", d.State())
	}
}

func TestCreditSaturates(t *testing.T) {
	totals := Totals{LoadCount: MaxLoadCount}
	totals.Credit(5)
	if totals.LoadCount != MaxLoadCount {
		t.Errorf("count should saturate, got %d", totals.LoadCount)
	}
	if totals.TotalWeight != 5 {
		t.Errorf("weight should still accumulate, got %v", totals.TotalWeight)
	}
}

func TestTotalTons(t *testing.T) {
	totals := Totals{TotalWeight: 12500}
	if totals.TotalTons() != 12.5 {
		t.Errorf("got %v, want 12.5", totals.TotalTons())
	}
}
