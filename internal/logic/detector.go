package logic

import "math"

// DefaultNoiseGate is the smallest absolute weight (kg) treated as non-zero.
const DefaultNoiseGate = 0.5

// DetectionState is the externally visible state of a Detector.
type DetectionState string

const (
	StateEmpty  DetectionState = "EMPTY"
	StateLoaded DetectionState = "LOADED"
)

// Detector tracks the scale between "empty" and "loaded" and credits the
// accumulator exactly once per completed load cycle.
type Detector struct {
	noiseGate  float64
	loaded     bool
	lastWeight float64
	current    float64
}

// NewDetector creates a detector with the given noise gate. A gate <= 0
// falls back to DefaultNoiseGate.
func NewDetector(noiseGate float64) *Detector {
	if noiseGate <= 0 || math.IsNaN(noiseGate) {
		noiseGate = DefaultNoiseGate
	}
	return &Detector{noiseGate: noiseGate}
}

// Process takes a new weight sample and returns the credited weight and true
// if the sample completed a load cycle. Totals are only modified on that
// Loaded -> Empty transition.
func (d *Detector) Process(totals *Totals, w float64) (float64, bool) {
	if math.IsNaN(w) {
		return 0, false
	}
	if math.Abs(w) < d.noiseGate {
		w = 0
	}
	d.current = w

	switch {
	case w > 0:
		// Tracks the most recent positive sample, not the first or the peak.
		d.loaded = true
		d.lastWeight = w
	case w == 0 && d.loaded:
		credited := d.lastWeight
		totals.Credit(credited)
		d.lastWeight = 0
		d.loaded = false
		return credited, true
	}
	return 0, false
}

// Tare forces the detector back to Empty without crediting anything.
func (d *Detector) Tare() {
	d.loaded = false
	d.lastWeight = 0
	d.current = 0
}

// Reset clears detection state; used together with Totals.Reset.
func (d *Detector) Reset() {
	d.Tare()
}

// State returns Empty or Loaded.
func (d *Detector) State() DetectionState {
	if d.loaded {
		return StateLoaded
	}
	return StateEmpty
}

// Current returns the last gated sample.
func (d *Detector) Current() float64 {
	return d.current
}

// LastWeight returns the most recent positive sample of the cycle in progress.
func (d *Detector) LastWeight() float64 {
	return d.lastWeight
}
