package loadcell

import "errors"

// FakeSensor is a test double that returns scripted weights.
type FakeSensor struct {
	// Samples contains scripted weights in kg. Each call to Sample consumes
	// the next one; when exhausted the last is repeated.
	Samples []float64

	index int

	// Raw is returned by AverageRaw.
	Raw float64

	// AverageCalls records the n passed to each AverageRaw call.
	AverageCalls []int

	// Factor is the last value passed to SetFactor.
	Factor float64

	// Tares counts Tare calls.
	Tares int

	// SampleError, RawError and TareError, if set, are returned by the matching method.
	SampleError error
	RawError    error
	TareError   error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples ...float64) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// Sample returns the next scripted weight.
func (f *FakeSensor) Sample() (float64, error) {
	if f.SampleError != nil {
		return 0, f.SampleError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}
	w := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return w, nil
}

// AverageRaw returns Raw.
func (f *FakeSensor) AverageRaw(n int) (float64, error) {
	f.AverageCalls = append(f.AverageCalls, n)
	if f.RawError != nil {
		return 0, f.RawError
	}
	return f.Raw, nil
}

// SetFactor records f.
func (f *FakeSensor) SetFactor(factor float64) {
	f.Factor = factor
}

// Tare counts the call.
func (f *FakeSensor) Tare() error {
	if f.TareError != nil {
		return f.TareError
	}
	f.Tares++
	return nil
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.Closed = true
	return nil
}
