package gpio

// FakeSignal is a test double that records lamp changes.
type FakeSignal struct {
	// Lights contains every light passed to Set, in order.
	Lights []Light

	// SetError, if set, will be returned by Set()
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeSignal creates a FakeSignal.
func NewFakeSignal() *FakeSignal {
	return &FakeSignal{}
}

// Set records the light.
func (f *FakeSignal) Set(light Light) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Lights = append(f.Lights, light)
	return nil
}

// Close marks the signal as closed.
func (f *FakeSignal) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent light, or LightOff if none was set.
func (f *FakeSignal) Last() Light {
	if len(f.Lights) == 0 {
		return LightOff
	}
	return f.Lights[len(f.Lights)-1]
}
