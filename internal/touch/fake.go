package touch

// FakePanel is a test double that returns scripted touches.
type FakePanel struct {
	// Touches contains one entry per Poll call; nil means not touched.
	// When exhausted Poll reports no touch.
	Touches []*Point

	index int

	// PollError, if set, will be returned by Poll.
	PollError error

	// Polls counts Poll calls.
	Polls int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePanel creates a FakePanel with the given touches.
func NewFakePanel(touches ...*Point) *FakePanel {
	return &FakePanel{Touches: touches}
}

// Poll returns the next scripted touch.
func (f *FakePanel) Poll() (Point, bool, error) {
	f.Polls++
	if f.PollError != nil {
		return Point{}, false, f.PollError
	}
	if f.index >= len(f.Touches) {
		return Point{}, false, nil
	}
	p := f.Touches[f.index]
	f.index++
	if p == nil {
		return Point{}, false, nil
	}
	return *p, true, nil
}

// Close marks the panel as closed.
func (f *FakePanel) Close() error {
	f.Closed = true
	return nil
}

// Press is a helper for a firm touch at (x, y).
func Press(x, y int) *Point {
	return &Point{X: x, Y: y, Pressure: 500}
}
