// Package touch provides touch panel polling with hardware abstraction.
// The real implementation talks to a TSC2007 resistive touch controller over
// I2C. The fake implementation allows testing without hardware.
package touch

import "github.com/sweeney/truck-scale/internal/logic"

// DefaultPressureThreshold is the minimum pressure treated as a deliberate touch.
const DefaultPressureThreshold = 10

// Point is a touch in screen coordinates with the measured pressure.
type Point struct {
	X, Y     int
	Pressure int
}

// Actionable reports whether the touch is firm enough to dispatch.
func (p Point) Actionable(threshold int) bool {
	return p.Pressure > threshold
}

// Screen returns the position for hit testing.
func (p Point) Screen() logic.Point {
	return logic.Point{X: p.X, Y: p.Y}
}

// Panel reports touches.
type Panel interface {
	// Poll returns the current touch and true, or false if nothing is pressed.
	Poll() (Point, bool, error)

	// Close releases hardware resources.
	Close() error
}

// Bounds maps raw controller readings onto a screen of Width x Height.
type Bounds struct {
	MinX, MaxX int
	MinY, MaxY int
	Width      int
	Height     int
}

// DefaultBounds matches a 480x320 panel read by a 12-bit controller.
var DefaultBounds = Bounds{
	MinX: 150, MaxX: 3900,
	MinY: 120, MaxY: 3800,
	Width: 480, Height: 320,
}

// Map converts raw readings to screen coordinates, clamped to the screen.
func (b Bounds) Map(rawX, rawY int) (int, int) {
	return scale(rawX, b.MinX, b.MaxX, b.Width), scale(rawY, b.MinY, b.MaxY, b.Height)
}

func scale(v, lo, hi, size int) int {
	if hi == lo || size <= 0 {
		return 0
	}
	out := (v - lo) * size / (hi - lo)
	if out < 0 {
		return 0
	}
	if out > size-1 {
		return size - 1
	}
	return out
}
