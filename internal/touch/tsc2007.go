package touch

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// DefaultTSC2007Addr is the controller address with A0/A1 tied low.
const DefaultTSC2007Addr = 0x48

// Conversion commands: function in the high nibble, power-down between
// conversions, 12-bit mode.
const (
	cmdMeasureX  = 0xC0
	cmdMeasureY  = 0xD0
	cmdMeasureZ1 = 0xE0
)

// TSC2007 is a 4-wire resistive touch controller on I2C.
type TSC2007 struct {
	bus    i2c.BusCloser
	dev    *i2c.Dev
	bounds Bounds
}

// OpenTSC2007 opens the I2C bus (empty name selects the first bus). periph
// host drivers must be initialized.
func OpenTSC2007(busName string, addr uint16, bounds Bounds) (*TSC2007, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	return &TSC2007{
		bus:    bus,
		dev:    &i2c.Dev{Bus: bus, Addr: addr},
		bounds: bounds,
	}, nil
}

func (t *TSC2007) measure(cmd byte) (int, error) {
	r := make([]byte, 2)
	if err := t.dev.Tx([]byte{cmd}, r); err != nil {
		return 0, fmt.Errorf("tsc2007 command %#x: %w", cmd, err)
	}
	return int(r[0])<<4 | int(r[1])>>4, nil
}

// Poll reads pressure first and only measures position when touched.
func (t *TSC2007) Poll() (Point, bool, error) {
	z, err := t.measure(cmdMeasureZ1)
	if err != nil {
		return Point{}, false, err
	}
	if z == 0 {
		return Point{}, false, nil
	}
	rawX, err := t.measure(cmdMeasureX)
	if err != nil {
		return Point{}, false, err
	}
	rawY, err := t.measure(cmdMeasureY)
	if err != nil {
		return Point{}, false, err
	}
	x, y := t.bounds.Map(rawX, rawY)
	return Point{X: x, Y: y, Pressure: z}, true, nil
}

// Close releases the I2C bus.
func (t *TSC2007) Close() error {
	return t.bus.Close()
}
