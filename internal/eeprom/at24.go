package eeprom

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// AT24 defaults for a 24C32 class part.
const (
	DefaultAT24Addr = 0x50
	DefaultAT24Size = 4096
	DefaultAT24Page = 32
	at24WriteCycle  = 5 * time.Millisecond
	at24MaxRead     = 32
)

// AT24Device is an I2C serial EEPROM with 16-bit word addressing.
type AT24Device struct {
	bus      i2c.BusCloser
	dev      *i2c.Dev
	size     int
	pageSize int
}

// OpenAT24 opens the I2C bus (empty name selects the first bus) and
// addresses the EEPROM at addr. periph host drivers must be initialized.
func OpenAT24(busName string, addr uint16, size, pageSize int) (*AT24Device, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	if size <= 0 {
		size = DefaultAT24Size
	}
	if pageSize <= 0 {
		pageSize = DefaultAT24Page
	}
	return &AT24Device{
		bus:      bus,
		dev:      &i2c.Dev{Bus: bus, Addr: addr},
		size:     size,
		pageSize: pageSize,
	}, nil
}

// Read performs sequential reads starting at addr.
func (d *AT24Device) Read(addr, n int) ([]byte, error) {
	if err := checkRange(d.size, addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	for n > 0 {
		chunk := n
		if chunk > at24MaxRead {
			chunk = at24MaxRead
		}
		r := make([]byte, chunk)
		if err := d.dev.Tx([]byte{byte(addr >> 8), byte(addr)}, r); err != nil {
			return nil, fmt.Errorf("at24 read at %d: %w", addr, err)
		}
		out = append(out, r...)
		addr += chunk
		n -= chunk
	}
	return out, nil
}

// Write splits data on page boundaries and waits out each internal write cycle.
func (d *AT24Device) Write(addr int, data []byte) error {
	if err := checkRange(d.size, addr, len(data)); err != nil {
		return err
	}
	for len(data) > 0 {
		room := d.pageSize - addr%d.pageSize
		chunk := len(data)
		if chunk > room {
			chunk = room
		}
		w := make([]byte, 0, chunk+2)
		w = append(w, byte(addr>>8), byte(addr))
		w = append(w, data[:chunk]...)
		if err := d.dev.Tx(w, nil); err != nil {
			return fmt.Errorf("at24 write at %d: %w", addr, err)
		}
		time.Sleep(at24WriteCycle)
		addr += chunk
		data = data[chunk:]
	}
	return nil
}

// Close releases the I2C bus.
func (d *AT24Device) Close() error {
	return d.bus.Close()
}
