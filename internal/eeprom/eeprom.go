// Package eeprom persists scale state in a small byte-addressable
// non-volatile store. The real implementations talk to an AT24 EEPROM over
// I2C or to an image file; the fake allows testing without hardware.
package eeprom

import "errors"

// ErrOutOfRange is returned for accesses beyond the end of a device.
var ErrOutOfRange = errors.New("eeprom: address out of range")

// Device is a byte-addressable store that survives power loss.
type Device interface {
	// Read returns n bytes starting at addr.
	Read(addr, n int) ([]byte, error)

	// Write stores data starting at addr.
	Write(addr int, data []byte) error

	// Close releases the device.
	Close() error
}

func checkRange(size, addr, n int) error {
	if addr < 0 || n < 0 || addr+n > size {
		return ErrOutOfRange
	}
	return nil
}
