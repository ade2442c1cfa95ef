package eeprom

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Codec encodes fixed-width values at byte offsets of a Device.
//
// Integers are little-endian. Floats are the four IEEE-754 binary32 bytes,
// also little-endian. Writes only touch bytes whose stored value differs.
type Codec struct {
	dev Device
}

// NewCodec wraps dev.
func NewCodec(dev Device) *Codec {
	return &Codec{dev: dev}
}

// WriteU16 stores v at addr (low byte) and addr+1 (high byte).
func (c *Codec) WriteU16(addr int, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return c.update(addr, b[:])
}

// ReadU16 decodes the value stored by WriteU16.
func (c *Codec) ReadU16(addr int) (uint16, error) {
	b, err := c.read(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// WriteF32 stores the raw bits of v at addr..addr+3.
func (c *Codec) WriteF32(addr int, v float32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	return c.update(addr, b[:])
}

// ReadF32 decodes the value stored by WriteF32. It may return NaN or Inf
// for erased or corrupted cells; callers decide what is valid.
func (c *Codec) ReadF32(addr int) (float32, error) {
	b, err := c.read(addr, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (c *Codec) read(addr, n int) ([]byte, error) {
	b, err := c.dev.Read(addr, n)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, addr, err)
	}
	if len(b) != n {
		return nil, fmt.Errorf("read %d bytes at %d: short read (%d)", n, addr, len(b))
	}
	return b, nil
}

// update writes only the bytes that differ from what is stored, one byte per
// write, to spare the medium.
func (c *Codec) update(addr int, data []byte) error {
	cur, err := c.read(addr, len(data))
	if err != nil {
		return err
	}
	for i, b := range data {
		if cur[i] == b {
			continue
		}
		if err := c.dev.Write(addr+i, []byte{b}); err != nil {
			return fmt.Errorf("write byte at %d: %w", addr+i, err)
		}
	}
	return nil
}
