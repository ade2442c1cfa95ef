package eeprom

import "fmt"

// FakeDevice is an in-memory Device that records physical writes.
type FakeDevice struct {
	// Data is the backing memory. New devices start erased (all 0xFF).
	Data []byte

	// Writes counts Write calls.
	Writes int

	// BytesWritten counts individual bytes written.
	BytesWritten int

	// ReadError, if set, will be returned by Read.
	ReadError error

	// WriteError, if set, will be returned by Write.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDevice creates an erased device of the given size.
func NewFakeDevice(size int) *FakeDevice {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xFF
	}
	return &FakeDevice{Data: data}
}

// Read returns a copy of the requested bytes.
func (f *FakeDevice) Read(addr, n int) ([]byte, error) {
	if f.ReadError != nil {
		return nil, f.ReadError
	}
	if err := checkRange(len(f.Data), addr, n); err != nil {
		return nil, fmt.Errorf("read %d+%d: %w", addr, n, err)
	}
	out := make([]byte, n)
	copy(out, f.Data[addr:addr+n])
	return out, nil
}

// Write stores data at addr.
func (f *FakeDevice) Write(addr int, data []byte) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	if err := checkRange(len(f.Data), addr, len(data)); err != nil {
		return fmt.Errorf("write %d+%d: %w", addr, len(data), err)
	}
	copy(f.Data[addr:], data)
	f.Writes++
	f.BytesWritten += len(data)
	return nil
}

// Close marks the device as closed.
func (f *FakeDevice) Close() error {
	f.Closed = true
	return nil
}

// ResetCounters clears the write counters.
func (f *FakeDevice) ResetCounters() {
	f.Writes = 0
	f.BytesWritten = 0
}
