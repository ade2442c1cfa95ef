package eeprom

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// FileDevice stores the EEPROM image in a regular file. A missing file is
// created erased (all 0xFF), like a fresh chip.
type FileDevice struct {
	f    *os.File
	size int
}

// OpenFile opens or creates an image of size bytes at path.
func OpenFile(path string, size int) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() < int64(size) {
		// Extend with erased cells, keeping whatever is already there.
		pad := make([]byte, int64(size)-info.Size())
		for i := range pad {
			pad[i] = 0xFF
		}
		if _, err := f.WriteAt(pad, info.Size()); err != nil {
			f.Close()
			return nil, fmt.Errorf("initialize image: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("sync image: %w", err)
		}
	}
	return &FileDevice{f: f, size: size}, nil
}

// Read returns n bytes at addr.
func (d *FileDevice) Read(addr, n int) ([]byte, error) {
	if err := checkRange(d.size, addr, n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := d.f.ReadAt(b, int64(addr)); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return b, nil
}

// Write stores data at addr and syncs so it survives power loss.
func (d *FileDevice) Write(addr int, data []byte) error {
	if err := checkRange(d.size, addr, len(data)); err != nil {
		return err
	}
	if _, err := d.f.WriteAt(data, int64(addr)); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := d.f.Sync(); err != nil {
		return fmt.Errorf("sync image: %w", err)
	}
	return nil
}

// Close closes the image file.
func (d *FileDevice) Close() error {
	return d.f.Close()
}
