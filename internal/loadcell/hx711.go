//go:build linux

package loadcell

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Extra clock pulses after the 24 data bits select the next conversion's
// channel and gain.
const (
	GainA128 = 1
	GainB32  = 2
	GainA64  = 3
)

// HX711 reads an HX711 amplifier wired to two GPIO lines (DOUT, PD_SCK).
type HX711 struct {
	chip    *gpiocdev.Chip
	dout    *gpiocdev.Line
	sck     *gpiocdev.Line
	gain    int
	timeout time.Duration
}

// NewHX711 requests doutPin as input and sckPin as output (low) on chipName.
func NewHX711(chipName string, doutPin, sckPin, gain int, timeout time.Duration) (*HX711, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	dout, err := chip.RequestLine(doutPin, gpiocdev.AsInput)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request DOUT pin %d: %w", doutPin, err)
	}

	// SCK held low keeps the HX711 powered up.
	sck, err := chip.RequestLine(sckPin, gpiocdev.AsOutput(0))
	if err != nil {
		dout.Close()
		chip.Close()
		return nil, fmt.Errorf("request SCK pin %d: %w", sckPin, err)
	}

	if gain < GainA128 || gain > GainA64 {
		gain = GainA128
	}
	return &HX711{chip: chip, dout: dout, sck: sck, gain: gain, timeout: timeout}, nil
}

// ReadRaw waits for DOUT to go low, clocks out 24 bits MSB first and
// sign-extends the two's complement result.
func (h *HX711) ReadRaw() (int32, error) {
	deadline := time.Now().Add(h.timeout)
	for {
		v, err := h.dout.Value()
		if err != nil {
			return 0, fmt.Errorf("read DOUT: %w", err)
		}
		if v == 0 {
			break
		}
		if time.Now().After(deadline) {
			return 0, ErrNotReady
		}
		time.Sleep(time.Millisecond)
	}

	var value uint32
	for i := 0; i < 24; i++ {
		bit, err := h.pulse(true)
		if err != nil {
			return 0, err
		}
		value = value<<1 | uint32(bit)
	}
	for i := 0; i < h.gain; i++ {
		if _, err := h.pulse(false); err != nil {
			return 0, err
		}
	}

	return int32(value<<8) >> 8, nil
}

func (h *HX711) pulse(sample bool) (int, error) {
	if err := h.sck.SetValue(1); err != nil {
		return 0, fmt.Errorf("set SCK: %w", err)
	}
	bit := 0
	if sample {
		v, err := h.dout.Value()
		if err != nil {
			h.sck.SetValue(0)
			return 0, fmt.Errorf("read DOUT: %w", err)
		}
		bit = v
	}
	if err := h.sck.SetValue(0); err != nil {
		return 0, fmt.Errorf("clear SCK: %w", err)
	}
	return bit, nil
}

// Close powers the amplifier down (SCK high) and releases the lines.
func (h *HX711) Close() error {
	var errs []error

	if h.sck != nil {
		if err := h.sck.SetValue(1); err != nil {
			errs = append(errs, fmt.Errorf("power down: %w", err))
		}
		if err := h.sck.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close SCK pin: %w", err))
		}
	}
	if h.dout != nil {
		if err := h.dout.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close DOUT pin: %w", err))
		}
	}
	if h.chip != nil {
		if err := h.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
