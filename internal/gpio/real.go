//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealSignal drives two lamp relays from GPIO outputs.
type RealSignal struct {
	chip     *gpiocdev.Chip
	redPin   *gpiocdev.Line
	greenPin *gpiocdev.Line
}

// NewRealSignal requests pinRed and pinGreen as outputs, initially off.
func NewRealSignal(chipName string, pinRed, pinGreen int) (*RealSignal, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	redLine, err := chip.RequestLine(pinRed, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request red pin %d: %w", pinRed, err)
	}

	greenLine, err := chip.RequestLine(pinGreen, gpiocdev.AsOutput(0))
	if err != nil {
		redLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request green pin %d: %w", pinGreen, err)
	}

	return &RealSignal{
		chip:     chip,
		redPin:   redLine,
		greenPin: greenLine,
	}, nil
}

// Set drives exactly one lamp, or none for LightOff.
func (r *RealSignal) Set(light Light) error {
	red, green := 0, 0
	switch light {
	case LightRed:
		red = 1
	case LightGreen:
		green = 1
	}
	// Switch the lamp being turned off first so both are never lit together.
	if red == 0 {
		if err := r.redPin.SetValue(0); err != nil {
			return fmt.Errorf("set red pin: %w", err)
		}
		if err := r.greenPin.SetValue(green); err != nil {
			return fmt.Errorf("set green pin: %w", err)
		}
		return nil
	}
	if err := r.greenPin.SetValue(0); err != nil {
		return fmt.Errorf("set green pin: %w", err)
	}
	if err := r.redPin.SetValue(red); err != nil {
		return fmt.Errorf("set red pin: %w", err)
	}
	return nil
}

// Close turns both lamps off and reconfigures the pins to input with
// pull-down (matching Pi boot defaults) before releasing them.
func (r *RealSignal) Close() error {
	var errs []error

	for _, p := range []struct {
		name string
		line *gpiocdev.Line
	}{{"red", r.redPin}, {"green", r.greenPin}} {
		if p.line == nil {
			continue
		}
		if err := p.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s pin: %w", p.name, err))
		}
		if err := p.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", p.name, err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", p.name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
