//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "lamp-controller"

// RealLamp drives the RGB lamp through the Linux GPIO character device.
type RealLamp struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
}

// NewRealLamp requests the three lamp channels as outputs, initially off.
func NewRealLamp(chipName string, pinR, pinG, pinB int) (*RealLamp, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines([]int{pinR, pinG, pinB}, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request lamp pins %d/%d/%d: %w", pinR, pinG, pinB, err)
	}

	return &RealLamp{
		chip:  chip,
		lines: lines,
	}, nil
}

// SetColor drives R, G and B together.
func (l *RealLamp) SetColor(c Color) error {
	if err := l.lines.SetValues([]int{level(c.R), level(c.G), level(c.B)}); err != nil {
		return fmt.Errorf("set lamp color: %w", err)
	}
	return nil
}

// Close turns the lamp off and releases GPIO resources.
func (l *RealLamp) Close() error {
	var errs []error

	if l.lines != nil {
		if err := l.lines.SetValues([]int{0, 0, 0}); err != nil {
			errs = append(errs, fmt.Errorf("turn lamp off: %w", err))
		}
		if err := l.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lamp lines: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealIndicator drives the status LED through the Linux GPIO character device.
type RealIndicator struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealIndicator requests the status pin as an output, initially off.
func NewRealIndicator(chipName string, pin int) (*RealIndicator, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request status pin %d: %w", pin, err)
	}

	return &RealIndicator{
		chip: chip,
		line: line,
	}, nil
}

// Set drives the indicator on or off.
func (i *RealIndicator) Set(on bool) error {
	if err := i.line.SetValue(level(on)); err != nil {
		return fmt.Errorf("set status pin: %w", err)
	}
	return nil
}

// Close drives the indicator off, returns the pin to an input with
// pull-down (the Pi boot default) and releases GPIO resources.
func (i *RealIndicator) Close() error {
	var errs []error

	if i.line != nil {
		if err := i.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("turn indicator off: %w", err))
		}
		if err := i.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure status pin: %w", err))
		}
		if err := i.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close status pin: %w", err))
		}
	}
	if i.chip != nil {
		if err := i.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
