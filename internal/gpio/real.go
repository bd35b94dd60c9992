//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the float switch from actual hardware using Linux GPIO character device.
type RealReader struct {
	line *gpiocdev.Line
	pin  int
}

// NewRealReader requests pin on chip as an input with pull-up, so an open
// switch reads high.
func NewRealReader(chip string, pin int) (*RealReader, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	return &RealReader{line: line, pin: pin}, nil
}

// Read returns the raw line value.
func (r *RealReader) Read() (int, error) {
	v, err := r.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read pin %d: %w", r.pin, err)
	}
	return v, nil
}

// Close releases the line.
func (r *RealReader) Close() error {
	if r.line == nil {
		return nil
	}
	if err := r.line.Close(); err != nil {
		return fmt.Errorf("close pin %d: %w", r.pin, err)
	}
	return nil
}

// RealOutput drives an output line. Each Set is a single ioctl on the line,
// so concurrent callers never interleave a read-modify-write.
type RealOutput struct {
	line *gpiocdev.Line
	pin  int
}

// NewRealOutput requests pin on chip as an output holding initial.
func NewRealOutput(chip string, pin, initial int) (*RealOutput, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(initial))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealOutput{line: line, pin: pin}, nil
}

// Set writes value to the line.
func (o *RealOutput) Set(value int) error {
	if err := o.line.SetValue(value); err != nil {
		return fmt.Errorf("write pin %d: %w", o.pin, err)
	}
	return nil
}

// Close releases the line. The kernel keeps the last driven value.
func (o *RealOutput) Close() error {
	if o.line == nil {
		return nil
	}
	if err := o.line.Close(); err != nil {
		return fmt.Errorf("close pin %d: %w", o.pin, err)
	}
	return nil
}
