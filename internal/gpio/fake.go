package gpio

import (
	"errors"
	"sync"
	"sync/atomic"
)

// FakeReader is a test double that returns scripted input values.
type FakeReader struct {
	// Samples contains scripted raw values to return.
	// Each call to Read() consumes the next sample.
	Samples []int

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...int) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeOutput records writes. Safe for concurrent use.
type FakeOutput struct {
	value atomic.Int32
	highs atomic.Int32

	mu     sync.Mutex
	writes []int
	closed bool
}

// NewFakeOutput creates a FakeOutput holding the initial value.
func NewFakeOutput(initial int) *FakeOutput {
	f := &FakeOutput{}
	f.value.Store(int32(initial))
	return f
}

// Set records the write.
func (f *FakeOutput) Set(value int) error {
	f.value.Store(int32(value))
	if value != 0 {
		f.highs.Add(1)
	}

	f.mu.Lock()
	f.writes = append(f.writes, value)
	f.mu.Unlock()
	return nil
}

// Value returns the last written value.
func (f *FakeOutput) Value() int {
	return int(f.value.Load())
}

// Highs returns how many times the output was driven high.
func (f *FakeOutput) Highs() int {
	return int(f.highs.Load())
}

// Writes returns a copy of every value written, in order.
func (f *FakeOutput) Writes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.writes...)
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
