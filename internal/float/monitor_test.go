package float

import (
	"errors"
	"testing"

	"github.com/sweeney/float-alarm/internal/gpio"
	"github.com/sweeney/float-alarm/internal/logic"
)

// faultReader returns errors for a fixed range of Read() calls.
type faultReader struct {
	inner      *gpio.FakeReader
	call       int
	faultStart int // inclusive
	faultEnd   int // exclusive
}

func (r *faultReader) Read() (int, error) {
	i := r.call
	r.call++
	if i >= r.faultStart && i < r.faultEnd {
		return 0, errors.New("gpio fault")
	}
	return r.inner.Read()
}

func (r *faultReader) Close() error { return r.inner.Close() }

func TestSampleMapsPinToLevel(t *testing.T) {
	m := NewMonitor(gpio.NewFakeReader(1, 0, 0, 1))

	want := []logic.Level{logic.LevelSafe, logic.LevelOverflow, logic.LevelOverflow, logic.LevelSafe}
	for i, w := range want {
		if got := m.Sample(); got != w {
			t.Errorf("sample %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestSampleHoldsLastLevelOnError(t *testing.T) {
	r := &faultReader{inner: gpio.NewFakeReader(0, 1), faultStart: 1, faultEnd: 3}
	m := NewMonitor(r)

	if got := m.Sample(); got != logic.LevelOverflow {
		t.Fatalf("expected Overflow, got %s", got)
	}
	for i := 0; i < 2; i++ {
		if got := m.Sample(); got != logic.LevelOverflow {
			t.Errorf("fault %d: expected held Overflow, got %s", i, got)
		}
	}
	if got := m.Sample(); got != logic.LevelSafe {
		t.Errorf("after recovery: expected Safe, got %s", got)
	}
}

func TestSampleDefaultsToSafe(t *testing.T) {
	r := gpio.NewFakeReader(0)
	r.ReadError = errors.New("no line")
	m := NewMonitor(r)

	if got := m.Sample(); got != logic.LevelSafe {
		t.Errorf("expected Safe before any good read, got %s", got)
	}
}
