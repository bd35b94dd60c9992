// Package float samples the float switch input.
package float

import (
	"github.com/sweeney/float-alarm/internal/gpio"
	"github.com/sweeney/float-alarm/internal/logger"
	"github.com/sweeney/float-alarm/internal/logic"
)

// Monitor reads the float switch once per tick.
type Monitor struct {
	reader gpio.Reader
	last   logic.Level
	failed bool
}

// NewMonitor creates a Monitor over reader.
func NewMonitor(reader gpio.Reader) *Monitor {
	return &Monitor{reader: reader, last: logic.LevelSafe}
}

// Sample returns the current level. A read error is logged once per run of
// failures and the last good level is returned, so a flaky line never
// produces a transition on its own.
func (m *Monitor) Sample() logic.Level {
	raw, err := m.reader.Read()
	if err != nil {
		if !m.failed {
			logger.Errorf("float read error: %v", err)
			m.failed = true
		}
		return m.last
	}

	if m.failed {
		logger.Infof("float read recovered")
		m.failed = false
	}

	m.last = logic.LevelFromPin(raw)
	return m.last
}
