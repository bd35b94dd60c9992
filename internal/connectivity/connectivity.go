// Package connectivity keeps the wireless link up without ever blocking the
// main loop. Reconnects are fire-and-forget: the outcome is only discovered by
// polling the radio on a later tick.
package connectivity

import (
	"github.com/sweeney/float-alarm/internal/logger"
)

// Radio is the wireless driver.
type Radio interface {
	// Activate powers the radio on.
	Activate() error
	// Connect requests association with a network and returns immediately.
	Connect(ssid, passphrase string) error
	// IsConnected reports whether the link is usable right now.
	IsConnected() bool
}

// Manager tracks link state and paces reconnect attempts.
type Manager struct {
	radio      Radio
	ssid       string
	passphrase string

	// threshold is the number of disconnected ticks between connect requests.
	threshold int
	counter   int
	connected bool
}

// NewManager creates a Manager. The first disconnected tick issues a connect
// request straight away; later ones wait threshold ticks between requests.
func NewManager(radio Radio, ssid, passphrase string, threshold int) *Manager {
	return &Manager{
		radio:      radio,
		ssid:       ssid,
		passphrase: passphrase,
		threshold:  threshold,
		counter:    threshold,
	}
}

// Activate powers the radio on.
func (m *Manager) Activate() error {
	return m.radio.Activate()
}

// IsConnected polls the radio.
func (m *Manager) IsConnected() bool {
	return m.radio.IsConnected()
}

// Connected returns the link state observed by the last Tick.
func (m *Manager) Connected() bool {
	return m.connected
}

// Tick polls the radio once and issues a connect request when one is due.
// It returns true when the link state differs from the previous tick.
func (m *Manager) Tick() bool {
	connected := m.radio.IsConnected()
	changed := connected != m.connected
	m.connected = connected

	if connected {
		m.counter = 0
		return changed
	}

	m.counter++
	if m.counter > m.threshold {
		m.counter = 0
		logger.InfoKV("connecting to wifi", "ssid", m.ssid)
		if err := m.radio.Connect(m.ssid, m.passphrase); err != nil {
			logger.Warnf("wifi connect request failed: %v", err)
		}
	}

	return changed
}
