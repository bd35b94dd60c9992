// Package status provides a thread-safe status tracker for the float-alarm daemon.
// The main loop writes it once per tick; HTTP handlers and MQTT payloads read snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/float-alarm/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	DeviceName        string
	SSID              string
	TickMs            int64
	BeepMs            int64
	AlarmFrequencyMs  int64
	NetFrequencyMs    int64
	RestartDelayMs    int64
	ReconnectInterval int
	HeartbeatMs       int64
	Broker            string
	HTTPAddr          string
}

// Notifications holds the delivery flag of each notification kind.
type Notifications struct {
	Startup  logic.Flag
	Alert    logic.Flag
	Recovery logic.Flag
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Level         logic.Level
	PowerCut      bool
	Schedule      logic.Schedule
	AlarmFault    bool // relay or buzzer not in the commanded state
	WiFiConnected bool
	MQTTConnected bool
	InhibitUntil  time.Time
	Notifications Notifications
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Inhibited reports whether edge processing was suppressed at the snapshot time.
func (s Snapshot) Inhibited() bool {
	return s.Now.Before(s.InhibitUntil)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Level:     logic.LevelSafe,
			Schedule:  logic.ScheduleNone,
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update copies the loop state. Called from the main loop on every tick.
func (t *Tracker) Update(s *logic.State) {
	t.mu.Lock()
	t.snap.Level = s.Current
	t.snap.PowerCut = s.PowerCut()
	t.snap.Schedule = s.Schedule
	t.snap.WiFiConnected = s.NetConnected
	t.snap.InhibitUntil = s.InhibitUntil
	t.snap.Notifications = Notifications{
		Startup:  s.Startup,
		Alert:    s.Alert,
		Recovery: s.Recovery,
	}
	t.snap.Counts = s.Counts
	t.mu.Unlock()
}

// SetAlarmFault records whether the alarm outputs lag the commanded state.
func (t *Tracker) SetAlarmFault(fault bool) {
	t.mu.Lock()
	t.snap.AlarmFault = fault
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
