package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string            `json:"event,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Device        string            `json:"device"`
	Level         string            `json:"level"`
	PowerCut      bool              `json:"power_cut"`
	Schedule      string            `json:"beep_schedule"`
	AlarmFault    bool              `json:"alarm_fault"`
	Inhibited     bool              `json:"inhibited"`
	InhibitUntil  string            `json:"inhibit_until,omitempty"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"`
	Timestamp     string            `json:"timestamp"`
	WiFi          WiFiStatus        `json:"wifi"`
	MQTT          MQTTStatus        `json:"mqtt"`
	Notifications NotificationsJSON `json:"notifications"`
	Counts        CountsJSON        `json:"event_counts"`
	Config        ConfigJSON        `json:"config"`
}

// WiFiStatus reports wireless link state.
type WiFiStatus struct {
	Connected bool   `json:"connected"`
	SSID      string `json:"ssid"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NotificationsJSON reports the delivery flag of each notification kind.
type NotificationsJSON struct {
	Startup  string `json:"startup"`
	Alert    string `json:"alert"`
	Recovery string `json:"recovery"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Overflows           int `json:"overflows"`
	Recoveries          int `json:"recoveries"`
	NotificationsSent   int `json:"notifications_sent"`
	NotificationsFailed int `json:"notifications_failed"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs            int64  `json:"tick_ms"`
	BeepMs            int64  `json:"beep_ms"`
	AlarmFrequencyMs  int64  `json:"alarm_frequency_ms"`
	NetFrequencyMs    int64  `json:"net_frequency_ms"`
	RestartDelayMs    int64  `json:"restart_delay_ms"`
	ReconnectInterval int    `json:"reconnect_interval"`
	HeartbeatMs       int64  `json:"heartbeat_ms"`
	Broker            string `json:"broker"`
	HTTPAddr          string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Device:        snap.Config.DeviceName,
		Level:         string(snap.Level),
		PowerCut:      snap.PowerCut,
		Schedule:      string(snap.Schedule),
		AlarmFault:    snap.AlarmFault,
		Inhibited:     snap.Inhibited(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		WiFi:          WiFiStatus{Connected: snap.WiFiConnected, SSID: snap.Config.SSID},
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Notifications: NotificationsJSON{
			Startup:  snap.Notifications.Startup.String(),
			Alert:    snap.Notifications.Alert.String(),
			Recovery: snap.Notifications.Recovery.String(),
		},
		Counts: CountsJSON{
			Overflows:           snap.Counts.Overflows,
			Recoveries:          snap.Counts.Recoveries,
			NotificationsSent:   snap.Counts.NotificationsSent,
			NotificationsFailed: snap.Counts.NotificationsFailed,
		},
		Config: ConfigJSON{
			TickMs:            snap.Config.TickMs,
			BeepMs:            snap.Config.BeepMs,
			AlarmFrequencyMs:  snap.Config.AlarmFrequencyMs,
			NetFrequencyMs:    snap.Config.NetFrequencyMs,
			RestartDelayMs:    snap.Config.RestartDelayMs,
			ReconnectInterval: snap.Config.ReconnectInterval,
			HeartbeatMs:       snap.Config.HeartbeatMs,
			Broker:            snap.Config.Broker,
			HTTPAddr:          snap.Config.HTTPAddr,
		},
	}
	if inner.Level == "" {
		inner.Level = "UNKNOWN"
	}
	if inner.Inhibited {
		inner.InhibitUntil = snap.InhibitUntil.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
