// Package logic contains the pure state model of the float alarm.
// This package has NO external dependencies (no GPIO, network, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Level is the processed state of the float switch.
type Level string

const (
	LevelSafe     Level = "SAFE"
	LevelOverflow Level = "OVERFLOW"
)

// LevelFromPin maps a raw input value to a level.
// The switch pulls the line high while the level is OK and low when it trips.
func LevelFromPin(raw int) Level {
	if raw == 0 {
		return LevelOverflow
	}
	return LevelSafe
}

// Flag records the delivery state of one notification.
type Flag int

const (
	FlagNotAttempted Flag = iota
	FlagSent
	FlagPending // attempted and failed, retried on a later tick
)

func (f Flag) String() string {
	switch f {
	case FlagSent:
		return "SENT"
	case FlagPending:
		return "PENDING"
	default:
		return "NOT_ATTEMPTED"
	}
}

// FlagFor converts a send outcome into a flag.
func FlagFor(sent bool) Flag {
	if sent {
		return FlagSent
	}
	return FlagPending
}

// Schedule identifies a periodic buzzer cadence.
type Schedule string

const (
	ScheduleNone        Schedule = "NONE"
	ScheduleNetworkLost Schedule = "NETWORK_LOST"
	ScheduleAlert       Schedule = "ALERT"
)

// Notification is the kind of operator message.
type Notification string

const (
	NotifyStartup  Notification = "STARTUP"
	NotifyAlert    Notification = "ALERT"
	NotifyRecovery Notification = "RECOVERY"
)

// EventType represents a processed float transition.
type EventType string

const (
	EventOverflow EventType = "FLOAT_OVERFLOW"
	EventSafe     EventType = "FLOAT_SAFE"
)

// Event represents a processed transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Level     Level
	PowerCut  bool
}

// Counts tracks activity since startup.
type Counts struct {
	Overflows           int
	Recoveries          int
	NotificationsSent   int
	NotificationsFailed int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
