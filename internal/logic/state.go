package logic

import "time"

// State is the single record owned by the main loop.
// Collaborators never see it; they receive only the values they need.
type State struct {
	// Current is the most recently processed level. Power cut mirrors it.
	Current Level
	// Previous equals Current except during the tick that processes a transition.
	Previous Level

	Startup  Flag
	Alert    Flag
	Recovery Flag

	NetConnected bool
	Schedule     Schedule

	// InhibitUntil suppresses edge processing while now is before it.
	// The zero value means no inhibition.
	InhibitUntil time.Time

	Counts Counts

	startTime     time.Time
	lastHeartbeat time.Time
}

// NewState returns the startup state: level Safe, nothing inhibited,
// and only the startup notification outstanding.
func NewState(startTime time.Time) *State {
	return &State{
		Current:       LevelSafe,
		Previous:      LevelSafe,
		Startup:       FlagNotAttempted,
		Alert:         FlagNotAttempted,
		Recovery:      FlagSent,
		Schedule:      ScheduleNone,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Inhibited reports whether edge processing is suppressed at now.
func (s *State) Inhibited(now time.Time) bool {
	return now.Before(s.InhibitUntil)
}

// IsEdge reports whether sample is a transition that may be processed at now.
func (s *State) IsEdge(sample Level, now time.Time) bool {
	return sample != s.Current && !s.Inhibited(now)
}

// Transition records a processed level change and returns the event for it.
// Entering Overflow discards the recovery flag and opens the inhibition
// window; entering Safe discards the alert flag, sent or not.
func (s *State) Transition(to Level, now time.Time, restartDelay time.Duration) Event {
	s.Previous = s.Current
	s.Current = to

	event := Event{Timestamp: now, Level: to}
	if to == LevelOverflow {
		s.Recovery = FlagNotAttempted
		s.InhibitUntil = now.Add(restartDelay)
		s.Counts.Overflows++
		event.Type = EventOverflow
		event.PowerCut = true
		return event
	}

	s.Alert = FlagNotAttempted
	s.Counts.Recoveries++
	event.Type = EventSafe
	return event
}

// Settle closes the tick: Previous catches up with Current.
func (s *State) Settle() {
	s.Previous = s.Current
}

// PowerCut reports whether the relay should be holding power off.
func (s *State) PowerCut() bool {
	return s.Current == LevelOverflow
}

// Outstanding returns the notification for the current level that has not
// been delivered yet.
func (s *State) Outstanding() (Notification, bool) {
	if s.Current == LevelOverflow {
		return NotifyAlert, s.Alert != FlagSent
	}
	return NotifyRecovery, s.Recovery != FlagSent
}

// Record stores the outcome of a send attempt.
func (s *State) Record(n Notification, sent bool) {
	flag := FlagFor(sent)
	switch n {
	case NotifyStartup:
		s.Startup = flag
	case NotifyAlert:
		s.Alert = flag
	case NotifyRecovery:
		s.Recovery = flag
	}
	if sent {
		s.Counts.NotificationsSent++
	} else {
		s.Counts.NotificationsFailed++
	}
}

// DesiredSchedule returns the buzzer cadence for a level and connectivity.
// Alert wins when both conditions hold.
func DesiredSchedule(level Level, connected bool) Schedule {
	switch {
	case level == LevelOverflow:
		return ScheduleAlert
	case !connected:
		return ScheduleNetworkLost
	default:
		return ScheduleNone
	}
}

// StartTime returns when the state was created.
func (s *State) StartTime() time.Time {
	return s.startTime
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// is <= 0 (disabled).
func (s *State) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(s.lastHeartbeat) < interval {
		return nil
	}

	s.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(s.startTime),
		Counts:    s.Counts,
	}
}
