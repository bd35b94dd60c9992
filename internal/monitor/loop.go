// Package monitor runs the float-alarm tick loop.
//
// The loop owns the single logic.State record. Collaborators are reached
// through narrow interfaces so tests drive every tick with fakes and an
// injected clock.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/sweeney/float-alarm/internal/logger"
	"github.com/sweeney/float-alarm/internal/logic"
	"github.com/sweeney/float-alarm/internal/metrics"
	"github.com/sweeney/float-alarm/internal/mqtt"
	"github.com/sweeney/float-alarm/internal/notify"
	"github.com/sweeney/float-alarm/internal/status"
)

// Sampler reads the float level once per tick.
type Sampler interface {
	Sample() logic.Level
}

// Alarm drives the buzzer schedules and the power-cut relay.
type Alarm interface {
	SetPowerCut(active bool)
	StartSchedule(kind logic.Schedule, period time.Duration)
	StopSchedule()
}

// AlarmReporter is implemented by alarms that report what they last drove.
type AlarmReporter interface {
	PowerCut() bool
	Schedule() logic.Schedule
}

// Link maintains the wireless connection.
type Link interface {
	// Tick polls the link and reports whether its state changed.
	Tick() bool
	// Connected returns the state observed by the last Tick.
	Connected() bool
}

// Config holds the loop tunables.
type Config struct {
	AlarmFrequency time.Duration
	NetFrequency   time.Duration
	RestartDelay   time.Duration
	Heartbeat      time.Duration // 0 disables
}

// Deps are the loop collaborators. Publisher, MQTT, Tracker and Metrics are optional.
type Deps struct {
	Float  Sampler
	Alarm  Alarm
	Link   Link
	Sender notify.Sender

	Publisher mqtt.Publisher
	MQTT      mqtt.ConnectionStatus
	Tracker   *status.Tracker
	Metrics   *metrics.Metrics
}

// Loop is the main state machine.
type Loop struct {
	cfg   Config
	deps  Deps
	now   func() time.Time
	state *logic.State
}

// New creates a Loop starting at now().
func New(cfg Config, deps Deps, now func() time.Time) *Loop {
	if deps.Publisher == nil {
		deps.Publisher = mqtt.NopPublisher{}
	}
	return &Loop{
		cfg:   cfg,
		deps:  deps,
		now:   now,
		state: logic.NewState(now()),
	}
}

// State returns the loop state. Only safe to read between ticks.
func (l *Loop) State() *logic.State {
	return l.state
}

// Run publishes STARTUP, then processes ticks until ctx is done.
// On exit it publishes SHUTDOWN and stops the beep schedule; the relay keeps
// its state. The cancel cause, if any, is reported as the shutdown reason.
func (l *Loop) Run(ctx context.Context, tick <-chan time.Time) error {
	l.publishSystem(mqtt.EventStartup, "", true)

	for {
		select {
		case <-ctx.Done():
			reason := shutdownReason(ctx)
			logger.InfoKV("shutting down", "reason", reason)
			l.publishSystem(mqtt.EventShutdown, reason, true)
			l.deps.Alarm.StopSchedule()
			l.state.Schedule = logic.ScheduleNone
			return nil

		case <-tick:
			l.Tick(ctx)
		}
	}
}

// Tick runs one iteration of the state machine.
func (l *Loop) Tick(ctx context.Context) {
	now := l.now()
	s := l.state

	if s.Startup != logic.FlagSent {
		l.send(ctx, logic.NotifyStartup)
	}

	if l.deps.Link.Tick() {
		l.linkChanged(now)
	}

	sample := l.deps.Float.Sample()
	if s.IsEdge(sample, now) {
		l.transition(ctx, sample, now)
	} else if kind, ok := s.Outstanding(); ok {
		l.send(ctx, kind)
	}

	// The relay write is idempotent; repeating it recovers from a failed write.
	l.deps.Alarm.SetPowerCut(s.PowerCut())
	l.reconcile()
	s.Settle()

	l.refresh()
	if hb := s.CheckHeartbeat(now, l.cfg.Heartbeat); hb != nil {
		logger.InfoKV("heartbeat",
			"uptime", hb.Uptime,
			"overflows", hb.Counts.Overflows,
			"recoveries", hb.Counts.Recoveries,
			"sent", hb.Counts.NotificationsSent,
			"failed", hb.Counts.NotificationsFailed)
		l.publishSystem(mqtt.EventHeartbeat, "", false)
	}
}

// transition processes an edge. The relay and buzzer are switched before the
// notification attempt so a slow send never delays them.
func (l *Loop) transition(ctx context.Context, to logic.Level, now time.Time) {
	s := l.state
	event := s.Transition(to, now, l.cfg.RestartDelay)

	l.deps.Alarm.SetPowerCut(event.PowerCut)
	l.reconcile()

	logger.InfoKV("float transition", "level", to, "power_cut", event.PowerCut)
	l.deps.Metrics.Transition(to)
	if err := l.deps.Publisher.Publish(event); err != nil {
		logger.Warnf("publish error: %v", err)
	}

	if to == logic.LevelOverflow {
		l.send(ctx, logic.NotifyAlert)
		logger.InfoKV("edges inhibited", "until", s.InhibitUntil)
		return
	}
	l.send(ctx, logic.NotifyRecovery)
}

func (l *Loop) linkChanged(now time.Time) {
	s := l.state
	s.NetConnected = l.deps.Link.Connected()

	event := mqtt.EventNetworkRestored
	if !s.NetConnected {
		event = mqtt.EventNetworkLost
	}
	logger.InfoKV("network state changed", "event", event, "at", now)

	l.reconcile()
	l.publishSystem(event, "", false)
}

// reconcile brings the beep schedule in line with the level and link state.
func (l *Loop) reconcile() {
	s := l.state
	want := logic.DesiredSchedule(s.Current, s.NetConnected)
	if want == s.Schedule {
		return
	}

	switch want {
	case logic.ScheduleAlert:
		l.deps.Alarm.StartSchedule(logic.ScheduleAlert, l.cfg.AlarmFrequency)
	case logic.ScheduleNetworkLost:
		l.deps.Alarm.StartSchedule(logic.ScheduleNetworkLost, l.cfg.NetFrequency)
	default:
		l.deps.Alarm.StopSchedule()
	}
	s.Schedule = want
}

func (l *Loop) send(ctx context.Context, kind logic.Notification) {
	res := l.deps.Sender.Send(ctx, kind)
	sent := res == notify.Sent

	l.state.Record(kind, sent)
	l.deps.Metrics.Notification(kind, sent)
	logger.Debugf("notification %s: %s", kind, res)
}

// refresh copies the state into the tracker and metrics.
func (l *Loop) refresh() {
	l.deps.Metrics.Observe(l.state)

	if l.deps.Tracker == nil {
		return
	}
	l.deps.Tracker.Update(l.state)
	if rep, ok := l.deps.Alarm.(AlarmReporter); ok {
		l.deps.Tracker.SetAlarmFault(rep.PowerCut() != l.state.PowerCut() || rep.Schedule() != l.state.Schedule)
	}
	if l.deps.MQTT != nil {
		l.deps.Tracker.SetMQTTConnected(l.deps.MQTT.IsConnected())
	}
}

func (l *Loop) publishSystem(name, reason string, retained bool) {
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     name,
		Reason:    reason,
		Retained:  retained,
	}
	if l.deps.Tracker != nil {
		l.refresh()
		event.RawPayload = status.FormatStatusEvent(l.deps.Tracker.Snapshot(), name, reason)
	}

	if err := l.deps.Publisher.PublishSystem(event); err != nil {
		logger.Warnf("failed to publish %s event: %v", name, err)
		return
	}
	logger.Debugf("published %s event", name)
}

func shutdownReason(ctx context.Context) string {
	cause := context.Cause(ctx)
	if cause == nil || errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return ""
	}
	return cause.Error()
}
