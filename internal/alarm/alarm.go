// Package alarm drives the buzzer and the power-cut relay.
//
// At most one periodic beep schedule runs at a time. Each schedule owns a
// goroutine that only ever touches the buzzer output, and every buzzer write
// is a single Output.Set call, so the schedule can fire while the main loop
// is blocked in a notification send.
package alarm

import (
	"context"
	"time"

	"github.com/sweeney/float-alarm/internal/gpio"
	"github.com/sweeney/float-alarm/internal/logger"
	"github.com/sweeney/float-alarm/internal/logic"
)

// Controller owns the buzzer and power-cut outputs.
// All methods except the schedule goroutine are called from the main loop.
type Controller struct {
	buzzer gpio.Output
	power  gpio.Output
	beep   time.Duration

	powerCut   bool
	powerKnown bool

	kind   logic.Schedule
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Controller. beep is the length of each buzzer pulse.
func New(buzzer, power gpio.Output, beep time.Duration) *Controller {
	return &Controller{
		buzzer: buzzer,
		power:  power,
		beep:   beep,
		kind:   logic.ScheduleNone,
	}
}

// SetPowerCut switches power to the protected device off (true) or on (false).
// The relay is active-high, so cutting power drives the line low.
// Repeated calls with the same value do not touch the line.
func (c *Controller) SetPowerCut(active bool) {
	if c.powerKnown && c.powerCut == active {
		return
	}

	value := 1
	if active {
		value = 0
	}
	if err := c.power.Set(value); err != nil {
		logger.Errorf("power relay write failed: %v", err)
		return
	}

	c.powerCut = active
	c.powerKnown = true
	logger.InfoKV("power relay", "power_cut", active)
}

// PowerCut reports the last state written to the relay.
func (c *Controller) PowerCut() bool {
	return c.powerCut
}

// StartSchedule replaces any running schedule with periodic pulses every period.
func (c *Controller) StartSchedule(kind logic.Schedule, period time.Duration) {
	c.StopSchedule()
	if kind == logic.ScheduleNone || period <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.kind = kind
	c.cancel = cancel
	c.done = done

	go c.run(ctx, period, done)
	logger.InfoKV("beep schedule started", "kind", kind, "period", period)
}

// StopSchedule cancels the running schedule, if any, and waits for its
// goroutine to leave the buzzer low.
func (c *Controller) StopSchedule() {
	if c.cancel == nil {
		return
	}

	c.cancel()
	<-c.done
	logger.InfoKV("beep schedule stopped", "kind", c.kind)

	c.kind = logic.ScheduleNone
	c.cancel = nil
	c.done = nil
}

// Schedule returns the running schedule kind.
func (c *Controller) Schedule() logic.Schedule {
	return c.kind
}

// PulseOnce sounds the buzzer for duration and blocks until it is silent again.
func (c *Controller) PulseOnce(duration time.Duration) {
	c.pulse(context.Background(), duration)
}

// Close stops any schedule and silences the buzzer. The relay keeps its state.
func (c *Controller) Close() {
	c.StopSchedule()
	if err := c.buzzer.Set(0); err != nil {
		logger.Errorf("buzzer write failed: %v", err)
	}
}

func (c *Controller) run(ctx context.Context, period time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pulse(ctx, c.beep)
		}
	}
}

// pulse drives the buzzer high for duration. Cancelling ctx cuts it short.
func (c *Controller) pulse(ctx context.Context, duration time.Duration) {
	if err := c.buzzer.Set(1); err != nil {
		logger.Errorf("buzzer write failed: %v", err)
		return
	}

	timer := time.NewTimer(duration)
	select {
	case <-ctx.Done():
		timer.Stop()
	case <-timer.C:
	}

	if err := c.buzzer.Set(0); err != nil {
		logger.Errorf("buzzer write failed: %v", err)
	}
}
