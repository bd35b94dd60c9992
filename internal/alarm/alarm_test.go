package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sweeney/float-alarm/internal/gpio"
	"github.com/sweeney/float-alarm/internal/logic"
)

func newTestController(t *testing.T) (*Controller, *gpio.FakeOutput, *gpio.FakeOutput) {
	t.Helper()
	buzzer := gpio.NewFakeOutput(0)
	power := gpio.NewFakeOutput(1)
	c := New(buzzer, power, time.Millisecond)
	t.Cleanup(c.Close)
	return c, buzzer, power
}

func TestSetPowerCut(t *testing.T) {
	c, _, power := newTestController(t)

	c.SetPowerCut(true)
	require.Equal(t, 0, power.Value(), "power cut drives relay low")
	require.True(t, c.PowerCut())

	c.SetPowerCut(false)
	require.Equal(t, 1, power.Value(), "power restored drives relay high")
	require.False(t, c.PowerCut())
}

func TestSetPowerCutIdempotent(t *testing.T) {
	c, _, power := newTestController(t)

	c.SetPowerCut(false)
	c.SetPowerCut(false)
	c.SetPowerCut(true)
	c.SetPowerCut(true)

	require.Equal(t, []int{1, 0}, power.Writes())
}

func TestStartSchedulePulses(t *testing.T) {
	c, buzzer, _ := newTestController(t)

	c.StartSchedule(logic.ScheduleAlert, 5*time.Millisecond)
	require.Equal(t, logic.ScheduleAlert, c.Schedule())

	require.Eventually(t, func() bool { return buzzer.Highs() >= 3 }, time.Second, time.Millisecond)

	c.StopSchedule()
	require.Equal(t, logic.ScheduleNone, c.Schedule())
	require.Equal(t, 0, buzzer.Value(), "buzzer left low after stop")

	highs := buzzer.Highs()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, highs, buzzer.Highs(), "no pulses after stop")
}

func TestStartScheduleReplaces(t *testing.T) {
	c, _, _ := newTestController(t)

	c.StartSchedule(logic.ScheduleNetworkLost, time.Hour)
	require.Equal(t, logic.ScheduleNetworkLost, c.Schedule())

	c.StartSchedule(logic.ScheduleAlert, time.Hour)
	require.Equal(t, logic.ScheduleAlert, c.Schedule())
}

func TestStopScheduleNoop(t *testing.T) {
	c, buzzer, _ := newTestController(t)

	c.StopSchedule()
	c.StopSchedule()
	require.Equal(t, logic.ScheduleNone, c.Schedule())
	require.Empty(t, buzzer.Writes())
}

func TestStopCutsLongPulseShort(t *testing.T) {
	buzzer := gpio.NewFakeOutput(0)
	c := New(buzzer, gpio.NewFakeOutput(1), time.Hour)

	c.StartSchedule(logic.ScheduleAlert, time.Millisecond)
	require.Eventually(t, func() bool { return buzzer.Value() == 1 }, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		c.StopSchedule()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("StopSchedule blocked on a running pulse")
	}
	require.Equal(t, 0, buzzer.Value())
}

func TestPulseOnce(t *testing.T) {
	c, buzzer, _ := newTestController(t)

	c.PulseOnce(time.Millisecond)
	require.Equal(t, []int{1, 0}, buzzer.Writes())
}
