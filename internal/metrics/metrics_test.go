package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/float-alarm/internal/logic"
)

func TestObserve(t *testing.T) {
	m := New()
	s := logic.NewState(time.Now())
	s.Transition(logic.LevelOverflow, time.Now(), time.Second)
	s.NetConnected = true
	s.Schedule = logic.ScheduleAlert

	m.Observe(s)

	require.Equal(t, 1.0, testutil.ToFloat64(m.level))
	require.Equal(t, 1.0, testutil.ToFloat64(m.powerCut))
	require.Equal(t, 1.0, testutil.ToFloat64(m.wifiConnected))
	require.Equal(t, 1.0, testutil.ToFloat64(m.schedule.WithLabelValues("ALERT")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.schedule.WithLabelValues("NETWORK_LOST")))
}

func TestCounters(t *testing.T) {
	m := New()
	m.Transition(logic.LevelOverflow)
	m.Transition(logic.LevelOverflow)
	m.Notification(logic.NotifyAlert, false)
	m.Notification(logic.NotifyAlert, true)

	require.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("OVERFLOW")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("ALERT", "failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("ALERT", "sent")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Observe(logic.NewState(time.Now()))
		m.Transition(logic.LevelSafe)
		m.Notification(logic.NotifyStartup, true)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Transition(logic.LevelSafe)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	require.True(t, strings.Contains(string(body), `float_alarm_transitions_total{to="SAFE"} 1`), string(body))
}
