// Package metrics exposes Prometheus collectors for the float alarm.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/float-alarm/internal/logic"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	level         prometheus.Gauge
	powerCut      prometheus.Gauge
	wifiConnected prometheus.Gauge
	schedule      *prometheus.GaugeVec
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		level: f.NewGauge(prometheus.GaugeOpts{
			Name: "float_alarm_overflow",
			Help: "1 while the processed float level is OVERFLOW",
		}),
		powerCut: f.NewGauge(prometheus.GaugeOpts{
			Name: "float_alarm_power_cut",
			Help: "1 while the relay holds power off",
		}),
		wifiConnected: f.NewGauge(prometheus.GaugeOpts{
			Name: "float_alarm_wifi_connected",
			Help: "1 while the wireless link is up",
		}),
		schedule: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "float_alarm_beep_schedule",
			Help: "1 for the active buzzer schedule",
		}, []string{"kind"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "float_alarm_transitions_total",
			Help: "Processed float transitions",
		}, []string{"to"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "float_alarm_notifications_total",
			Help: "Notification attempts by kind and result",
		}, []string{"kind", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe copies the loop state into the gauges.
func (m *Metrics) Observe(s *logic.State) {
	if m == nil {
		return
	}
	m.level.Set(boolToFloat(s.Current == logic.LevelOverflow))
	m.powerCut.Set(boolToFloat(s.PowerCut()))
	m.wifiConnected.Set(boolToFloat(s.NetConnected))
	for _, k := range []logic.Schedule{logic.ScheduleNetworkLost, logic.ScheduleAlert} {
		m.schedule.WithLabelValues(string(k)).Set(boolToFloat(s.Schedule == k))
	}
}

// Transition counts a processed level change.
func (m *Metrics) Transition(to logic.Level) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}

// Notification counts a send attempt.
func (m *Metrics) Notification(kind logic.Notification, sent bool) {
	if m == nil {
		return
	}
	result := "failed"
	if sent {
		result = "sent"
	}
	m.notifications.WithLabelValues(string(kind), result).Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
