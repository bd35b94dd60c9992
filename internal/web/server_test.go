package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/float-alarm/internal/logic"
	"github.com/sweeney/float-alarm/internal/metrics"
	"github.com/sweeney/float-alarm/internal/status"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, *metrics.Metrics) {
	t.Helper()
	cfg := status.Config{
		DeviceName:  "Sump Pit",
		SSID:        "tank-net",
		TickMs:      1000,
		BeepMs:      500,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	m := metrics.New()
	srv := New(":0", tr, m.Handler())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr, m
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	s := logic.NewState(start)
	s.Transition(logic.LevelOverflow, start, 30*time.Second)
	s.Schedule = logic.ScheduleAlert
	s.NetConnected = true
	tr.Update(s)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Level != "OVERFLOW" {
		t.Errorf("Level: got %q, want OVERFLOW", sj.Status.Level)
	}
	if !sj.Status.PowerCut {
		t.Error("expected PowerCut=true")
	}
	if sj.Status.Schedule != "ALERT" {
		t.Errorf("Schedule: got %q, want ALERT", sj.Status.Schedule)
	}
	if !sj.Status.WiFi.Connected || sj.Status.WiFi.SSID != "tank-net" {
		t.Errorf("WiFi: got %+v", sj.Status.WiFi)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.Overflows != 1 {
		t.Errorf("Counts.Overflows: got %d, want 1", sj.Status.Counts.Overflows)
	}
	if sj.Status.Config.TickMs != 1000 {
		t.Errorf("Config.TickMs: got %d, want 1000", sj.Status.Config.TickMs)
	}
}

func TestJSONInitialState(t *testing.T) {
	ts, _, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Level != "SAFE" {
		t.Errorf("Level: got %q, want SAFE", sj.Status.Level)
	}
	if sj.Status.PowerCut {
		t.Error("expected PowerCut=false initially")
	}
	if sj.Status.Notifications.Startup != "NOT_ATTEMPTED" {
		t.Errorf("Notifications.Startup: got %q", sj.Status.Notifications.Startup)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	s := logic.NewState(start)
	s.Transition(logic.LevelOverflow, start, time.Second)
	tr.Update(s)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	if !strings.Contains(html, "Sump Pit") {
		t.Error("expected device name in page")
	}
	if !strings.Contains(html, `class="overflow">OVERFLOW`) {
		t.Error("expected OVERFLOW level in page")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, m := newTestServer(t)

	s := logic.NewState(start)
	s.Transition(logic.LevelOverflow, start, time.Second)
	m.Observe(s)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "float_alarm_overflow 1") {
		t.Errorf("expected float_alarm_overflow 1 in:\n%s", body)
	}
}

func TestMetricsUnroutedWithoutHandler(t *testing.T) {
	tr := status.NewTracker(start, status.Config{})
	ts := httptest.NewServer(New(":0", tr, nil).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.MQTT.Connected {
		t.Error("expected MQTT disconnected initially")
	}

	s := logic.NewState(start)
	s.Transition(logic.LevelOverflow, start, time.Second)
	s.Transition(logic.LevelSafe, start.Add(2*time.Second), time.Second)
	s.Record(logic.NotifyRecovery, true)
	tr.Update(s)
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.Level != "SAFE" {
		t.Errorf("Level: got %q, want SAFE", sj2.Status.Level)
	}
	if sj2.Status.Counts.Recoveries != 1 {
		t.Errorf("Counts.Recoveries: got %d, want 1", sj2.Status.Counts.Recoveries)
	}
	if sj2.Status.Notifications.Recovery != "SENT" {
		t.Errorf("Notifications.Recovery: got %q", sj2.Status.Notifications.Recovery)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
