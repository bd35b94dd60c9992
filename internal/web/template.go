package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/float-alarm/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"levelOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>{{.Config.DeviceName}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.safe { color: green; font-weight: bold; }
.overflow { color: red; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>{{.Config.DeviceName}}</h1>

<h2>Level</h2>
<table>
<tr><th>Float</th><td id="level" class="{{if eq (levelOrUnknown (printf "%s" .Level)) "SAFE"}}safe{{else if eq (levelOrUnknown (printf "%s" .Level)) "OVERFLOW"}}overflow{{else}}unknown{{end}}">{{levelOrUnknown (printf "%s" .Level)}}</td></tr>
<tr><th>Power</th><td>{{if .PowerCut}}cut{{else}}on{{end}}</td></tr>
<tr><th>Buzzer</th><td>{{.Schedule}}</td></tr>
{{if .AlarmFault}}<tr><th>Outputs</th><td class="disconnected">not in commanded state</td></tr>{{end}}
<tr><th>Inhibited</th><td>{{if .Inhibited}}until {{.InhibitUntil.UTC.Format "2006-01-02T15:04:05Z"}}{{else}}no{{end}}</td></tr>
</table>

<h2>Notifications</h2>
<table>
<tr><th>Startup</th><td>{{.Notifications.Startup}}</td></tr>
<tr><th>Alert</th><td>{{.Notifications.Alert}}</td></tr>
<tr><th>Recovery</th><td>{{.Notifications.Recovery}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>WiFi</th><td class="{{if .WiFiConnected}}connected{{else}}disconnected{{end}}">{{if .WiFiConnected}}connected{{else}}disconnected{{end}} ({{.Config.SSID}})</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Overflows</th><td>{{.Counts.Overflows}}</td></tr>
<tr><th>Recoveries</th><td>{{.Counts.Recoveries}}</td></tr>
<tr><th>Sent</th><td>{{.Counts.NotificationsSent}}</td></tr>
<tr><th>Failed</th><td>{{.Counts.NotificationsFailed}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Beep</th><td>{{.Config.BeepMs}}ms</td></tr>
<tr><th>Alarm every</th><td>{{.Config.AlarmFrequencyMs}}ms</td></tr>
<tr><th>Network lost every</th><td>{{.Config.NetFrequencyMs}}ms</td></tr>
<tr><th>Restart delay</th><td>{{.Config.RestartDelayMs}}ms</td></tr>
<tr><th>Reconnect interval</th><td>{{.Config.ReconnectInterval}} ticks</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and Inhibited() methods but the template needs fields.
	data := struct {
		status.Snapshot
		Uptime    time.Duration
		Inhibited bool
	}{
		Snapshot:  snap,
		Uptime:    snap.Uptime(),
		Inhibited: snap.Inhibited(),
	}
	indexTmpl.Execute(w, data)
}
