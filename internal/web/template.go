package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/lamp-controller/internal/status"
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
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Lamp {{.Config.LampID}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: purple; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Lamp {{.Config.LampID}}</h1>

<h2>Lamp</h2>
<table>
<tr><th>Status</th><td id="lamp-status" class="{{if eq (printf "%s" .Lamp.Status) "ON"}}on{{else}}off{{end}}">{{.Lamp.Status}}</td></tr>
<tr><th>Mode</th><td id="lamp-mode">{{.Lamp.Mode}}</td></tr>
<tr><th>Light</th><td>{{.Light}}{{if and .Lamp.LightRaw (ne .Light .Lamp.LightRaw)}} ({{.Lamp.LightRaw}}){{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>WiFi (peer)</th><td class="{{if eq (printf "%s" .Lamp.Phase) "CONNECTED"}}connected{{else}}disconnected{{end}}">{{.Lamp.Phase}}</td></tr>
<tr><th>Indicator</th><td>{{onOff .Indicator}}</td></tr>
{{if .Lamp.PeerMQTT}}<tr><th>Peer MQTT</th><td>{{.Lamp.PeerMQTT}}</td></tr>{{end}}
<tr><th>MQTT mirror</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .Config.Broker}}{{if .MQTTConnected}}connected{{else}}disconnected{{end}}{{else}}disabled{{end}}</td></tr>
{{if .Config.Broker}}<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Commands</th><td>{{.Counts.Commands}}</td></tr>
<tr><th>Unrecognized</th><td>{{.Counts.Unrecognized}}</td></tr>
<tr><th>Status sent</th><td>{{.Counts.Emissions}}</td></tr>
<tr><th>Auto ON</th><td>{{.Counts.AutoOn}}</td></tr>
<tr><th>Auto OFF</th><td>{{.Counts.AutoOff}}</td></tr>
<tr><th>Line overflows</th><td>{{.LineOverflows}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Serial</th><td>{{.Config.Port}} @ {{.Config.Baud}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Blink</th><td>{{.Config.BlinkMs}}ms</td></tr>
<tr><th>Max line</th><td>{{if eq .Config.MaxLine 0}}unbounded{{else}}{{.Config.MaxLine}} bytes{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has methods but the template needs plain fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Light  string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Light:    status.LightString(snap),
	}
	return indexTmpl.Execute(w, data)
}
