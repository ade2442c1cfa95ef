package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/truck-scale/internal/status"
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
	"kg": func(v float64) string {
		return fmt.Sprintf("%.1f kg", v)
	},
	"tons": func(v float64) string {
		return fmt.Sprintf("%.2f t", v)
	},
	"orUnknown": func(s string) string {
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
<title>Truck Scale</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.weight { font-size: 2em; font-weight: bold; }
.loaded { color: green; font-weight: bold; }
.calibrating { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.errors { color: red; }
</style>
</head>
<body>
<h1>Truck Scale</h1>

<p id="current" class="weight">{{kg .CurrentWeight}}</p>

<h2>Totals</h2>
<table>
<tr><th>Loads</th><td id="loads">{{.Totals.LoadCount}}</td></tr>
<tr><th>Total</th><td id="total">{{tons .Totals.TotalTons}}</td></tr>
<tr><th>State</th><td id="state" class="{{if eq (printf "%s" .Detection) "LOADED"}}loaded{{end}}">{{orUnknown (printf "%s" .Detection)}}</td></tr>
</table>

<h2>Scale</h2>
<table>
<tr><th>Mode</th><td id="mode" class="{{if eq (printf "%s" .Mode) "CALIBRATING"}}calibrating{{end}}">{{orUnknown (printf "%s" .Mode)}}</td></tr>
{{if .Entry}}<tr><th>Entry</th><td id="entry">{{.Entry}}</td></tr>{{end}}
<tr><th>Calibration factor</th><td>{{printf "%.2f" .Factor}}</td></tr>
{{if .Notice}}<tr><th>Notice</th><td id="notice">{{.Notice}}</td></tr>{{end}}
<tr><th>Store errors</th><td{{if .StoreErrors}} class="errors"{{end}}>{{.StoreErrors}}</td></tr>
<tr><th>Sensor errors</th><td{{if .SensorErrors}} class="errors"{{end}}>{{.SensorErrors}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Noise gate</th><td>{{.Config.NoiseGate}} kg</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/loads.json">Loads</a> | <a href="/metrics">Metrics</a></p>
<script>
(function() {
  var current = document.getElementById("current");
  var loads = document.getElementById("loads");
  var total = document.getElementById("total");
  var state = document.getElementById("state");
  var mode = document.getElementById("mode");

  function refresh() {
    fetch("/index.json").then(function(r) { return r.json(); }).then(function(msg) {
      var s = msg.status;
      current.textContent = s.current_kg.toFixed(1) + " kg";
      loads.textContent = s.load_count;
      total.textContent = (s.total_kg / 1000).toFixed(2) + " t";
      state.textContent = s.state;
      state.className = s.state === "LOADED" ? "loaded" : "";
      mode.textContent = s.mode;
      mode.className = s.mode === "CALIBRATING" ? "calibrating" : "";
    }).catch(function() {});
  }
  setInterval(refresh, 2000);
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
