package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	State         string       `json:"state"`
	CurrentKg     float64      `json:"current_kg"`
	LoadCount     int          `json:"load_count"`
	TotalKg       float64      `json:"total_kg"`
	TotalTons     float64      `json:"total_tons"`
	Factor        float64      `json:"calibration_factor"`
	Entry         string       `json:"entry,omitempty"`
	Notice        string       `json:"notice,omitempty"`
	StoreErrors   int          `json:"store_errors"`
	SensorErrors  int          `json:"sensor_errors"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64   `json:"poll_ms"`
	DebounceMs  int64   `json:"debounce_ms"`
	HeartbeatMs int64   `json:"heartbeat_ms"`
	NoiseGate   float64 `json:"noise_gate_kg"`
	Broker      string  `json:"broker"`
	HTTPAddr    string  `json:"http_addr"`
}

// round1 rounds to one decimal, the display precision.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mode:          string(snap.Mode),
		State:         string(snap.Detection),
		CurrentKg:     round1(snap.CurrentWeight),
		LoadCount:     int(snap.Totals.LoadCount),
		TotalKg:       snap.Totals.TotalWeight,
		TotalTons:     round1(snap.Totals.TotalTons()),
		Factor:        snap.Factor,
		Entry:         snap.Entry,
		Notice:        snap.Notice,
		StoreErrors:   snap.StoreErrors,
		SensorErrors:  snap.SensorErrors,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			NoiseGate:   snap.Config.NoiseGate,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if inner.Mode == "" {
		inner.Mode = "UNKNOWN"
	}
	if inner.State == "" {
		inner.State = "UNKNOWN"
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
