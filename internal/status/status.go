// Package status provides a thread-safe status tracker for the truck-scale daemon.
// It is the rendering sink: the controller pushes views, HTTP handlers and
// metrics read snapshots. Nothing flows back into the controller.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/truck-scale/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	NoiseGate   float64
	Broker      string
	HTTPAddr    string
}

// View is what the controller knows after a tick.
type View struct {
	Mode          logic.Mode
	Detection     logic.DetectionState
	CurrentWeight float64
	LastWeight    float64
	Totals        logic.Totals
	Entry         string
	Factor        float64
	Notice        string
	StoreErrors   int
	SensorErrors  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	View
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			View:      View{Mode: logic.ModeNormal, Detection: logic.StateEmpty},
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update replaces the controller view. Called from runLoop on every tick.
func (t *Tracker) Update(v View) {
	t.mu.Lock()
	t.snap.View = v
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
