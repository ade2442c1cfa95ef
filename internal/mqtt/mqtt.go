// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/truck-scale/internal/logic"
)

// Topic is the MQTT topic for load and operator events.
const Topic = "scale/truck/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "scale/truck/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a scale event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Scale ScalePayload `json:"scale"`
}

// ScalePayload contains the event details.
type ScalePayload struct {
	Timestamp string  `json:"timestamp"`
	Event     string  `json:"event"`
	WeightKg  float64 `json:"weight_kg,omitempty"`
	LoadCount int     `json:"load_count"`
	TotalKg   float64 `json:"total_kg"`
	Factor    float64 `json:"calibration_factor,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatPayload creates the JSON payload for a scale event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Scale: ScalePayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			WeightKg:  finite(event.Weight),
			LoadCount: int(event.Totals.LoadCount),
			TotalKg:   finite(event.Totals.TotalWeight),
			Factor:    finite(event.Factor),
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
