// Package logic contains pure business logic for truck scale load tracking.
// This package has NO external dependencies (no GPIO, I2C, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"math"
	"time"
)

// Mode is the operating mode of the scale. Exactly one mode is active per tick.
type Mode string

const (
	ModeNormal      Mode = "NORMAL"
	ModeCalibrating Mode = "CALIBRATING"
)

// EventType identifies something worth publishing.
type EventType string

const (
	EventLoadCompleted       EventType = "LOAD_COMPLETED"
	EventTare                EventType = "TARE"
	EventStored              EventType = "STORED"
	EventReset               EventType = "RESET"
	EventCalibrationStarted  EventType = "CALIBRATION_STARTED"
	EventCalibrated          EventType = "CALIBRATED"
	EventCalibrationRejected EventType = "CALIBRATION_REJECTED"
	EventCalibrationAbandon  EventType = "CALIBRATION_ABANDONED"
)

// Event is a state change to be published and journaled.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Weight is the credited load for LOAD_COMPLETED, the known weight for
	// calibration events, zero otherwise.
	Weight float64
	Totals Totals
	Factor float64
	Reason string
}

// MaxLoadCount is the largest count the persisted layout can hold.
// 0xFFFF is reserved: it is what an erased counter cell reads back as.
const MaxLoadCount = math.MaxUint16 - 1

// Totals is the accumulator: number of completed load cycles and their
// cumulative weight in kg. Both fields only grow, except through Reset.
type Totals struct {
	LoadCount   uint16
	TotalWeight float64
}

// Credit records one completed load cycle of the given weight.
// The count saturates at MaxLoadCount instead of wrapping.
func (t *Totals) Credit(weight float64) {
	if t.LoadCount < MaxLoadCount {
		t.LoadCount++
	}
	t.TotalWeight += weight
}

// Reset zeroes both fields in a single assignment.
func (t *Totals) Reset() {
	*t = Totals{}
}

// TotalTons returns the cumulative weight in metric tons.
func (t Totals) TotalTons() float64 {
	return t.TotalWeight / 1000
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Totals    Totals
}
