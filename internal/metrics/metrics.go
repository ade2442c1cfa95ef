// Package metrics exposes scale state to Prometheus. Gauges are read from
// status snapshots at scrape time; event counters are incremented by the
// run loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/truck-scale/internal/logic"
	"github.com/sweeney/truck-scale/internal/status"
)

const namespace = "truck_scale"

// SnapshotSource provides status snapshots. *status.Tracker implements it.
type SnapshotSource interface {
	Snapshot() status.Snapshot
}

// Metrics owns a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
}

// New registers the snapshot collector and event counters.
func New(source SnapshotSource) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Scale events by type.",
			},
			[]string{"event"},
		),
	}
	m.registry.MustRegister(m.events, newCollector(source))
	return m
}

// ObserveEvent counts a published event.
func (m *Metrics) ObserveEvent(e logic.Event) {
	m.events.WithLabelValues(string(e.Type)).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type collector struct {
	source SnapshotSource

	currentWeight *prometheus.Desc
	loadCount     *prometheus.Desc
	totalWeight   *prometheus.Desc
	factor        *prometheus.Desc
	calibrating   *prometheus.Desc
	loaded        *prometheus.Desc
	storeErrors   *prometheus.Desc
	sensorErrors  *prometheus.Desc
	mqttConnected *prometheus.Desc
	uptime        *prometheus.Desc
}

func newCollector(source SnapshotSource) *collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &collector{
		source:        source,
		currentWeight: desc("current_weight_kg", "Most recent gated weight sample."),
		loadCount:     desc("load_count", "Completed load cycles since the last reset."),
		totalWeight:   desc("total_weight_kg", "Cumulative weight of completed loads since the last reset."),
		factor:        desc("calibration_factor", "Raw sensor units per kg."),
		calibrating:   desc("calibrating", "1 while calibration mode is active."),
		loaded:        desc("loaded", "1 while a load is on the scale."),
		storeErrors:   desc("store_errors", "Failed persistent store writes."),
		sensorErrors:  desc("sensor_errors", "Failed sensor or touch reads."),
		mqttConnected: desc("mqtt_connected", "1 while connected to the MQTT broker."),
		uptime:        desc("uptime_seconds", "Seconds since the daemon started."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.currentWeight
	ch <- c.loadCount
	ch <- c.totalWeight
	ch <- c.factor
	ch <- c.calibrating
	ch <- c.loaded
	ch <- c.storeErrors
	ch <- c.sensorErrors
	ch <- c.mqttConnected
	ch <- c.uptime
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Snapshot()
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}
	gauge(c.currentWeight, s.CurrentWeight)
	gauge(c.loadCount, float64(s.Totals.LoadCount))
	gauge(c.totalWeight, s.Totals.TotalWeight)
	gauge(c.factor, s.Factor)
	gauge(c.calibrating, boolFloat(s.Mode == logic.ModeCalibrating))
	gauge(c.loaded, boolFloat(s.Detection == logic.StateLoaded))
	counter(c.storeErrors, float64(s.StoreErrors))
	counter(c.sensorErrors, float64(s.SensorErrors))
	gauge(c.mqttConnected, boolFloat(s.MQTTConnected))
	gauge(c.uptime, s.Uptime().Seconds())
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
