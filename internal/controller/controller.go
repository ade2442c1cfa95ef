// Package controller runs one scale tick: it routes the tick to calibration
// or to load detection plus button dispatch, executes operator actions,
// persists on Store/Reset, and produces events for publishing.
//
// A Controller is single-owner. Only the run loop goroutine may call Tick;
// other goroutines observe state through the status.Tracker.
package controller

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/truck-scale/internal/eeprom"
	"github.com/sweeney/truck-scale/internal/loadcell"
	"github.com/sweeney/truck-scale/internal/logic"
	"github.com/sweeney/truck-scale/internal/status"
	"github.com/sweeney/truck-scale/internal/touch"
)

// Operator notices shown on the display.
const (
	NoticeStored        = "Stored"
	NoticeStoreFailed   = "Store failed"
	NoticeReset         = "Totals reset"
	NoticeTared         = "Tared"
	NoticeTareFailed    = "Tare failed"
	NoticeEnterWeight   = "Enter known weight"
	NoticeCalibrated    = "Calibrated"
	NoticeInvalidWeight = "Invalid weight"
	NoticeInvalidRaw    = "Sensor reading invalid"
	NoticeTimedOut      = "Calibration timed out"
)

// errorLogInterval rate limits repeated sensor and touch read errors.
const errorLogInterval = 5 * time.Second

// Config holds controller tunables. Zero values select defaults.
type Config struct {
	NoiseGate          float64
	Debounce           time.Duration
	PressureThreshold  int
	CalibrationSamples int
	CalibrationTimeout time.Duration
	Layout             *logic.Layout
}

// Controller owns the accumulator, the detector and the calibrator.
type Controller struct {
	sensor loadcell.Sensor
	panel  touch.Panel
	store  *eeprom.Store
	log    logrus.FieldLogger

	totals     logic.Totals
	detector   *logic.Detector
	calibrator *logic.Calibrator
	layout     logic.Layout
	debouncer  *logic.Debouncer

	pressure    int
	calSamples  int
	calTimeout  time.Duration
	notice      string
	storeErrors int
	sensorErrs  int

	lastSensorLog time.Time
	lastTouchLog  time.Time
}

// New creates a controller and restores totals and the calibration factor
// from the store. Invalid stored values fall back to defaults; a store read
// error is logged and also falls back.
func New(sensor loadcell.Sensor, panel touch.Panel, store *eeprom.Store, cfg Config, log logrus.FieldLogger) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	if cfg.PressureThreshold <= 0 {
		cfg.PressureThreshold = touch.DefaultPressureThreshold
	}
	if cfg.CalibrationSamples <= 0 {
		cfg.CalibrationSamples = logic.DefaultCalibrationSamples
	}
	layout := logic.DefaultLayout()
	if cfg.Layout != nil {
		layout = *cfg.Layout
	}
	log = log.WithField("component", "controller")

	totals, ok, err := store.LoadTotals()
	switch {
	case err != nil:
		log.WithError(err).Warn("reading stored totals, starting from zero")
		totals = logic.Totals{}
	case !ok:
		log.Warn("stored totals invalid, starting from zero")
	}

	factor, ok, err := store.LoadFactor()
	switch {
	case err != nil:
		log.WithError(err).Warnf("reading stored calibration factor, using default %v", logic.DefaultFactor)
	case !ok:
		log.Warnf("stored calibration factor invalid, using default %v", logic.DefaultFactor)
	}

	c := &Controller{
		sensor:     sensor,
		panel:      panel,
		store:      store,
		log:        log,
		totals:     totals,
		detector:   logic.NewDetector(cfg.NoiseGate),
		calibrator: logic.NewCalibrator(factor),
		layout:     layout,
		debouncer:  logic.NewDebouncer(cfg.Debounce),
		pressure:   cfg.PressureThreshold,
		calSamples: cfg.CalibrationSamples,
		calTimeout: cfg.CalibrationTimeout,
	}
	sensor.SetFactor(c.calibrator.Factor())
	log.WithFields(logrus.Fields{
		"load_count": totals.LoadCount,
		"total_kg":   totals.TotalWeight,
		"factor":     c.calibrator.Factor(),
	}).Info("restored state")
	return c
}

// Totals returns the accumulator.
func (c *Controller) Totals() logic.Totals {
	return c.totals
}

// Mode returns the current operating mode.
func (c *Controller) Mode() logic.Mode {
	if c.calibrator.Active() {
		return logic.ModeCalibrating
	}
	return logic.ModeNormal
}

// Tick runs one cooperative step and returns the events it produced.
func (c *Controller) Tick(now time.Time) []logic.Event {
	if c.calibrator.Active() {
		return c.calibrationTick(now)
	}
	return c.normalTick(now)
}

func (c *Controller) normalTick(now time.Time) []logic.Event {
	var events []logic.Event

	w, err := c.sensor.Sample()
	if err != nil {
		c.sensorErrs++
		c.rateLimited(&c.lastSensorLog, now, err, "reading load cell")
	} else if credited, done := c.detector.Process(&c.totals, w); done {
		c.log.WithFields(logrus.Fields{
			"weight_kg":  credited,
			"load_count": c.totals.LoadCount,
			"total_kg":   c.totals.TotalWeight,
		}).Info("load completed")
		events = append(events, c.event(now, logic.EventLoadCompleted, credited))
	}

	switch a := c.poll(now); a {
	case logic.ActionTare:
		events = append(events, c.tare(now)...)
	case logic.ActionStore:
		events = append(events, c.storeTotals(now)...)
	case logic.ActionReset:
		events = append(events, c.reset(now)...)
	case logic.ActionCalibrate:
		c.calibrator.Enter(now)
		c.notice = NoticeEnterWeight
		c.log.Info("calibration started")
		events = append(events, c.event(now, logic.EventCalibrationStarted, 0))
	}
	return events
}

func (c *Controller) calibrationTick(now time.Time) []logic.Event {
	if c.calibrator.Expired(now, c.calTimeout) {
		c.calibrator.Abandon()
		c.notice = NoticeTimedOut
		c.log.Warn("calibration abandoned after idle timeout")
		return []logic.Event{c.event(now, logic.EventCalibrationAbandon, 0)}
	}

	a := c.poll(now)
	if a == logic.ActionNone {
		return nil
	}
	if a != logic.ActionEnter {
		c.notice = ""
	}
	if !c.calibrator.Key(a, now) {
		return nil
	}
	return c.commit(now)
}

func (c *Controller) commit(now time.Time) []logic.Event {
	// An unusable known weight is rejected by Commit without sampling.
	var raw float64
	known, err := c.calibrator.KnownWeight()
	if err == nil {
		raw, err = c.sensor.AverageRaw(c.calSamples)
		if err != nil {
			c.sensorErrs++
			c.log.WithError(err).Error("reading raw average for calibration")
			raw = 0
		}
	}

	factor, err := c.calibrator.Commit(raw)
	if err != nil {
		e := c.event(now, logic.EventCalibrationRejected, known)
		e.Reason = err.Error()
		if errors.Is(err, logic.ErrInvalidCalibrationInput) {
			c.notice = NoticeInvalidWeight
		} else {
			c.notice = NoticeInvalidRaw
		}
		c.log.WithError(err).WithField("raw", raw).Warn("calibration rejected")
		return []logic.Event{e}
	}

	c.sensor.SetFactor(factor)
	c.notice = NoticeCalibrated
	if err := c.store.SaveFactor(factor); err != nil {
		c.storeErrors++
		c.notice = NoticeStoreFailed
		c.log.WithError(err).Error("persisting calibration factor")
	}
	c.log.WithFields(logrus.Fields{"known_kg": known, "raw": raw, "factor": factor}).Info("calibrated")
	return []logic.Event{c.event(now, logic.EventCalibrated, known)}
}

func (c *Controller) tare(now time.Time) []logic.Event {
	if err := c.sensor.Tare(); err != nil {
		c.sensorErrs++
		c.notice = NoticeTareFailed
		c.log.WithError(err).Error("taring load cell")
		return nil
	}
	c.detector.Tare()
	c.notice = NoticeTared
	c.log.Info("tared")
	return []logic.Event{c.event(now, logic.EventTare, 0)}
}

func (c *Controller) storeTotals(now time.Time) []logic.Event {
	if err := c.store.SaveTotals(c.totals); err != nil {
		c.storeErrors++
		c.notice = NoticeStoreFailed
		c.log.WithError(err).Error("persisting totals")
		return nil
	}
	c.notice = NoticeStored
	c.log.WithFields(logrus.Fields{
		"load_count": c.totals.LoadCount,
		"total_kg":   c.totals.TotalWeight,
	}).Info("totals stored")
	return []logic.Event{c.event(now, logic.EventStored, 0)}
}

func (c *Controller) reset(now time.Time) []logic.Event {
	c.totals.Reset()
	c.detector.Reset()
	if err := c.store.SaveTotals(c.totals); err != nil {
		c.storeErrors++
		c.notice = NoticeStoreFailed
		c.log.WithError(err).Error("persisting reset totals")
		return nil
	}
	c.notice = NoticeReset
	c.log.Info("totals reset")
	return []logic.Event{c.event(now, logic.EventReset, 0)}
}

// poll reads at most one touch point and maps it to an action, honoring
// the pressure threshold and the debounce interval.
func (c *Controller) poll(now time.Time) logic.Action {
	p, touched, err := c.panel.Poll()
	if err != nil {
		c.sensorErrs++
		c.rateLimited(&c.lastTouchLog, now, err, "polling touch panel")
		return logic.ActionNone
	}
	if !touched || !p.Actionable(c.pressure) {
		return logic.ActionNone
	}
	if !c.debouncer.Ready(now) {
		return logic.ActionNone
	}
	a := c.layout.Dispatch(p.Screen(), c.Mode())
	if a != logic.ActionNone {
		c.debouncer.Mark(now)
		c.log.WithField("action", string(a)).Debug("touch")
	}
	return a
}

func (c *Controller) rateLimited(last *time.Time, now time.Time, err error, msg string) {
	if !last.IsZero() && now.Sub(*last) < errorLogInterval {
		return
	}
	*last = now
	c.log.WithError(err).Error(msg)
}

func (c *Controller) event(now time.Time, t logic.EventType, weight float64) logic.Event {
	return logic.Event{
		Timestamp: now,
		Type:      t,
		Weight:    weight,
		Totals:    c.totals,
		Factor:    c.calibrator.Factor(),
	}
}

// View returns the state to render.
func (c *Controller) View() status.View {
	return status.View{
		Mode:          c.Mode(),
		Detection:     c.detector.State(),
		CurrentWeight: c.detector.Current(),
		LastWeight:    c.detector.LastWeight(),
		Totals:        c.totals,
		Entry:         c.calibrator.Entry(),
		Factor:        c.calibrator.Factor(),
		Notice:        c.notice,
		StoreErrors:   c.storeErrors,
		SensorErrors:  c.sensorErrs,
	}
}
