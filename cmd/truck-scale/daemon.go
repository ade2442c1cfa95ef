package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/host/v3"

	"github.com/sweeney/truck-scale/internal/config"
	"github.com/sweeney/truck-scale/internal/controller"
	"github.com/sweeney/truck-scale/internal/eeprom"
	"github.com/sweeney/truck-scale/internal/gpio"
	"github.com/sweeney/truck-scale/internal/journal"
	"github.com/sweeney/truck-scale/internal/loadcell"
	"github.com/sweeney/truck-scale/internal/logic"
	"github.com/sweeney/truck-scale/internal/metrics"
	"github.com/sweeney/truck-scale/internal/mqtt"
	"github.com/sweeney/truck-scale/internal/status"
	"github.com/sweeney/truck-scale/internal/touch"
	"github.com/sweeney/truck-scale/internal/web"
)

// journalTimeout bounds a single journal write so a slow disk cannot stall a tick.
const journalTimeout = 2 * time.Second

// Recorder persists events. *journal.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, e logic.Event) error
}

func runDaemon(cfg *config.Config) error {
	log := logrus.StandardLogger()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}

	dev, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()

	hx, err := loadcell.NewHX711(cfg.HX711Chip, cfg.HX711DataPin, cfg.HX711ClkPin, loadcell.GainA128, cfg.HX711Timeout)
	if err != nil {
		return fmt.Errorf("init hx711: %w", err)
	}
	scale := loadcell.NewScale(hx, logic.DefaultFactor, cfg.Samples)
	defer scale.Close()

	panel, err := touch.OpenTSC2007(cfg.I2CBus, cfg.TouchAddr, touch.DefaultBounds)
	if err != nil {
		return fmt.Errorf("init touch: %w", err)
	}
	defer panel.Close()

	var lamp *gpio.Lamp
	if cfg.Signal {
		sig, err := gpio.NewRealSignal(cfg.HX711Chip, cfg.SignalRedPin, cfg.SignalGreenPin)
		if err != nil {
			log.WithError(err).Warn("signal lamps unavailable")
		} else {
			defer sig.Close()
			lamp = gpio.NewLamp(sig)
		}
	}

	ctrl := controller.New(scale, panel, eeprom.NewStore(dev), controller.Config{
		NoiseGate:          cfg.NoiseGate,
		Debounce:           cfg.Debounce,
		PressureThreshold:  cfg.PressureThreshold,
		CalibrationSamples: cfg.CalibrationSamples,
		CalibrationTimeout: cfg.CalibrationTimeout,
	}, log)

	if cfg.TareOnStart {
		// Factor is applied by controller.New; the offset is not persisted.
		if err := scale.Tare(); err != nil {
			log.WithError(err).Warn("start-up tare failed")
		} else {
			log.WithField("offset", scale.Offset()).Info("tared at start-up")
		}
	}

	publisher := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID, log.WithField("component", "mqtt"))
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		NoiseGate:   cfg.NoiseGate,
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	})
	tracker.Update(ctrl.View())
	if net := config.ReadNetwork(); net != nil {
		tracker.SetNetwork(net)
	}

	var recorder Recorder
	var loads web.LoadLister
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			log.WithError(err).Warn("event journal unavailable")
		} else {
			defer j.Close()
			recorder, loads = j, j
		}
	}

	m := metrics.New(tracker)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.WithError(err).Warn("failed to publish startup event")
	} else {
		log.Info("published startup event")
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, loads, m.Handler(), log)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.HTTPAddr)
	}

	log.WithFields(logrus.Fields{
		"poll":      cfg.Poll,
		"debounce":  cfg.Debounce,
		"broker":    cfg.Broker,
		"heartbeat": cfg.Heartbeat,
		"store":     cfg.Store,
	}).Info("started")

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d := &daemon{
		ctrl:       ctrl,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		recorder:   recorder,
		metrics:    m,
		lamp:       lamp,
		heartbeat:  cfg.Heartbeat,
		log:        log,
	}
	return runLoop(d, time.Now, ticker.C, sigCh)
}

// daemon bundles what runLoop drives. recorder, metrics and lamp are optional.
type daemon struct {
	ctrl       *controller.Controller
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	recorder   Recorder
	metrics    *metrics.Metrics
	lamp       *gpio.Lamp
	heartbeat  time.Duration
	log        logrus.FieldLogger

	lampFailing bool
}

func runLoop(d *daemon, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(now())

	for {
		select {
		case s := <-sig:
			d.log.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			d.refreshTracker()
			snap := d.tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				d.log.WithError(err).Warn("failed to publish shutdown event")
			} else {
				d.log.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			for _, event := range d.ctrl.Tick(t) {
				d.dispatch(event)
			}

			view := d.ctrl.View()
			d.tracker.Update(view)
			if d.mqttStatus != nil {
				d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
			}
			d.updateLamp(view)

			if hbData := hb.Check(t, d.heartbeat, view.Totals); hbData != nil {
				d.log.WithFields(logrus.Fields{
					"uptime":     hbData.Uptime,
					"load_count": hbData.Totals.LoadCount,
					"total_kg":   hbData.Totals.TotalWeight,
				}).Info("heartbeat")

				// Refresh network info for heartbeat
				if net := config.ReadNetwork(); net != nil {
					d.tracker.SetNetwork(net)
				}
				snap := d.tracker.Snapshot()
				hbEvent := mqtt.SystemEvent{
					Timestamp:  hbData.Timestamp,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					d.log.WithError(err).Warn("heartbeat publish error")
				}
			}
		}
	}
}

// dispatch publishes, journals and counts one event. Failures are logged and
// never stop the loop.
func (d *daemon) dispatch(event logic.Event) {
	d.log.WithField("event", event.Type).Debug("dispatching event")
	if err := d.publisher.Publish(event); err != nil {
		d.log.WithError(err).WithField("event", event.Type).Warn("publish error")
	}
	if d.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		if err := d.recorder.Record(ctx, event); err != nil {
			d.log.WithError(err).WithField("event", event.Type).Warn("journal error")
		}
		cancel()
	}
	if d.metrics != nil {
		d.metrics.ObserveEvent(event)
	}
}

func (d *daemon) refreshTracker() {
	d.tracker.Update(d.ctrl.View())
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

func (d *daemon) updateLamp(v status.View) {
	if d.lamp == nil {
		return
	}
	err := d.lamp.Update(gpio.LightFor(v.Mode, v.Detection))
	switch {
	case err != nil && !d.lampFailing:
		d.lampFailing = true
		d.log.WithError(err).Warn("setting signal lamp")
	case err == nil && d.lampFailing:
		d.lampFailing = false
		d.log.Info("signal lamp recovered")
	}
}
