// Command truck-scale counts and weighs truck loads, persists the running
// totals, and publishes load events to MQTT.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/truck-scale/internal/config"
	"github.com/sweeney/truck-scale/internal/eeprom"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	if err := NewCommand(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return nil
}

// NewCommand builds the root command. Flag defaults come from cfg, which
// has already been populated from the environment.
func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "truck-scale",
		Short: "truck-scale counts and weighs truck loads",
		Long: `truck-scale samples a load cell, counts completed load cycles and their
cumulative weight, persists the totals to EEPROM on Store/Reset, and publishes
events to MQTT. Operators use the touch panel to Tare, Store, Reset and Calibrate.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := setupLogger(cfg.LogLevel); err != nil {
				return err
			}
			return cfg.Validate()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDaemon(cfg)
		},
	}

	global := cmd.PersistentFlags()
	global.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	global.StringVar(&cfg.Store, "store", cfg.Store, "persistent store backend (file or at24)")
	global.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "EEPROM image path for the file store")
	global.StringVar(&cfg.I2CBus, "i2c-bus", cfg.I2CBus, "I2C bus name (empty selects the first bus)")
	global.Uint16Var(&cfg.EEPROMAddr, "eeprom-addr", cfg.EEPROMAddr, "I2C address of the AT24 EEPROM")
	global.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "SQLite event journal path (empty to disable)")

	flags := cmd.Flags()
	flags.DurationVar(&cfg.Poll, "poll", cfg.Poll, "tick interval")
	flags.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "minimum interval between touch actions")
	flags.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "heartbeat interval (0 to disable)")
	flags.Float64Var(&cfg.NoiseGate, "noise-gate", cfg.NoiseGate, "readings with smaller magnitude (kg) count as zero")
	flags.StringVar(&cfg.Broker, "broker", cfg.Broker, "MQTT broker address")
	flags.StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "MQTT client ID")
	flags.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	flags.StringVar(&cfg.HX711Chip, "gpio-chip", cfg.HX711Chip, "GPIO chip for the HX711 and signal lamps")
	flags.IntVar(&cfg.HX711DataPin, "hx711-dout", cfg.HX711DataPin, "BCM pin for HX711 DOUT")
	flags.IntVar(&cfg.HX711ClkPin, "hx711-sck", cfg.HX711ClkPin, "BCM pin for HX711 PD_SCK")
	flags.DurationVar(&cfg.HX711Timeout, "hx711-timeout", cfg.HX711Timeout, "how long to wait for an HX711 conversion")
	flags.IntVar(&cfg.Samples, "samples", cfg.Samples, "conversions averaged per weight sample")
	flags.BoolVar(&cfg.TareOnStart, "tare-on-start", cfg.TareOnStart, "zero the scale at start-up")
	flags.BoolVar(&cfg.Signal, "signal", cfg.Signal, "drive the red/green signal lamps")
	flags.IntVar(&cfg.SignalRedPin, "signal-red", cfg.SignalRedPin, "BCM pin for the red lamp")
	flags.IntVar(&cfg.SignalGreenPin, "signal-green", cfg.SignalGreenPin, "BCM pin for the green lamp")
	flags.Uint16Var(&cfg.TouchAddr, "touch-addr", cfg.TouchAddr, "I2C address of the TSC2007 touch controller")
	flags.IntVar(&cfg.PressureThreshold, "pressure-threshold", cfg.PressureThreshold, "minimum touch pressure")
	flags.IntVar(&cfg.CalibrationSamples, "calibration-samples", cfg.CalibrationSamples, "raw readings averaged when calibrating")
	flags.DurationVar(&cfg.CalibrationTimeout, "calibration-timeout", cfg.CalibrationTimeout, "abandon an idle calibration after this long (0 to disable)")

	cmd.AddCommand(
		NewPrintStateCommand(cfg),
		NewResetCommand(cfg),
	)

	return cmd
}

// openStore opens the configured persistent store device. periph host
// drivers must be initialized for the at24 backend.
func openStore(cfg *config.Config) (eeprom.Device, error) {
	switch strings.ToLower(cfg.Store) {
	case config.StoreAT24:
		dev, err := eeprom.OpenAT24(cfg.I2CBus, cfg.EEPROMAddr, eeprom.DefaultAT24Size, eeprom.DefaultAT24Page)
		if err != nil {
			return nil, fmt.Errorf("open at24: %w", err)
		}
		return dev, nil
	default:
		dev, err := eeprom.OpenFile(cfg.StorePath, eeprom.LayoutSize)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.StorePath, err)
		}
		return dev, nil
	}
}
