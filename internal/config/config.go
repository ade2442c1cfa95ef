// Package config loads daemon settings from SCALE_* environment variables
// and the network state written by pi-helper. Command-line flags override
// these values; see cmd/truck-scale.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sweeney/truck-scale/internal/status"
)

// Store backends.
const (
	StoreFile = "file"
	StoreAT24 = "at24"
)

// Config is the daemon configuration.
type Config struct {
	Poll      time.Duration `env:"SCALE_POLL"      envDefault:"100ms"`
	Debounce  time.Duration `env:"SCALE_DEBOUNCE"  envDefault:"200ms"`
	Heartbeat time.Duration `env:"SCALE_HEARTBEAT" envDefault:"15m"`
	NoiseGate float64       `env:"SCALE_NOISE_GATE" envDefault:"0.5"`

	Broker   string `env:"SCALE_MQTT_BROKER"    envDefault:"tcp://192.168.1.200:1883"`
	ClientID string `env:"SCALE_MQTT_CLIENT_ID" envDefault:"truck-scale"`
	HTTPAddr string `env:"SCALE_HTTP_ADDR"      envDefault:":80"`

	HX711Chip    string        `env:"SCALE_HX711_CHIP"    envDefault:"gpiochip0"`
	HX711DataPin int           `env:"SCALE_HX711_DOUT"    envDefault:"5"`
	HX711ClkPin  int           `env:"SCALE_HX711_SCK"     envDefault:"6"`
	HX711Timeout time.Duration `env:"SCALE_HX711_TIMEOUT" envDefault:"1s"`
	Samples      int           `env:"SCALE_SAMPLES"       envDefault:"5"`
	TareOnStart  bool          `env:"SCALE_TARE_ON_START" envDefault:"true"`

	Signal         bool `env:"SCALE_SIGNAL"       envDefault:"true"`
	SignalRedPin   int  `env:"SCALE_SIGNAL_RED"   envDefault:"23"`
	SignalGreenPin int  `env:"SCALE_SIGNAL_GREEN" envDefault:"24"`

	I2CBus            string `env:"SCALE_I2C_BUS"`
	TouchAddr         uint16 `env:"SCALE_TOUCH_ADDR"          envDefault:"72"`
	PressureThreshold int    `env:"SCALE_PRESSURE_THRESHOLD"  envDefault:"10"`

	Store      string `env:"SCALE_STORE"       envDefault:"file"`
	StorePath  string `env:"SCALE_STORE_PATH"  envDefault:"/var/lib/truck-scale/eeprom.bin"`
	EEPROMAddr uint16 `env:"SCALE_EEPROM_ADDR" envDefault:"80"`

	CalibrationSamples int           `env:"SCALE_CALIBRATION_SAMPLES" envDefault:"10"`
	CalibrationTimeout time.Duration `env:"SCALE_CALIBRATION_TIMEOUT" envDefault:"5m"`

	JournalPath string `env:"SCALE_JOURNAL" envDefault:"/var/lib/truck-scale/journal.db"`
	LogLevel    string `env:"SCALE_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// Validate checks values the flag layer may have changed.
func (c Config) Validate() error {
	if c.Poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.Poll)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %v", c.Debounce)
	}
	if c.NoiseGate <= 0 {
		return fmt.Errorf("noise gate must be positive, got %v", c.NoiseGate)
	}
	if c.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", c.Samples)
	}
	if c.CalibrationSamples <= 0 {
		return fmt.Errorf("calibration samples must be positive, got %d", c.CalibrationSamples)
	}
	switch strings.ToLower(c.Store) {
	case StoreFile:
		if c.StorePath == "" {
			return fmt.Errorf("store path is required for the %s store", StoreFile)
		}
	case StoreAT24:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreFile, StoreAT24)
	}
	return nil
}

// Network is the pi-helper environment (written to /run/pi-helper.env).
type Network struct {
	Type       string `env:"NETWORK_TYPE"`
	IP         string `env:"NETWORK_IP"`
	Status     string `env:"NETWORK_STATUS"`
	Gateway    string `env:"NETWORK_GATEWAY"`
	WifiStatus string `env:"NETWORK_WIFI_STATUS"`
	SSID       string `env:"NETWORK_WIFI_SSID"`
}

// ReadNetwork returns the current network info, or nil if pi-helper has
// not reported a status.
func ReadNetwork() *status.NetworkInfo {
	var n Network
	if err := env.Parse(&n); err != nil || n.Status == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       n.Type,
		IP:         n.IP,
		Status:     n.Status,
		Gateway:    n.Gateway,
		WifiStatus: n.WifiStatus,
		SSID:       n.SSID,
	}
}
