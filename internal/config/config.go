// Package config loads the float-alarm settings file.
// Settings are read once at startup and never change afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds credentials, pin assignments and loop tunables.
// Tunables are expressed in seconds and may be fractional.
type Config struct {
	WiFi     WiFi     `yaml:"wifi"`
	Pushover Pushover `yaml:"pushover"`
	Pins     Pins     `yaml:"pins"`
	MQTT     MQTT     `yaml:"mqtt"`

	BeepDuration      float64  `yaml:"beep_duration"`
	AlarmFrequency    float64  `yaml:"alarm_frequency"`
	NetFrequency      float64  `yaml:"net_frequency"`
	RestartDelay      float64  `yaml:"restart_delay"`
	ReconnectInterval int      `yaml:"reconnect_interval"`
	Tick              float64  `yaml:"tick"`
	Heartbeat         *float64 `yaml:"heartbeat"` // nil takes the default, 0 disables

	HTTPAddr string `yaml:"http"`
	LogLevel string `yaml:"log_level"`
}

// WiFi holds wireless network credentials.
type WiFi struct {
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase"`
	Interface  string `yaml:"interface"`
}

// Pushover holds notification service credentials and endpoint.
type Pushover struct {
	User       string `yaml:"user"`
	Token      string `yaml:"token"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Path       string `yaml:"path"`
	DeviceName string `yaml:"device_name"`
}

// Pins holds BCM line offsets on the GPIO chip.
type Pins struct {
	Chip   string `yaml:"chip"`
	Float  int    `yaml:"float"`
	Buzzer int    `yaml:"buzzer"`
	Power  int    `yaml:"power"`
}

// MQTT configures the optional event stream. An empty broker disables it.
type MQTT struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

const (
	// DefaultFilename is used when no path is given.
	DefaultFilename = "float-alarm.yaml"

	DefaultBeepDuration      = 0.5
	DefaultAlarmFrequency    = 30
	DefaultNetFrequency      = 3600
	DefaultRestartDelay      = 30
	DefaultReconnectInterval = 60
	DefaultTick              = 1
	DefaultHeartbeat         = 900

	DefaultInterface  = "wlan0"
	DefaultHost       = "api.pushover.net"
	DefaultPort       = 443
	DefaultPath       = "/1/messages.json"
	DefaultDeviceName = "Aquarium Float Trigger"
	DefaultChip       = "gpiochip0"
	DefaultPinFloat   = 2
	DefaultPinBuzzer  = 4
	DefaultPinPower   = 18
	DefaultClientID   = "float-alarm"
)

var (
	errSSIDRequired   = errors.New("wifi.ssid must be provided")
	errUserRequired   = errors.New("pushover.user must be provided")
	errTokenRequired  = errors.New("pushover.token must be provided")
	errPinsNotUnique  = errors.New("pins.float, pins.buzzer and pins.power must differ")
	errNegativeTuning = errors.New("tunables must not be negative")
)

// Load reads the YAML file at path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and fills defaults for missing tunables.
func Validate(cfg *Config) error {
	if cfg.WiFi.SSID == "" {
		return errSSIDRequired
	}
	if cfg.Pushover.User == "" {
		return errUserRequired
	}
	if cfg.Pushover.Token == "" {
		return errTokenRequired
	}

	if cfg.BeepDuration < 0 || cfg.AlarmFrequency < 0 || cfg.NetFrequency < 0 ||
		cfg.RestartDelay < 0 || cfg.ReconnectInterval < 0 || cfg.Tick < 0 || (cfg.Heartbeat != nil && *cfg.Heartbeat < 0) {
		return errNegativeTuning
	}

	setDefaultFloat(&cfg.BeepDuration, DefaultBeepDuration)
	setDefaultFloat(&cfg.AlarmFrequency, DefaultAlarmFrequency)
	setDefaultFloat(&cfg.NetFrequency, DefaultNetFrequency)
	setDefaultFloat(&cfg.RestartDelay, DefaultRestartDelay)
	setDefaultFloat(&cfg.Tick, DefaultTick)
	setDefaultInt(&cfg.ReconnectInterval, DefaultReconnectInterval)
	if cfg.Heartbeat == nil {
		hb := float64(DefaultHeartbeat)
		cfg.Heartbeat = &hb
	}

	setDefaultString(&cfg.WiFi.Interface, DefaultInterface)
	setDefaultString(&cfg.Pushover.Host, DefaultHost)
	setDefaultInt(&cfg.Pushover.Port, DefaultPort)
	setDefaultString(&cfg.Pushover.Path, DefaultPath)
	setDefaultString(&cfg.Pushover.DeviceName, DefaultDeviceName)
	setDefaultString(&cfg.Pins.Chip, DefaultChip)
	setDefaultString(&cfg.MQTT.ClientID, DefaultClientID)

	// Zero is a valid line offset, so pins default only when all are unset.
	if cfg.Pins.Float == 0 && cfg.Pins.Buzzer == 0 && cfg.Pins.Power == 0 {
		cfg.Pins.Float = DefaultPinFloat
		cfg.Pins.Buzzer = DefaultPinBuzzer
		cfg.Pins.Power = DefaultPinPower
	}
	if cfg.Pins.Float == cfg.Pins.Buzzer || cfg.Pins.Float == cfg.Pins.Power || cfg.Pins.Buzzer == cfg.Pins.Power {
		return errPinsNotUnique
	}

	return nil
}

// BeepDurationD returns BeepDuration as a time.Duration.
func (c *Config) BeepDurationD() time.Duration { return Seconds(c.BeepDuration) }

// AlarmFrequencyD returns AlarmFrequency as a time.Duration.
func (c *Config) AlarmFrequencyD() time.Duration { return Seconds(c.AlarmFrequency) }

// NetFrequencyD returns NetFrequency as a time.Duration.
func (c *Config) NetFrequencyD() time.Duration { return Seconds(c.NetFrequency) }

// RestartDelayD returns RestartDelay as a time.Duration.
func (c *Config) RestartDelayD() time.Duration { return Seconds(c.RestartDelay) }

// TickD returns Tick as a time.Duration.
func (c *Config) TickD() time.Duration { return Seconds(c.Tick) }

// HeartbeatD returns Heartbeat as a time.Duration. Zero disables heartbeats.
func (c *Config) HeartbeatD() time.Duration {
	if c.Heartbeat == nil {
		return Seconds(DefaultHeartbeat)
	}
	return Seconds(*c.Heartbeat)
}

// Seconds converts fractional seconds to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func setDefaultFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

func setDefaultInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setDefaultString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
