// Package config loads runtime configuration for touchplated.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr         = "0.0.0.0:8737"
	defaultSource             = "evdev"
	defaultDevicePath         = "/dev/input/event0"
	defaultDisplayWidth       = 240
	defaultDisplayHeight      = 320
	defaultRotation           = 2
	defaultPollIntervalMs     = 20
	defaultDebounceMs         = 20
	defaultMinTouchPressure   = 5
	defaultMaxReleasePressure = 0
	defaultCalibPath          = "./data/calib.bin"
	defaultMQTTTopic          = "touchplate/events"
	defaultMQTTClientID       = "touchplated"
	defaultMQTTTimeoutMs      = 5000
)

// MQTT configures the optional broker publisher.
type MQTT struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Topic     string `yaml:"topic"`
	ClientID  string `yaml:"client_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Pointer configures the optional host mouse bridge. The rectangle is
// the host-desktop region touches are scaled into.
type Pointer struct {
	Enabled bool `yaml:"enabled"`
	X       int  `yaml:"x"`
	Y       int  `yaml:"y"`
	W       int  `yaml:"w"`
	H       int  `yaml:"h"`
}

// Config holds runtime configuration values.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	Source     string `yaml:"source"`
	DevicePath string `yaml:"device_path"`

	DisplayWidth  int `yaml:"display_width"`
	DisplayHeight int `yaml:"display_height"`
	Rotation      int `yaml:"rotation"`

	PollIntervalMs     int `yaml:"poll_interval_ms"`
	DebounceMs         int `yaml:"debounce_ms"`
	MinTouchPressure   int `yaml:"min_touch_pressure"`
	MaxReleasePressure int `yaml:"max_release_pressure"`

	CalibPath    string `yaml:"calib_path"`
	StreamSteady bool   `yaml:"stream_steady"`

	MQTT    MQTT    `yaml:"mqtt"`
	Pointer Pointer `yaml:"pointer"`
}

// Load reads configuration from an optional YAML file at path, applies
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{
		ListenAddr:         defaultListenAddr,
		Source:             defaultSource,
		DevicePath:         defaultDevicePath,
		DisplayWidth:       defaultDisplayWidth,
		DisplayHeight:      defaultDisplayHeight,
		Rotation:           defaultRotation,
		PollIntervalMs:     defaultPollIntervalMs,
		DebounceMs:         defaultDebounceMs,
		MinTouchPressure:   defaultMinTouchPressure,
		MaxReleasePressure: defaultMaxReleasePressure,
		CalibPath:          defaultCalibPath,
		MQTT: MQTT{
			Topic:     defaultMQTTTopic,
			ClientID:  defaultMQTTClientID,
			TimeoutMs: defaultMQTTTimeoutMs,
		},
	}

	if err := loadFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile merges a YAML config file into cfg. A missing file keeps
// the defaults.
func loadFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays TP_* environment variables onto cfg.
func applyEnv(cfg *Config) error {
	cfg.ListenAddr = envString("TP_LISTEN_ADDR", cfg.ListenAddr)
	cfg.Source = envString("TP_SOURCE", cfg.Source)
	cfg.DevicePath = envString("TP_DEVICE_PATH", cfg.DevicePath)
	cfg.CalibPath = envString("TP_CALIB_PATH", cfg.CalibPath)
	cfg.MQTT.Addr = envString("TP_MQTT_ADDR", cfg.MQTT.Addr)
	cfg.MQTT.Topic = envString("TP_MQTT_TOPIC", cfg.MQTT.Topic)
	cfg.MQTT.ClientID = envString("TP_MQTT_CLIENT_ID", cfg.MQTT.ClientID)

	ints := []struct {
		key string
		dst *int
	}{
		{"TP_DISPLAY_WIDTH", &cfg.DisplayWidth},
		{"TP_DISPLAY_HEIGHT", &cfg.DisplayHeight},
		{"TP_ROTATION", &cfg.Rotation},
		{"TP_POLL_INTERVAL_MS", &cfg.PollIntervalMs},
		{"TP_DEBOUNCE_MS", &cfg.DebounceMs},
		{"TP_MIN_TOUCH_PRESSURE", &cfg.MinTouchPressure},
		{"TP_MAX_RELEASE_PRESSURE", &cfg.MaxReleasePressure},
	}
	for _, v := range ints {
		n, err := envInt(v.key, *v.dst)
		if err != nil {
			return err
		}
		*v.dst = n
	}

	cfg.StreamSteady = envBool("TP_STREAM_STEADY", cfg.StreamSteady)
	cfg.MQTT.Enabled = envBool("TP_MQTT_ENABLED", cfg.MQTT.Enabled)
	cfg.Pointer.Enabled = envBool("TP_POINTER_ENABLED", cfg.Pointer.Enabled)
	return nil
}

// validate rejects configurations that would misbehave at runtime
// instead of letting them surface as garbled coordinates or a detector
// that can never fire.
func (c Config) validate() error {
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.DisplayWidth, c.DisplayHeight)
	}
	if c.Rotation < 0 || c.Rotation > 3 {
		return fmt.Errorf("rotation must be 0-3, got %d", c.Rotation)
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be > 0")
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must be >= 0")
	}
	if c.MaxReleasePressure >= c.MinTouchPressure {
		return fmt.Errorf("max_release_pressure %d must be below min_touch_pressure %d",
			c.MaxReleasePressure, c.MinTouchPressure)
	}
	if c.Source != "evdev" && c.Source != "spi" {
		return fmt.Errorf("source must be evdev or spi, got %q", c.Source)
	}
	if c.MQTT.Enabled && c.MQTT.Addr == "" {
		return errors.New("mqtt.addr is required when mqtt is enabled")
	}
	if c.MQTT.Enabled && c.MQTT.TimeoutMs <= 0 {
		return fmt.Errorf("mqtt.timeout_ms must be > 0")
	}
	if c.Pointer.Enabled && (c.Pointer.W <= 0 || c.Pointer.H <= 0) {
		return fmt.Errorf("pointer rectangle must have positive size, got %dx%d", c.Pointer.W, c.Pointer.H)
	}
	return nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
