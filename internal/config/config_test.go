package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadDefaults verifies defaults survive a missing config file.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:8737" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DisplayWidth != 240 || cfg.DisplayHeight != 320 {
		t.Fatalf("display = %dx%d", cfg.DisplayWidth, cfg.DisplayHeight)
	}
	if cfg.Rotation != 2 {
		t.Fatalf("Rotation = %d", cfg.Rotation)
	}
	if cfg.DebounceMs != 20 || cfg.MinTouchPressure != 5 || cfg.MaxReleasePressure != 0 {
		t.Fatalf("detector defaults = %d/%d/%d", cfg.DebounceMs, cfg.MinTouchPressure, cfg.MaxReleasePressure)
	}
	if cfg.MQTT.Topic != "touchplate/events" {
		t.Fatalf("MQTT.Topic = %q", cfg.MQTT.Topic)
	}
}

// TestLoadYAMLFile verifies YAML values override defaults.
func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
listen_addr: "127.0.0.1:9000"
display_width: 480
display_height: 272
rotation: 1
debounce_ms: 35
stream_steady: true
mqtt:
  enabled: true
  addr: "broker.local:1883"
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DisplayWidth != 480 || cfg.DisplayHeight != 272 || cfg.Rotation != 1 {
		t.Fatalf("display = %dx%d rot %d", cfg.DisplayWidth, cfg.DisplayHeight, cfg.Rotation)
	}
	if cfg.DebounceMs != 35 || !cfg.StreamSteady {
		t.Fatalf("debounce=%d steady=%v", cfg.DebounceMs, cfg.StreamSteady)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Addr != "broker.local:1883" {
		t.Fatalf("mqtt = %+v", cfg.MQTT)
	}
	if cfg.MQTT.Topic != "touchplate/events" {
		t.Fatalf("mqtt topic default lost: %q", cfg.MQTT.Topic)
	}
}

// TestEnvOverridesFile verifies environment variables win over YAML.
func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("rotation: 1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TP_ROTATION", "3")
	t.Setenv("TP_DEVICE_PATH", "/dev/input/event5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rotation != 3 {
		t.Fatalf("Rotation = %d, want env override 3", cfg.Rotation)
	}
	if cfg.DevicePath != "/dev/input/event5" {
		t.Fatalf("DevicePath = %q", cfg.DevicePath)
	}
}

// TestInvalidEnvInt verifies malformed integer overrides are rejected.
func TestInvalidEnvInt(t *testing.T) {
	t.Setenv("TP_DEBOUNCE_MS", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-integer TP_DEBOUNCE_MS")
	}
}

// TestValidateRejectsBadValues verifies validation failures.
func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.DisplayWidth = 0 }},
		{"rotation out of range", func(c *Config) { c.Rotation = 4 }},
		{"negative rotation", func(c *Config) { c.Rotation = -1 }},
		{"zero poll interval", func(c *Config) { c.PollIntervalMs = 0 }},
		{"negative debounce", func(c *Config) { c.DebounceMs = -1 }},
		{"inverted thresholds", func(c *Config) { c.MaxReleasePressure = 9; c.MinTouchPressure = 5 }},
		{"equal thresholds", func(c *Config) { c.MaxReleasePressure = 5; c.MinTouchPressure = 5 }},
		{"unknown source", func(c *Config) { c.Source = "serial" }},
		{"mqtt without addr", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Addr = "" }},
		{"pointer without size", func(c *Config) { c.Pointer.Enabled = true; c.Pointer.W = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
