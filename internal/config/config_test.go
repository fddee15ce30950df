package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Printer.Timeout = 0 }},
		{"camera port too high", func(c *Config) { c.Printer.CameraPort = 70000 }},
		{"empty listen", func(c *Config) { c.Server.Listen = "" }},
		{"zero poll interval", func(c *Config) { c.Poll.Interval = 0 }},
		{"zero cleanup interval", func(c *Config) { c.Poll.CleanupInterval = 0 }},
		{"zero batch size", func(c *Config) { c.Poll.BatchSize = 0 }},
		{"zero group age", func(c *Config) { c.Retention.GroupMaxAge = 0 }},
		{"zero alert age", func(c *Config) { c.Retention.AlertMaxAge = 0 }},
		{"zero log buffer", func(c *Config) { c.Retention.LogBuffer = 0 }},
		{"zero history", func(c *Config) { c.Retention.History = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
printer:
  address: "10.0.0.42"
  timeout: 10s
poll:
  interval: 2s
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Printer.Address != "10.0.0.42" {
		t.Errorf("address = %q", cfg.Printer.Address)
	}
	if cfg.Printer.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Printer.Timeout)
	}
	if cfg.Poll.Interval != 2*time.Second {
		t.Errorf("poll interval = %v", cfg.Poll.Interval)
	}
	// Unset fields keep defaults.
	if cfg.Printer.CameraPort != 8080 {
		t.Errorf("camera port default lost: %d", cfg.Printer.CameraPort)
	}
	if cfg.Retention.AlertMaxAge != 24*time.Hour {
		t.Errorf("alert max age default lost: %v", cfg.Retention.AlertMaxAge)
	}
}

func TestLoadConfigMissingCustomPath(t *testing.T) {
	_, err := NewLoader().LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("printer: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader().LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PRINTWATCH_PRINTER_ADDRESS", "printer.local")
	t.Setenv("PRINTWATCH_POLL_INTERVAL", "3s")
	t.Setenv("PRINTWATCH_LOG_PRETTY", "true")

	cfg, err := NewLoader().LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Printer.Address != "printer.local" {
		t.Errorf("address = %q", cfg.Printer.Address)
	}
	if cfg.Poll.Interval != 3*time.Second {
		t.Errorf("poll interval = %v", cfg.Poll.Interval)
	}
	if !cfg.Logging.Pretty {
		t.Errorf("pretty not applied")
	}
}

func TestEnvOverrideInvalidValue(t *testing.T) {
	t.Setenv("PRINTWATCH_POLL_INTERVAL", "soon")
	if _, err := NewLoader().LoadConfig(""); err == nil {
		t.Fatal("expected error for unparseable env override")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Printer.Address = "10.1.2.3"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := NewLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Printer.Address != "10.1.2.3" {
		t.Errorf("address = %q", loaded.Printer.Address)
	}
	if loaded.Poll.BatchSize != cfg.Poll.BatchSize {
		t.Errorf("batch size = %d", loaded.Poll.BatchSize)
	}
}
