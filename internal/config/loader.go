package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order.
var ConfigPaths = []string{
	"./.printwatch.yaml",               // project-specific config (highest priority)
	"~/.config/printwatch/config.yaml", // user config
	"/etc/printwatch/config.yaml",      // system config (lowest priority)
}

// Loader handles configuration loading with priority merging.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{configPaths: ConfigPaths}
}

// LoadConfig loads configuration with priority order: environment
// variables, then the config files in ConfigPaths order, then built-in
// defaults. When customPath is set, only that file is used.
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load lowest priority first so higher-priority files win.
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			path := expandPath(l.configPaths[i])
			if !fileExists(path) {
				continue
			}
			if err := l.loadFromFile(config, path); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to load config from %s: %v\n", path, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func (l *Loader) loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyEnvOverrides applies PRINTWATCH_* environment variable overrides.
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		"PRINTWATCH_PRINTER_ADDRESS":     func(v string) error { config.Printer.Address = v; return nil },
		"PRINTWATCH_PRINTER_TIMEOUT":     func(v string) error { return parseDuration(v, &config.Printer.Timeout) },
		"PRINTWATCH_PRINTER_CAMERA_PORT": func(v string) error { return parseInt(v, &config.Printer.CameraPort) },
		"PRINTWATCH_SERVER_LISTEN":       func(v string) error { config.Server.Listen = v; return nil },
		"PRINTWATCH_POLL_INTERVAL":       func(v string) error { return parseDuration(v, &config.Poll.Interval) },
		"PRINTWATCH_POLL_CLEANUP":        func(v string) error { return parseDuration(v, &config.Poll.CleanupInterval) },
		"PRINTWATCH_POLL_BATCH_SIZE":     func(v string) error { return parseInt(v, &config.Poll.BatchSize) },
		"PRINTWATCH_GROUP_MAX_AGE":       func(v string) error { return parseDuration(v, &config.Retention.GroupMaxAge) },
		"PRINTWATCH_ALERT_MAX_AGE":       func(v string) error { return parseDuration(v, &config.Retention.AlertMaxAge) },
		"PRINTWATCH_LOG_LEVEL":           func(v string) error { config.Logging.Level = v; return nil },
		"PRINTWATCH_LOG_PRETTY":          func(v string) error { return parseBool(v, &config.Logging.Pretty) },
	}

	for env, apply := range envMappings {
		if value := os.Getenv(env); value != "" {
			if err := apply(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", env, err)
			}
		}
	}
	return nil
}

// Save writes the configuration back to path as YAML. Used by the
// config-update API so address changes survive restarts.
func Save(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- no secrets in config
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
