package config

import (
	"fmt"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Printer   PrinterConfig   `yaml:"printer" json:"printer"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Poll      PollConfig      `yaml:"poll" json:"poll"`
	Retention RetentionConfig `yaml:"retention" json:"retention"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// PrinterConfig configures the printer controller connection.
type PrinterConfig struct {
	Address    string        `yaml:"address" json:"address"`         // controller host or IP
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`         // per-request timeout
	CameraPort int           `yaml:"camera_port" json:"camera_port"` // MJPG-streamer port
}

// ServerConfig configures the local HTTP API.
type ServerConfig struct {
	Listen string `yaml:"listen" json:"listen"`
}

// PollConfig configures the polling loop.
type PollConfig struct {
	Interval        time.Duration `yaml:"interval" json:"interval"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
	BatchSize       int           `yaml:"batch_size" json:"batch_size"` // syslog lines per fetch
}

// RetentionConfig bounds the in-memory engines.
type RetentionConfig struct {
	GroupMaxAge time.Duration `yaml:"group_max_age" json:"group_max_age"`
	AlertMaxAge time.Duration `yaml:"alert_max_age" json:"alert_max_age"`
	LogBuffer   int           `yaml:"log_buffer" json:"log_buffer"`
	History     int           `yaml:"history" json:"history"`
}

// LoggingConfig configures process logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug|info|warn|error
	Pretty bool   `yaml:"pretty" json:"pretty"` // console writer instead of JSON
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Printer: PrinterConfig{
			Address:    "",
			Timeout:    5 * time.Second,
			CameraPort: 8080,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Poll: PollConfig{
			Interval:        time.Second,
			CleanupInterval: 5 * time.Minute,
			BatchSize:       500,
		},
		Retention: RetentionConfig{
			GroupMaxAge: time.Hour,
			AlertMaxAge: 24 * time.Hour,
			LogBuffer:   1000,
			History:     1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Printer.Timeout <= 0 {
		return fmt.Errorf("printer.timeout must be positive")
	}
	if c.Printer.CameraPort < 1 || c.Printer.CameraPort > 65535 {
		return fmt.Errorf("printer.camera_port out of range: %d", c.Printer.CameraPort)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive")
	}
	if c.Poll.CleanupInterval <= 0 {
		return fmt.Errorf("poll.cleanup_interval must be positive")
	}
	if c.Poll.BatchSize < 1 {
		return fmt.Errorf("poll.batch_size must be greater than 0")
	}
	if c.Retention.GroupMaxAge <= 0 {
		return fmt.Errorf("retention.group_max_age must be positive")
	}
	if c.Retention.AlertMaxAge <= 0 {
		return fmt.Errorf("retention.alert_max_age must be positive")
	}
	if c.Retention.LogBuffer < 1 {
		return fmt.Errorf("retention.log_buffer must be greater than 0")
	}
	if c.Retention.History < 1 {
		return fmt.Errorf("retention.history must be greater than 0")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}
