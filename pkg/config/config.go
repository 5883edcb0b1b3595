package config

import (
	"log/slog"
	"time"

	"mercator-hq/logkeeper/pkg/logging"
	"mercator-hq/logkeeper/pkg/retention"
)

// Config is the root configuration structure for logkeeper.
type Config struct {
	// App identifies the host binary.
	App AppConfig `yaml:"app"`

	// Logging configures the console and daily file sinks.
	Logging LoggingConfig `yaml:"logging"`

	// Retention configures scheduled deletion of aged log files.
	Retention RetentionConfig `yaml:"retention"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// AppConfig identifies the host binary.
type AppConfig struct {
	// Name is the primary log target and the log file stem ({name}.log).
	// Default: "logkeeper"
	Name string `yaml:"name"`
}

// LoggingConfig contains configuration for the logging pipeline.
type LoggingConfig struct {
	// Debug forces the debug level regardless of Level.
	Debug bool `yaml:"debug"`

	// Level is the threshold when Debug is false ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Directory is an explicit log directory. It takes precedence over
	// DirectoryEnv.
	Directory string `yaml:"directory"`

	// DirectoryEnv names an environment variable holding the log directory.
	// Default: "LOG_PATH"
	DirectoryEnv string `yaml:"directory_env"`

	// Targets are extra log targets enabled alongside App.Name.
	Targets []string `yaml:"targets"`

	// BufferSize is the file sink queue capacity in records.
	// Default: 4096
	BufferSize int `yaml:"buffer_size"`

	// MaxSizeMB caps a single day's log file.
	// Default: 1024
	MaxSizeMB int `yaml:"max_size_mb"`

	// UTCOffset is the offset timestamps are rendered in.
	// Default: "+08:00"
	UTCOffset string `yaml:"utc_offset"`
}

// RetentionConfig contains configuration for the cleanup scheduler.
type RetentionConfig struct {
	// Enabled turns the scheduler on.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Directory is cleaned on each run. Empty means the resolved log directory.
	Directory string `yaml:"directory"`

	// MaxAgeDays is the age in whole days beyond which files are deleted.
	// Default: 30
	MaxAgeDays int `yaml:"max_age_days"`

	// Schedule is a cron expression: sec min hour dom month dow [year].
	// Default: "0 0 0 * * * *"
	Schedule string `yaml:"schedule"`

	// Location is the time zone the schedule is evaluated in.
	// Default: "Local"
	Location string `yaml:"location"`
}

// MetricsConfig contains configuration for the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled serves metrics on ListenAddress.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the host:port of the metrics server.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path metrics are served on.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes metric names.
	// Default: "logkeeper"
	Namespace string `yaml:"namespace"`
}

// LogLevel returns the effective logging threshold.
func (c *Config) LogLevel() slog.Level {
	if c.Logging.Debug {
		return slog.LevelDebug
	}
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// LogDir resolves the log directory.
func (c *Config) LogDir() string {
	return logging.ResolveDir(c.Logging.Directory, c.Logging.DirectoryEnv)
}

// LoggingOptions converts the logging section into pipeline options.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		BinName:    c.App.Name,
		Targets:    c.Logging.Targets,
		Debug:      c.Logging.Debug,
		Directory:  c.LogDir(),
		BufferSize: c.Logging.BufferSize,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		UTCOffset:  c.Logging.UTCOffset,
	}
}

// RetentionEnabled reports whether scheduled cleanup is on.
func (c *Config) RetentionEnabled() bool {
	return c.Retention.Enabled == nil || *c.Retention.Enabled
}

// RetentionPolicy returns the cleanup policy.
func (c *Config) RetentionPolicy() retention.Policy {
	dir := c.Retention.Directory
	if dir == "" {
		dir = c.LogDir()
	}
	return retention.Policy{Dir: dir, MaxAgeDays: c.Retention.MaxAgeDays}
}

// ScheduleLocation returns the zone for the retention schedule.
func (c *Config) ScheduleLocation() (*time.Location, error) {
	if c.Retention.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Retention.Location)
}
