package config

import (
	"mercator-hq/logkeeper/pkg/logging"
	"mercator-hq/logkeeper/pkg/retention"
)

// Default values for configuration fields.
const (
	DefaultAppName = "logkeeper"

	DefaultLoggingLevel        = "info"
	DefaultLoggingDirectoryEnv = "LOG_PATH"
	DefaultLoggingBufferSize   = logging.DefaultBufferSize
	DefaultLoggingMaxSizeMB    = logging.DefaultMaxSizeMB
	DefaultLoggingUTCOffset    = logging.DefaultUTCOffset

	DefaultRetentionEnabled    = true
	DefaultRetentionMaxAgeDays = 30
	DefaultRetentionSchedule   = retention.DefaultSchedule
	DefaultRetentionLocation   = "Local"

	DefaultMetricsEnabled       = false
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "logkeeper"
)

// ApplyDefaults fills zero values in cfg with defaults.
// MaxAgeDays is left alone because 0 is a meaningful age; it is seeded by
// Default before the YAML document is decoded.
func ApplyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = DefaultAppName
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.DirectoryEnv == "" {
		cfg.Logging.DirectoryEnv = DefaultLoggingDirectoryEnv
	}
	if cfg.Logging.BufferSize == 0 {
		cfg.Logging.BufferSize = DefaultLoggingBufferSize
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = DefaultLoggingMaxSizeMB
	}
	if cfg.Logging.UTCOffset == "" {
		cfg.Logging.UTCOffset = DefaultLoggingUTCOffset
	}

	if cfg.Retention.Enabled == nil {
		enabled := DefaultRetentionEnabled
		cfg.Retention.Enabled = &enabled
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}
	if cfg.Retention.Location == "" {
		cfg.Retention.Location = DefaultRetentionLocation
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Retention.MaxAgeDays = DefaultRetentionMaxAgeDays
	ApplyDefaults(cfg)
	return cfg
}
