package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logkeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
app:
  name: billing
logging:
  debug: true
  level: warn
  directory: /var/log/billing
  targets: [billing_sql, jobs]
  buffer_size: 128
  max_size_mb: 64
  utc_offset: "+00:00"
retention:
  enabled: false
  directory: /var/log/archive
  max_age_days: 7
  schedule: "0 30 2 * * * *"
  location: UTC
metrics:
  enabled: true
  listen_address: "0.0.0.0:9100"
  path: /prom
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.App.Name)
	assert.True(t, cfg.Logging.Debug)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/var/log/billing", cfg.Logging.Directory)
	assert.Equal(t, []string{"billing_sql", "jobs"}, cfg.Logging.Targets)
	assert.Equal(t, 128, cfg.Logging.BufferSize)
	assert.Equal(t, 64, cfg.Logging.MaxSizeMB)
	assert.Equal(t, "+00:00", cfg.Logging.UTCOffset)

	assert.False(t, cfg.RetentionEnabled())
	assert.Equal(t, 7, cfg.Retention.MaxAgeDays)
	assert.Equal(t, "0 30 2 * * * *", cfg.Retention.Schedule)
	assert.Equal(t, "/var/log/archive", cfg.RetentionPolicy().Dir)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0:9100", cfg.Metrics.ListenAddress)
	assert.Equal(t, "/prom", cfg.Metrics.Path)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "app:\n  name: svc\n"))
	require.NoError(t, err)

	assert.Equal(t, "svc", cfg.App.Name)
	assert.Equal(t, DefaultLoggingLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLoggingDirectoryEnv, cfg.Logging.DirectoryEnv)
	assert.Equal(t, DefaultLoggingBufferSize, cfg.Logging.BufferSize)
	assert.Equal(t, DefaultLoggingMaxSizeMB, cfg.Logging.MaxSizeMB)
	assert.Equal(t, DefaultLoggingUTCOffset, cfg.Logging.UTCOffset)
	assert.True(t, cfg.RetentionEnabled())
	assert.Equal(t, DefaultRetentionMaxAgeDays, cfg.Retention.MaxAgeDays)
	assert.Equal(t, DefaultRetentionSchedule, cfg.Retention.Schedule)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMetricsListenAddress, cfg.Metrics.ListenAddress)
}

func TestLoadConfig_ZeroMaxAgeIsKept(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "retention:\n  max_age_days: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Retention.MaxAgeDays)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read configuration file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "app: [unterminated\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse configuration file")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "retention:\n  max_age_days: -1\n"))
		require.Error(t, err)

		var verr ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Errors, 1)
		assert.Equal(t, "retention.max_age_days", verr.Errors[0].Field)
	})
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "app:\n  name: svc\nretention:\n  max_age_days: 10\n")

	t.Setenv("LOGKEEPER_APP_NAME", "other")
	t.Setenv("LOGKEEPER_LOGGING_LEVEL", "error")
	t.Setenv("LOGKEEPER_LOGGING_DIRECTORY", "/tmp/other")
	t.Setenv("LOGKEEPER_RETENTION_MAX_AGE_DAYS", "3")
	t.Setenv("LOGKEEPER_RETENTION_SCHEDULE", "0 */5 * * * *")
	t.Setenv("LOGKEEPER_METRICS_ENABLED", "true")
	t.Setenv("LOGKEEPER_METRICS_LISTEN_ADDRESS", "localhost:9999")

	cfg, err := LoadConfigWithEnvOverrides(path)
	require.NoError(t, err)

	assert.Equal(t, "other", cfg.App.Name)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, slog.LevelError, cfg.LogLevel())
	assert.Equal(t, "/tmp/other", cfg.LogDir())
	assert.Equal(t, 3, cfg.Retention.MaxAgeDays)
	assert.Equal(t, "0 */5 * * * *", cfg.Retention.Schedule)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "localhost:9999", cfg.Metrics.ListenAddress)
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("LOGKEEPER_LOGGING_DEBUG", "1")

	cfg, err := LoadConfigWithEnvOverrides("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAppName, cfg.App.Name)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoadConfigWithEnvOverrides_MalformedValue(t *testing.T) {
	t.Setenv("LOGKEEPER_RETENTION_MAX_AGE_DAYS", "thirty")

	_, err := LoadConfigWithEnvOverrides("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOGKEEPER_RETENTION_MAX_AGE_DAYS")
}

func TestApplyEnvOverrides_EmptyValueIgnored(t *testing.T) {
	cfg := Default()
	env := map[string]string{"LOGKEEPER_APP_NAME": ""}

	err := applyEnvOverrides(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultAppName, cfg.App.Name)
}

func TestConfig_Derived(t *testing.T) {
	t.Setenv("LOG_PATH", "/srv/logs")

	cfg := Default()
	assert.Equal(t, "/srv/logs", cfg.LogDir())

	policy := cfg.RetentionPolicy()
	assert.Equal(t, "/srv/logs", policy.Dir)
	assert.Equal(t, DefaultRetentionMaxAgeDays, policy.MaxAgeDays)

	opts := cfg.LoggingOptions()
	assert.Equal(t, DefaultAppName, opts.BinName)
	assert.Equal(t, "/srv/logs", opts.Directory)
	assert.Equal(t, DefaultLoggingBufferSize, opts.BufferSize)

	loc, err := cfg.ScheduleLocation()
	require.NoError(t, err)
	assert.NotNil(t, loc)
}
