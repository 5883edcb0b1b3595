package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOGKEEPER_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields absent from the file keep their defaults. The result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies LOGKEEPER_*
// environment overrides on top. An empty path starts from defaults.
//
// The loading sequence is:
// 1. Default values
// 2. YAML from file, if any
// 3. Environment variable overrides
// 4. Validation
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

// applyEnvOverrides applies LOGKEEPER_SECTION_FIELD overrides. Malformed
// numeric or boolean values are reported rather than ignored.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) error {
	get := func(key string) (string, bool) {
		val, ok := lookup(EnvPrefix + key)
		return val, ok && val != ""
	}

	if val, ok := get("APP_NAME"); ok {
		cfg.App.Name = val
	}

	if val, ok := get("LOGGING_DEBUG"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return envError("LOGGING_DEBUG", val, err)
		}
		cfg.Logging.Debug = b
	}
	if val, ok := get("LOGGING_LEVEL"); ok {
		cfg.Logging.Level = val
	}
	if val, ok := get("LOGGING_DIRECTORY"); ok {
		cfg.Logging.Directory = val
	}

	if val, ok := get("RETENTION_ENABLED"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return envError("RETENTION_ENABLED", val, err)
		}
		cfg.Retention.Enabled = &b
	}
	if val, ok := get("RETENTION_DIRECTORY"); ok {
		cfg.Retention.Directory = val
	}
	if val, ok := get("RETENTION_MAX_AGE_DAYS"); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			return envError("RETENTION_MAX_AGE_DAYS", val, err)
		}
		cfg.Retention.MaxAgeDays = i
	}
	if val, ok := get("RETENTION_SCHEDULE"); ok {
		cfg.Retention.Schedule = val
	}

	if val, ok := get("METRICS_ENABLED"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return envError("METRICS_ENABLED", val, err)
		}
		cfg.Metrics.Enabled = b
	}
	if val, ok := get("METRICS_LISTEN_ADDRESS"); ok {
		cfg.Metrics.ListenAddress = val
	}

	return nil
}

func envError(key, val string, err error) error {
	return fmt.Errorf("invalid value %q for %s%s: %w", val, EnvPrefix, key, err)
}
