// Package config provides configuration management for logkeeper.
//
// Configuration is loaded from an optional YAML file, with LOGKEEPER_*
// environment overrides applied on top:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("logkeeper.yaml")
//
// # Configuration Precedence
//
// Later sources override earlier ones:
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Environment Variable Overrides
//
// Variables follow LOGKEEPER_SECTION_FIELD:
//
//   - LOGKEEPER_LOGGING_LEVEL overrides logging.level
//   - LOGKEEPER_RETENTION_MAX_AGE_DAYS overrides retention.max_age_days
//   - LOGKEEPER_METRICS_LISTEN_ADDRESS overrides metrics.listen_address
//
// # Hot Reload
//
// Watcher observes the configuration file and calls back with each newly
// loaded, valid Config. Invalid edits are logged and skipped, leaving the
// running configuration in place. Only the logging level and the retention
// policy are applied live; other fields take effect on restart.
package config
