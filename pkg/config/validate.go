package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"mercator-hq/logkeeper/pkg/logging"
	"mercator-hq/logkeeper/pkg/retention"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "retention.schedule").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any rule fails. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateApp(&cfg.App)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateApp(cfg *AppConfig) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(cfg.Name) == "" {
		errs = append(errs, FieldError{Field: "app.name", Message: "must not be empty"})
	}
	if strings.ContainsAny(cfg.Name, `/\`) {
		errs = append(errs, FieldError{Field: "app.name", Message: "must not contain path separators"})
	}
	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	if _, err := logging.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, FieldError{Field: "logging.level", Message: err.Error()})
	}
	if cfg.BufferSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "logging.buffer_size",
			Message: fmt.Sprintf("must be positive, got %d", cfg.BufferSize),
		})
	}
	if cfg.MaxSizeMB <= 0 {
		errs = append(errs, FieldError{
			Field:   "logging.max_size_mb",
			Message: fmt.Sprintf("must be positive, got %d", cfg.MaxSizeMB),
		})
	}
	if _, err := time.Parse("-07:00", cfg.UTCOffset); err != nil {
		errs = append(errs, FieldError{
			Field:   "logging.utc_offset",
			Message: fmt.Sprintf("must look like +08:00, got %q", cfg.UTCOffset),
		})
	}
	for i, target := range cfg.Targets {
		if strings.TrimSpace(target) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("logging.targets[%d]", i),
				Message: "must not be empty",
			})
		}
	}

	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxAgeDays < 0 {
		errs = append(errs, FieldError{
			Field:   "retention.max_age_days",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.MaxAgeDays),
		})
	}
	if _, err := retention.ParseSchedule(cfg.Schedule); err != nil {
		errs = append(errs, FieldError{Field: "retention.schedule", Message: err.Error()})
	}
	if cfg.Location != "" {
		if _, err := time.LoadLocation(cfg.Location); err != nil {
			errs = append(errs, FieldError{Field: "retention.location", Message: err.Error()})
		}
	}

	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "metrics.listen_address",
			Message: fmt.Sprintf("invalid address %q: %v", cfg.ListenAddress, err),
		})
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "metrics.path",
			Message: fmt.Sprintf("must start with '/', got %q", cfg.Path),
		})
	}
	return errs
}
