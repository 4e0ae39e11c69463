package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "gateway.base_url").
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
	// Errors contains all validation errors found in the configuration.
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
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if !cfg.Mock {
		errs = append(errs, validateService("gateway", &cfg.Gateway)...)
		errs = append(errs, validateService("audit", &cfg.Audit)...)
	}

	if n, err := strconv.Atoi(cfg.ContractsMajor); err != nil || n < 0 {
		errs = append(errs, FieldError{
			Field:   "contracts_major",
			Message: fmt.Sprintf("must be a non-negative integer, got %q", cfg.ContractsMajor),
		})
	}

	errs = append(errs, validateHTTP(&cfg.HTTP)...)
	errs = append(errs, validateCoordinator(&cfg.Coordinator)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateService validates a single upstream endpoint.
func validateService(name string, cfg *ServiceConfig) []FieldError {
	var errs []FieldError
	field := name + ".base_url"

	if cfg.BaseURL == "" {
		return append(errs, FieldError{Field: field, Message: "base URL is required"})
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return append(errs, FieldError{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)})
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, FieldError{Field: field, Message: "URL scheme must be http or https"})
	}
	if u.Host == "" {
		errs = append(errs, FieldError{Field: field, Message: "URL host is required"})
	}

	return errs
}

// validateHTTP validates HTTP client configuration.
func validateHTTP(cfg *HTTPConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxAttempts < 1 {
		errs = append(errs, FieldError{Field: "http.max_attempts", Message: "must be at least 1"})
	}
	if cfg.ConnectTimeout < 0 {
		errs = append(errs, FieldError{Field: "http.connect_timeout", Message: "connect timeout must be positive"})
	}
	if cfg.TotalTimeout < 0 {
		errs = append(errs, FieldError{Field: "http.total_timeout", Message: "total timeout must be positive"})
	}
	if cfg.MaxResponseSize < 0 {
		errs = append(errs, FieldError{Field: "http.max_response_size", Message: "max response size must be positive"})
	}
	if cfg.BaseDelay < 0 {
		errs = append(errs, FieldError{Field: "http.base_delay", Message: "base delay must be positive"})
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		errs = append(errs, FieldError{Field: "http.max_delay", Message: "max delay must not be below base delay"})
	}

	if (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		errs = append(errs, FieldError{Field: "http.tls", Message: "cert_file and key_file must be set together"})
	}
	switch cfg.TLS.MinVersion {
	case "", "1.2", "1.3":
	default:
		errs = append(errs, FieldError{
			Field:   "http.tls.min_version",
			Message: fmt.Sprintf("unsupported TLS version %q (valid: 1.2, 1.3)", cfg.TLS.MinVersion),
		})
	}

	return errs
}

// validateCoordinator validates coordinator configuration.
func validateCoordinator(cfg *CoordinatorConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxHandshakeAttempts < 1 {
		errs = append(errs, FieldError{Field: "coordinator.max_handshake_attempts", Message: "must be at least 1"})
	}
	if cfg.PollInterval < 0 {
		errs = append(errs, FieldError{Field: "coordinator.poll_interval", Message: "poll interval must be positive"})
	}
	if cfg.AuditPageSize < 1 || cfg.AuditPageSize > 500 {
		errs = append(errs, FieldError{Field: "coordinator.audit_page_size", Message: "must be between 1 and 500"})
	}
	if cfg.StopGrace < 0 {
		errs = append(errs, FieldError{Field: "coordinator.stop_grace", Message: "stop grace must be positive"})
	}
	if cfg.InventorySchedule != "" {
		if _, err := cron.ParseStandard(cfg.InventorySchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "coordinator.inventory_schedule",
				Message: fmt.Sprintf("invalid cron schedule: %v", err),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown log level %q", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown log format %q", cfg.Logging.Format),
		})
	}

	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("unknown sampler %q (valid: always, never, ratio)", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0.0 and 1.0"})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "endpoint is required when tracing is enabled"})
	}

	return errs
}
