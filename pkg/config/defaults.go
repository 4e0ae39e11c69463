package config

import "time"

// Default values for configuration fields.
const (
	// Service defaults
	DefaultGatewayURL     = "http://localhost:8000"
	DefaultAuditURL       = "http://localhost:8001"
	DefaultContractsMajor = "1"

	// HTTP defaults
	DefaultMaxAttempts     = 5
	DefaultConnectTimeout  = 3 * time.Second
	DefaultTotalTimeout    = 10 * time.Second
	DefaultMaxResponseSize = int64(1_000_000) // 1MB
	DefaultBaseDelay       = 500 * time.Millisecond
	DefaultMaxDelay        = 5 * time.Second
	DefaultMaxIdleConns    = 16
	DefaultIdleConnTimeout = 90 * time.Second

	// Coordinator defaults
	DefaultMaxHandshakeAttempts = 5
	DefaultHandshakeInterval    = 1 * time.Second
	DefaultMaxHandshakeBackoff  = 10 * time.Second
	DefaultPollInterval         = 2 * time.Second
	DefaultAuditPageSize        = 50
	DefaultStopGrace            = 2 * time.Second
	DefaultInventorySchedule    = "@every 10s"
	DefaultStaleAfter           = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "text"
	DefaultLogFile          = "talos-tui.log"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "talos"
	DefaultMetricsSubsystem = "tui"
	DefaultTracingSampler   = "always"
	DefaultSampleRatio      = 1.0
	DefaultTracingTimeout   = 10 * time.Second
	DefaultServiceName      = "talos-tui"
)

// Default returns a configuration with every field set to its default.
// Files are decoded on top of it so that boolean defaults survive.
func Default() *Config {
	cfg := &Config{
		Coordinator: CoordinatorConfig{InventorySchedule: DefaultInventorySchedule},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{SampleRatio: DefaultSampleRatio},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Service defaults
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = DefaultGatewayURL
	}
	if cfg.Audit.BaseURL == "" {
		cfg.Audit.BaseURL = DefaultAuditURL
	}
	if cfg.ContractsMajor == "" {
		cfg.ContractsMajor = DefaultContractsMajor
	}

	// HTTP defaults
	if cfg.HTTP.MaxAttempts == 0 {
		cfg.HTTP.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.HTTP.ConnectTimeout == 0 {
		cfg.HTTP.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.HTTP.TotalTimeout == 0 {
		cfg.HTTP.TotalTimeout = DefaultTotalTimeout
	}
	if cfg.HTTP.MaxResponseSize == 0 {
		cfg.HTTP.MaxResponseSize = DefaultMaxResponseSize
	}
	if cfg.HTTP.BaseDelay == 0 {
		cfg.HTTP.BaseDelay = DefaultBaseDelay
	}
	if cfg.HTTP.MaxDelay == 0 {
		cfg.HTTP.MaxDelay = DefaultMaxDelay
	}
	if cfg.HTTP.MaxIdleConns == 0 {
		cfg.HTTP.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.HTTP.IdleConnTimeout == 0 {
		cfg.HTTP.IdleConnTimeout = DefaultIdleConnTimeout
	}

	// Coordinator defaults
	if cfg.Coordinator.MaxHandshakeAttempts == 0 {
		cfg.Coordinator.MaxHandshakeAttempts = DefaultMaxHandshakeAttempts
	}
	if cfg.Coordinator.HandshakeInterval == 0 {
		cfg.Coordinator.HandshakeInterval = DefaultHandshakeInterval
	}
	if cfg.Coordinator.MaxHandshakeBackoff == 0 {
		cfg.Coordinator.MaxHandshakeBackoff = DefaultMaxHandshakeBackoff
	}
	if cfg.Coordinator.PollInterval == 0 {
		cfg.Coordinator.PollInterval = DefaultPollInterval
	}
	if cfg.Coordinator.AuditPageSize == 0 {
		cfg.Coordinator.AuditPageSize = DefaultAuditPageSize
	}
	if cfg.Coordinator.StopGrace == 0 {
		cfg.Coordinator.StopGrace = DefaultStopGrace
	}
	if cfg.Coordinator.StaleAfter == 0 {
		cfg.Coordinator.StaleAfter = DefaultStaleAfter
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.File == "" {
		cfg.Telemetry.Logging.File = DefaultLogFile
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultServiceName
	}
}
