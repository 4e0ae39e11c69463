package config

import "time"

// Config is the root configuration structure for the Talos console.
// It contains the upstream service endpoints, HTTP client tuning, the
// coordinator's budgets and intervals, and telemetry settings.
type Config struct {
	// Gateway contains the gateway service endpoint.
	Gateway ServiceConfig `yaml:"gateway"`

	// Audit contains the audit service endpoint.
	Audit ServiceConfig `yaml:"audit"`

	// Mock replaces both HTTP adapters with synthetic in-process adapters.
	// Default: false
	Mock bool `yaml:"mock"`

	// ContractsMajor is the contracts major version both upstreams must
	// report. A mismatch is fatal.
	// Default: "1"
	ContractsMajor string `yaml:"contracts_major"`

	// HTTP contains resilient HTTP client settings shared by both adapters.
	HTTP HTTPConfig `yaml:"http"`

	// Coordinator contains handshake budgets and polling intervals.
	Coordinator CoordinatorConfig `yaml:"coordinator"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServiceConfig describes one upstream service.
type ServiceConfig struct {
	// BaseURL is the base URL every request path is resolved against.
	// Example: "http://localhost:8000"
	BaseURL string `yaml:"base_url"`

	// Token is the bearer credential sent with every request. It is
	// supplied externally and never logged.
	Token string `yaml:"token"`

	// TokenFile names a file holding the token, as mounted by an
	// orchestrator. It must be readable by the owner only and is ignored
	// when Token is set.
	TokenFile string `yaml:"token_file"`
}

// HTTPConfig contains settings for the resilient HTTP client and its
// shared connection pool.
type HTTPConfig struct {
	// MaxAttempts is the attempt budget for a single request.
	// Default: 5
	MaxAttempts int `yaml:"max_attempts"`

	// ConnectTimeout bounds connection establishment in the shared pool.
	// Default: 3s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// TotalTimeout bounds a single attempt including reading the body.
	// Default: 10s
	TotalTimeout time.Duration `yaml:"total_timeout"`

	// MaxResponseSize is the response body cap in bytes.
	// Default: 1000000 (1MB)
	MaxResponseSize int64 `yaml:"max_response_size"`

	// BaseDelay is the first retry backoff delay.
	// Default: 500ms
	BaseDelay time.Duration `yaml:"base_delay"`

	// MaxDelay caps the retry backoff delay.
	// Default: 5s
	MaxDelay time.Duration `yaml:"max_delay"`

	// MaxIdleConns is the idle connection limit of the shared pool.
	// Default: 16
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout closes pooled connections idle for longer.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// TLS configures how the pool verifies and authenticates to upstreams.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains client-side TLS settings for upstream connections.
// The zero value uses the system roots and no client certificate.
type TLSConfig struct {
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `yaml:"ca_file"`

	// CertFile and KeyFile hold the client certificate presented for
	// mutual TLS. Both or neither must be set.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// ServerName overrides the name verified against the server certificate.
	ServerName string `yaml:"server_name"`

	// MinVersion is the lowest accepted protocol version ("1.2" or "1.3").
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// InsecureSkipVerify disables server certificate verification.
	// Only meant for local development.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Enabled reports whether any TLS setting differs from the zero value.
func (c TLSConfig) Enabled() bool {
	return c != TLSConfig{}
}

// CoordinatorConfig contains the coordinator's retry budget and intervals.
type CoordinatorConfig struct {
	// MaxHandshakeAttempts is the per-source handshake budget. It is never
	// reset while the process runs.
	// Default: 5
	MaxHandshakeAttempts int `yaml:"max_handshake_attempts"`

	// HandshakeInterval is the pause between handshake loop iterations.
	// Default: 1s
	HandshakeInterval time.Duration `yaml:"handshake_interval"`

	// MaxHandshakeBackoff caps the per-attempt handshake backoff (2^attempt seconds).
	// Default: 10s
	MaxHandshakeBackoff time.Duration `yaml:"max_handshake_backoff"`

	// PollInterval is the metrics and audit polling period.
	// Default: 2s
	PollInterval time.Duration `yaml:"poll_interval"`

	// AuditPageSize is the number of audit events requested per poll.
	// Default: 50
	AuditPageSize int `yaml:"audit_page_size"`

	// StopGrace bounds how long Stop waits for background tasks.
	// Default: 2s
	StopGrace time.Duration `yaml:"stop_grace"`

	// InventorySchedule is the cron schedule for refreshing peers and
	// sessions. Empty disables the refresh.
	// Default: "@every 10s"
	InventorySchedule string `yaml:"inventory_schedule"`

	// StaleAfter is the age after which a source is flagged as stale.
	// Default: 5s
	StaleAfter time.Duration `yaml:"stale_after"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log format: "json" or "text".
	// Default: "text"
	Format string `yaml:"format"`

	// File is the log file path. Logs never go to the terminal the
	// dashboard draws on. "-" writes to stderr.
	// Default: "talos-tui.log"
	File string `yaml:"file"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls metric recording.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress exposes /metrics when set (e.g. "127.0.0.1:9464").
	// Default: "" (not exposed)
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metric namespace.
	// Default: "talos"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem.
	// Default: "tui"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains OpenTelemetry tracing configuration. Spans cover
// handshake attempts and every HTTP call to the upstreams, and the trace
// context is propagated to them in the traceparent header.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "talos-tui"
	ServiceName string `yaml:"service_name"`
}
