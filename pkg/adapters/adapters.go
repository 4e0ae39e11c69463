package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"talos-hq/console/pkg/client"
	"talos-hq/console/pkg/config"
	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/telemetry/metrics"
	"talos-hq/console/pkg/telemetry/tracing"
)

// MaxListItems caps every list returned by an adapter.
const MaxListItems = 500

// SourceAdapter is the handshake surface every upstream implements.
type SourceAdapter interface {
	// Source returns the upstream this adapter talks to.
	Source() domain.Source

	// GetVersion returns the service's self-reported identity.
	GetVersion(ctx context.Context) (domain.VersionInfo, error)

	// GetHealth returns the service's readiness.
	GetHealth(ctx context.Context) (domain.Health, error)
}

// GatewayAdapter is the typed gateway API.
type GatewayAdapter interface {
	SourceAdapter
	GetMetricsSummary(ctx context.Context) (domain.MetricsSummary, error)
	ListPeers(ctx context.Context) ([]domain.Peer, error)
	ListSessions(ctx context.Context) ([]domain.Session, error)
}

// AuditAdapter is the typed audit API.
type AuditAdapter interface {
	SourceAdapter

	// ListEvents returns up to limit events older than the before cursor.
	// An empty cursor requests the newest page.
	ListEvents(ctx context.Context, limit int, before string) (domain.AuditPage, error)
}

// Requester issues a JSON request and returns the decoded, redacted body.
// *client.Client implements it.
type Requester interface {
	Do(ctx context.Context, method, path string, params url.Values, body any) (any, error)
}

// Set holds the adapters selected at startup.
type Set struct {
	Gateway GatewayAdapter
	Audit   AuditAdapter
}

// Options configures adapter construction.
type Options struct {
	// Logger receives per-item decode failures. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records HTTP attempts; nil records nothing.
	Metrics *metrics.Collector

	// UserAgent is sent with every request (e.g. "talos-tui/1.0.0").
	UserAgent string

	// Validator optionally checks raw audit items before decoding.
	Validator Validator

	// Tracer opens a span per HTTP call; nil traces nothing.
	Tracer *tracing.Tracer
}

// New selects the adapter implementations once: synthetic in-process
// adapters in mock mode, HTTP adapters sharing httpClient otherwise.
func New(cfg *config.Config, httpClient *http.Client, opts Options) (Set, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if cfg.Mock {
		opts.Logger.Info("using mock adapters")
		return Set{Gateway: NewMockGateway(), Audit: NewMockAudit()}, nil
	}

	gwClient, err := client.New(
		client.ConfigFrom(string(domain.SourceGateway), cfg.Gateway, cfg.HTTP, opts.UserAgent),
		httpClient, opts.Logger, opts.Metrics,
	)
	if err != nil {
		return Set{}, fmt.Errorf("failed to create gateway client: %w", err)
	}

	auditClient, err := client.New(
		client.ConfigFrom(string(domain.SourceAudit), cfg.Audit, cfg.HTTP, opts.UserAgent),
		httpClient, opts.Logger, opts.Metrics,
	)
	if err != nil {
		return Set{}, fmt.Errorf("failed to create audit client: %w", err)
	}

	return Set{
		Gateway: NewHTTPGateway(gwClient.WithTracer(opts.Tracer), opts.Logger),
		Audit:   NewHTTPAudit(auditClient.WithTracer(opts.Tracer), opts.Validator, opts.Logger),
	}, nil
}
