package adapters

import (
	"context"
	"log/slog"
	"net/http"

	"talos-hq/console/pkg/domain"
)

// HTTPGateway talks to the gateway service.
type HTTPGateway struct {
	client Requester
	logger *slog.Logger
}

// NewHTTPGateway creates a gateway adapter on top of client.
func NewHTTPGateway(client Requester, logger *slog.Logger) *HTTPGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPGateway{
		client: client,
		logger: logger.With("component", "adapter", "source", string(domain.SourceGateway)),
	}
}

// Source implements SourceAdapter.
func (g *HTTPGateway) Source() domain.Source { return domain.SourceGateway }

// GetVersion implements SourceAdapter.
func (g *HTTPGateway) GetVersion(ctx context.Context) (domain.VersionInfo, error) {
	data, err := g.client.Do(ctx, http.MethodGet, "version", nil, nil)
	if err != nil {
		return domain.VersionInfo{}, err
	}
	return decodeVersion(data)
}

// GetHealth implements SourceAdapter. The gateway reports readiness at health/ready.
func (g *HTTPGateway) GetHealth(ctx context.Context) (domain.Health, error) {
	data, err := g.client.Do(ctx, http.MethodGet, "health/ready", nil, nil)
	if err != nil {
		return domain.Health{}, err
	}
	return decodeHealth(data)
}

// GetMetricsSummary implements GatewayAdapter.
func (g *HTTPGateway) GetMetricsSummary(ctx context.Context) (domain.MetricsSummary, error) {
	data, err := g.client.Do(ctx, http.MethodGet, "metrics/summary", nil, nil)
	if err != nil {
		return domain.MetricsSummary{}, err
	}
	return decodeMetrics(data)
}

// ListPeers implements GatewayAdapter.
func (g *HTTPGateway) ListPeers(ctx context.Context) ([]domain.Peer, error) {
	data, err := g.client.Do(ctx, http.MethodGet, "peers", nil, nil)
	if err != nil {
		return nil, err
	}

	items := listItems(data, "peers")
	peers := make([]domain.Peer, 0, len(items))
	for i, item := range items {
		p, err := decodePeer(item)
		if err != nil {
			g.logger.Warn("skipping peer", "index", i, "error", err)
			continue
		}
		peers = append(peers, p)
	}
	return peers, nil
}

// ListSessions implements GatewayAdapter.
func (g *HTTPGateway) ListSessions(ctx context.Context) ([]domain.Session, error) {
	data, err := g.client.Do(ctx, http.MethodGet, "sessions", nil, nil)
	if err != nil {
		return nil, err
	}

	items := listItems(data, "sessions")
	sessions := make([]domain.Session, 0, len(items))
	for i, item := range items {
		s, err := decodeSession(item)
		if err != nil {
			g.logger.Warn("skipping session", "index", i, "error", err)
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
