package adapters

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"talos-hq/console/pkg/domain"
)

var mockVersion = domain.VersionInfo{
	ServiceVersion:   "1.2.3-mock",
	GitSHA:           "deadbeef",
	ContractsVersion: "1.0.0",
	APIVersion:       "v1",
}

var (
	_ GatewayAdapter = (*MockGateway)(nil)
	_ AuditAdapter   = (*MockAudit)(nil)
)

var mockEventTypes = []string{"login", "logout", "config_change", "key_rotation"}

// MockGateway produces synthetic gateway data.
type MockGateway struct{}

// NewMockGateway creates a mock gateway adapter.
func NewMockGateway() *MockGateway { return &MockGateway{} }

// Source implements SourceAdapter.
func (MockGateway) Source() domain.Source { return domain.SourceGateway }

// GetVersion implements SourceAdapter.
func (MockGateway) GetVersion(context.Context) (domain.VersionInfo, error) {
	return mockVersion, nil
}

// GetHealth implements SourceAdapter. The mock gateway is always ready.
func (MockGateway) GetHealth(context.Context) (domain.Health, error) {
	return domain.Health{Status: "ok", Detail: "Running in Mock Mode"}, nil
}

// GetMetricsSummary implements GatewayAdapter with random latencies and counts.
func (MockGateway) GetMetricsSummary(context.Context) (domain.MetricsSummary, error) {
	return domain.MetricsSummary{
		LatencyP50Ms:   5 + rand.Float64()*45,
		LatencyP95Ms:   50 + rand.Float64()*100,
		ConnectedPeers: 10 + rand.IntN(41),
		ActiveSessions: 1 + rand.IntN(10),
	}, nil
}

// ListPeers implements GatewayAdapter.
func (MockGateway) ListPeers(context.Context) ([]domain.Peer, error) {
	peers := make([]domain.Peer, 5)
	for i := range peers {
		peers[i] = domain.Peer{PeerID: fmt.Sprintf("peer-%d", i), Services: []string{"gateway"}}
	}
	return peers, nil
}

// ListSessions implements GatewayAdapter.
func (MockGateway) ListSessions(context.Context) ([]domain.Session, error) {
	sessions := make([]domain.Session, 3)
	for i := range sessions {
		sessions[i] = domain.Session{SessionID: fmt.Sprintf("sess-%d", i), PeerID: fmt.Sprintf("peer-%d", i)}
	}
	return sessions, nil
}

// MockAudit produces a handful of random audit events per page.
type MockAudit struct {
	now func() time.Time
}

// NewMockAudit creates a mock audit adapter.
func NewMockAudit() *MockAudit { return &MockAudit{now: time.Now} }

// Source implements SourceAdapter.
func (*MockAudit) Source() domain.Source { return domain.SourceAudit }

// GetVersion implements SourceAdapter.
func (*MockAudit) GetVersion(context.Context) (domain.VersionInfo, error) {
	return mockVersion, nil
}

// GetHealth implements SourceAdapter. The mock audit service is always ready.
func (*MockAudit) GetHealth(context.Context) (domain.Health, error) {
	return domain.Health{Status: "ok", Detail: "Running in Mock Mode"}, nil
}

// ListEvents implements AuditAdapter. Each page holds up to five new
// events, capped at limit; the cursor is ignored.
func (m *MockAudit) ListEvents(_ context.Context, limit int, _ string) (domain.AuditPage, error) {
	count := rand.IntN(6)
	if limit > 0 && count > limit {
		count = limit
	}

	items := make([]domain.AuditEvent, count)
	for i := range items {
		items[i] = domain.AuditEvent{
			ID:        uuid.NewString(),
			Timestamp: m.now().UTC().Format(time.RFC3339Nano),
			EventType: mockEventTypes[rand.IntN(len(mockEventTypes))],
			Outcome:   "OK",
			Payload:   map[string]any{"mock": true, "value": 1 + rand.IntN(100)},
		}
	}

	return domain.AuditPage{Items: items, NextCursor: "mock_cursor", HasMore: true}, nil
}
