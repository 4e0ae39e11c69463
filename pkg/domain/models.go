package domain

import (
	"strings"
	"time"
)

// Source identifies one of the two upstream services.
type Source string

const (
	// SourceGateway is the gateway service.
	SourceGateway Source = "gateway"
	// SourceAudit is the audit service.
	SourceAudit Source = "audit"
)

// Sources lists every upstream in handshake order.
var Sources = []Source{SourceGateway, SourceAudit}

// VersionInfo is the self-reported identity of an upstream service.
type VersionInfo struct {
	ServiceVersion   string `json:"service_version"`
	GitSHA           string `json:"git_sha"`
	ContractsVersion string `json:"contracts_version"`
	APIVersion       string `json:"api_version"`
}

// ContractsMajor returns the major component of the semantic contracts version.
func (v VersionInfo) ContractsMajor() string {
	major, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(v.ContractsVersion), "v"), ".")
	return major
}

// Health is the readiness report of an upstream service.
type Health struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// OK reports whether the service declared itself ready.
func (h Health) OK() bool {
	return h.Status == "ok"
}

// MetricsSummary is the gateway's aggregate traffic summary.
type MetricsSummary struct {
	LatencyP50Ms   float64 `json:"latency_p50_ms"`
	LatencyP95Ms   float64 `json:"latency_p95_ms"`
	ConnectedPeers int     `json:"connected_peers"`
	ActiveSessions int     `json:"active_sessions"`
}

// AsMap flattens the summary into the store's metrics mapping.
func (m MetricsSummary) AsMap() map[string]any {
	return map[string]any{
		"latency_p50_ms":  m.LatencyP50Ms,
		"latency_p95_ms":  m.LatencyP95Ms,
		"connected_peers": m.ConnectedPeers,
		"active_sessions": m.ActiveSessions,
	}
}

// Peer is a peer connected to the gateway.
type Peer struct {
	PeerID   string   `json:"peer_id"`
	Services []string `json:"services,omitempty"`
}

// Session is an active gateway session.
type Session struct {
	SessionID string `json:"session_id"`
	PeerID    string `json:"peer_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AuditEvent is a single record from the audit service. Payload has already
// been redacted by the time an AuditEvent exists.
type AuditEvent struct {
	ID        string         `json:"event_id"`
	Timestamp string         `json:"ts"`
	EventType string         `json:"schema_id"`
	Outcome   string         `json:"outcome"`
	Payload   map[string]any `json:"payload,omitempty"`

	// ReceivedAt is when the console first stored the event.
	ReceivedAt time.Time `json:"-"`
}

// timestampLayouts are tried in order. Timestamps without a zone are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Time parses the event timestamp. The zero time is returned when no known
// layout matches.
func (e AuditEvent) Time() time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, e.Timestamp); err == nil {
			return t
		}
	}
	return time.Time{}
}

// OrderTime is the time the event sorts by: its own timestamp, or
// ReceivedAt when the timestamp does not parse.
func (e AuditEvent) OrderTime() time.Time {
	if t := e.Time(); !t.IsZero() {
		return t
	}
	return e.ReceivedAt
}

// AuditPage is one page of audit events.
type AuditPage struct {
	Items      []AuditEvent `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
	HasMore    bool         `json:"has_more"`
}
