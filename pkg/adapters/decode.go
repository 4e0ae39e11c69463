package adapters

import (
	"fmt"
	"math"

	"talos-hq/console/pkg/domain"
)

func badResponse(format string, args ...any) *domain.Error {
	return &domain.Error{Kind: domain.KindBadResponse, Message: fmt.Sprintf(format, args...)}
}

func asObject(data any, what string) (map[string]any, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, badResponse("%s: expected JSON object, got %T", what, data)
	}
	return m, nil
}

// str returns the first non-empty string found under keys.
func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func number(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func integer(m map[string]any, key string) int {
	return int(number(m, key))
}

func stringList(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func decodeVersion(data any) (domain.VersionInfo, error) {
	m, err := asObject(data, "version")
	if err != nil {
		return domain.VersionInfo{}, err
	}
	v := domain.VersionInfo{
		ServiceVersion:   str(m, "service_version", "version"),
		GitSHA:           str(m, "git_sha"),
		ContractsVersion: str(m, "contracts_version"),
		APIVersion:       str(m, "api_version"),
	}
	if v.ServiceVersion == "" {
		return domain.VersionInfo{}, badResponse("version: missing service_version")
	}
	if v.ContractsVersion == "" {
		return domain.VersionInfo{}, badResponse("version: missing contracts_version")
	}
	return v, nil
}

func decodeHealth(data any) (domain.Health, error) {
	m, err := asObject(data, "health")
	if err != nil {
		return domain.Health{}, err
	}
	h := domain.Health{Status: str(m, "status"), Detail: str(m, "detail")}
	if h.Status == "" {
		h.Status = "error"
	}
	return h, nil
}

func decodeMetrics(data any) (domain.MetricsSummary, error) {
	m, err := asObject(data, "metrics")
	if err != nil {
		return domain.MetricsSummary{}, err
	}
	return domain.MetricsSummary{
		LatencyP50Ms:   number(m, "latency_p50_ms"),
		LatencyP95Ms:   number(m, "latency_p95_ms"),
		ConnectedPeers: integer(m, "connected_peers"),
		ActiveSessions: integer(m, "active_sessions"),
	}, nil
}

func decodePeer(data any) (domain.Peer, error) {
	m, err := asObject(data, "peer")
	if err != nil {
		return domain.Peer{}, err
	}
	p := domain.Peer{PeerID: str(m, "peer_id"), Services: stringList(m, "services")}
	if p.PeerID == "" {
		return domain.Peer{}, badResponse("peer: missing peer_id")
	}
	return p, nil
}

func decodeSession(data any) (domain.Session, error) {
	m, err := asObject(data, "session")
	if err != nil {
		return domain.Session{}, err
	}
	s := domain.Session{
		SessionID: str(m, "session_id"),
		PeerID:    str(m, "peer_id"),
		CreatedAt: str(m, "created_at"),
	}
	if s.SessionID == "" {
		return domain.Session{}, badResponse("session: missing session_id")
	}
	return s, nil
}

func decodeEvent(m map[string]any) (domain.AuditEvent, error) {
	e := domain.AuditEvent{
		ID:        str(m, "event_id", "id"),
		Timestamp: str(m, "ts", "timestamp"),
		EventType: str(m, "schema_id", "event_type"),
		Outcome:   str(m, "outcome"),
	}
	if e.ID == "" {
		return domain.AuditEvent{}, badResponse("audit event: missing event_id")
	}
	if e.Timestamp == "" {
		return domain.AuditEvent{}, badResponse("audit event %s: missing ts", e.ID)
	}
	if e.Outcome == "" {
		e.Outcome = "OK"
	}
	if payload, ok := m["payload"].(map[string]any); ok {
		e.Payload = payload
	} else {
		e.Payload = map[string]any{}
	}
	return e, nil
}

// listItems extracts a list that is either the whole body or wrapped under
// key, capped at MaxListItems. Anything else yields an empty list.
func listItems(data any, key string) []any {
	var items []any
	switch v := data.(type) {
	case []any:
		items = v
	case map[string]any:
		items, _ = v[key].([]any)
	}
	if len(items) > MaxListItems {
		items = items[:MaxListItems]
	}
	return items
}
