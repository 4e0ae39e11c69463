package state

import (
	"time"

	"talos-hq/console/pkg/domain"
)

// Event is an immutable input to Store.Reduce. The set of events is closed:
// only the types in this file implement it.
type Event interface {
	// Name is the event type, used for logging and metrics.
	Name() string

	// OccurredAt is the creation time of the event.
	OccurredAt() time.Time

	sealed()
}

// HealthUpdated reports the readiness of one source.
type HealthUpdated struct {
	Source    domain.Source
	OK        bool
	StatusMsg string
	At        time.Time
}

// VersionUpdated reports the self-reported version of one source.
type VersionUpdated struct {
	Source           domain.Source
	Version          string
	ContractsVersion string
	At               time.Time
}

// MetricsUpdated replaces the gateway metrics.
type MetricsUpdated struct {
	Metrics map[string]any
	At      time.Time
}

// AuditEventsReceived delivers a page of audit events.
type AuditEventsReceived struct {
	Items      []domain.AuditEvent
	NextCursor string
	At         time.Time
}

// ErrorOccurred reports a failure attributed to one source.
type ErrorOccurred struct {
	Source  domain.Source
	Kind    domain.Kind
	Message string
	Fatal   bool
	At      time.Time
}

// InventoryUpdated replaces the gateway's peer and session lists.
type InventoryUpdated struct {
	Peers    []domain.Peer
	Sessions []domain.Session
	At       time.Time
}

func (HealthUpdated) Name() string       { return "health_updated" }
func (VersionUpdated) Name() string      { return "version_updated" }
func (MetricsUpdated) Name() string      { return "metrics_updated" }
func (AuditEventsReceived) Name() string { return "audit_events_received" }
func (ErrorOccurred) Name() string       { return "error_occurred" }
func (InventoryUpdated) Name() string    { return "inventory_updated" }

func (e HealthUpdated) OccurredAt() time.Time       { return e.At }
func (e VersionUpdated) OccurredAt() time.Time      { return e.At }
func (e MetricsUpdated) OccurredAt() time.Time      { return e.At }
func (e AuditEventsReceived) OccurredAt() time.Time { return e.At }
func (e ErrorOccurred) OccurredAt() time.Time       { return e.At }
func (e InventoryUpdated) OccurredAt() time.Time    { return e.At }

func (HealthUpdated) sealed()       {}
func (VersionUpdated) sealed()      {}
func (MetricsUpdated) sealed()      {}
func (AuditEventsReceived) sealed() {}
func (ErrorOccurred) sealed()       {}
func (InventoryUpdated) sealed()    {}
