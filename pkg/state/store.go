package state

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/telemetry/metrics"
)

// MaxAuditEvents bounds the retained audit sequence.
const MaxAuditEvents = 1000

// Never is returned by StaleSince for a source that was never updated.
const Never = time.Duration(math.MaxInt64)

// initialStatus is the status message of a source before any update.
const initialStatus = "INITIALIZING"

// SourceState is the view of one upstream service.
type SourceState struct {
	HealthOK         bool
	StatusMsg        string
	Version          string
	ContractsVersion string
	LastUpdatedAt    time.Time
	Error            string
}

// Store is the single source of truth read by the terminal projection.
// All mutation goes through Reduce; reads return copies.
type Store struct {
	mu sync.RWMutex

	sources  map[domain.Source]*SourceState
	metrics  map[string]any
	events   []domain.AuditEvent
	cursor   string
	seen     map[string]struct{}
	peers    []domain.Peer
	sessions []domain.Session

	fatal    bool
	fatalMsg string

	collector *metrics.Collector
	now       func() time.Time
}

// NewStore creates an empty store. collector may be nil.
func NewStore(collector *metrics.Collector) *Store {
	s := &Store{
		sources:   make(map[domain.Source]*SourceState, len(domain.Sources)),
		metrics:   make(map[string]any),
		seen:      make(map[string]struct{}),
		collector: collector,
		now:       time.Now,
	}
	for _, src := range domain.Sources {
		s.sources[src] = &SourceState{StatusMsg: initialStatus}
	}
	return s
}

// Reduce applies e. Reduction is synchronous and serialized; an event is
// either fully applied or not at all.
func (s *Store) Reduce(e Event) {
	at := e.OccurredAt()
	if at.IsZero() {
		at = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := e.(type) {
	case HealthUpdated:
		src := s.source(ev.Source)
		src.HealthOK = ev.OK
		src.StatusMsg = ev.StatusMsg
		src.LastUpdatedAt = at
		if ev.OK {
			src.Error = ""
		}

	case VersionUpdated:
		src := s.source(ev.Source)
		src.Version = ev.Version
		src.ContractsVersion = ev.ContractsVersion
		src.LastUpdatedAt = at

	case MetricsUpdated:
		s.metrics = maps.Clone(ev.Metrics)
		if s.metrics == nil {
			s.metrics = make(map[string]any)
		}
		s.source(domain.SourceGateway).LastUpdatedAt = at

	case AuditEventsReceived:
		s.mergeAudit(ev.Items, at)
		s.cursor = ev.NextCursor
		s.source(domain.SourceAudit).LastUpdatedAt = at

	case ErrorOccurred:
		if src := s.source(ev.Source); src != nil {
			src.Error = ev.Message
		}
		if ev.Fatal {
			s.fatal = true
			s.fatalMsg = fmt.Sprintf("FATAL [%s]: %s", ev.Source, ev.Message)
		}

	case InventoryUpdated:
		s.peers = slices.Clone(ev.Peers)
		s.sessions = slices.Clone(ev.Sessions)
		s.source(domain.SourceGateway).LastUpdatedAt = at
	}

	s.collector.RecordEvent(e.Name())
}

// source returns the state of src, or a throwaway value for an unknown source.
func (s *Store) source(src domain.Source) *SourceState {
	if st, ok := s.sources[src]; ok {
		return st
	}
	return &SourceState{}
}

// mergeAudit inserts every unseen event once, keeps the sequence
// newest-first and evicts the oldest beyond MaxAuditEvents. Evicted ids
// leave the seen set so the two always hold the same members. Events whose
// timestamp does not parse sort by their arrival time at.
func (s *Store) mergeAudit(items []domain.AuditEvent, at time.Time) {
	fresh := make([]domain.AuditEvent, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, dup := s.seen[item.ID]; dup {
			continue
		}
		s.seen[item.ID] = struct{}{}
		if item.ReceivedAt.IsZero() {
			item.ReceivedAt = at
		}
		fresh = append(fresh, item)
	}
	if len(fresh) == 0 {
		return
	}

	merged := append(fresh, s.events...)
	slices.SortStableFunc(merged, func(a, b domain.AuditEvent) int {
		return b.OrderTime().Compare(a.OrderTime())
	})

	if len(merged) > MaxAuditEvents {
		for _, evicted := range merged[MaxAuditEvents:] {
			delete(s.seen, evicted.ID)
		}
		merged = merged[:MaxAuditEvents:MaxAuditEvents]
	}
	s.events = merged
}

// StaleSince returns the time elapsed since src was last updated, or Never.
func (s *Store) StaleSince(src domain.Source, now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sources[src]
	if !ok || st.LastUpdatedAt.IsZero() {
		return Never
	}
	return now.Sub(st.LastUpdatedAt)
}

// IsFatal reports the global fatal flag and its message.
func (s *Store) IsFatal() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fatal, s.fatalMsg
}

// Source returns a copy of the state of src.
func (s *Store) Source(src domain.Source) SourceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.sources[src]; ok {
		return *st
	}
	return SourceState{}
}

// AuditEvents returns a copy of the retained audit events, newest first.
func (s *Store) AuditEvents() []domain.AuditEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Cursor returns the most recent pagination cursor.
func (s *Store) Cursor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// seenCount returns the size of the dedup set.
func (s *Store) seenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
