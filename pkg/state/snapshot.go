package state

import (
	"maps"
	"slices"
	"time"

	"talos-hq/console/pkg/domain"
)

// SourceView is a SourceState plus its freshness at snapshot time.
type SourceView struct {
	SourceState
	Source     domain.Source
	StaleSince time.Duration
	Stale      bool
}

// Snapshot is a consistent, read-only copy of the store for rendering.
type Snapshot struct {
	TakenAt     time.Time
	Sources     []SourceView
	Metrics     map[string]any
	AuditEvents []domain.AuditEvent
	Cursor      string
	Peers       []domain.Peer
	Sessions    []domain.Session
	Fatal       bool
	FatalMsg    string
}

// Snapshot copies the store under a single read lock. A source is stale
// when it has never been updated or was last updated more than staleAfter
// before now.
func (s *Store) Snapshot(now time.Time, staleAfter time.Duration) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		TakenAt:     now,
		Sources:     make([]SourceView, 0, len(domain.Sources)),
		Metrics:     maps.Clone(s.metrics),
		AuditEvents: slices.Clone(s.events),
		Cursor:      s.cursor,
		Peers:       slices.Clone(s.peers),
		Sessions:    slices.Clone(s.sessions),
		Fatal:       s.fatal,
		FatalMsg:    s.fatalMsg,
	}

	for _, src := range domain.Sources {
		st := *s.sources[src]
		since := Never
		if !st.LastUpdatedAt.IsZero() {
			since = now.Sub(st.LastUpdatedAt)
		}
		snap.Sources = append(snap.Sources, SourceView{
			SourceState: st,
			Source:      src,
			StaleSince:  since,
			Stale:       since > staleAfter,
		})
	}
	return snap
}

// Source returns the view of src, or a zero view if absent.
func (snap Snapshot) Source(src domain.Source) SourceView {
	for _, v := range snap.Sources {
		if v.Source == src {
			return v
		}
	}
	return SourceView{Source: src, StaleSince: Never, Stale: true}
}
