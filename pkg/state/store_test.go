package state

import (
	"fmt"
	"testing"
	"time"

	"talos-hq/console/pkg/domain"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func event(id string, offset time.Duration) domain.AuditEvent {
	return domain.AuditEvent{
		ID:        id,
		Timestamp: epoch.Add(offset).Format(time.RFC3339Nano),
		EventType: "login",
		Outcome:   "OK",
	}
}

func ids(events []domain.AuditEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestNewStore_Initial(t *testing.T) {
	s := NewStore(nil)

	for _, src := range domain.Sources {
		st := s.Source(src)
		if st.HealthOK || st.StatusMsg != "INITIALIZING" {
			t.Errorf("%s initial state = %+v", src, st)
		}
		if s.StaleSince(src, epoch) != Never {
			t.Errorf("%s should never have been updated", src)
		}
	}
	if fatal, _ := s.IsFatal(); fatal {
		t.Error("new store is fatal")
	}
}

func TestReduce_HealthClearsError(t *testing.T) {
	s := NewStore(nil)

	s.Reduce(ErrorOccurred{Source: domain.SourceGateway, Kind: domain.KindNetwork, Message: "down", At: epoch})
	if got := s.Source(domain.SourceGateway).Error; got != "down" {
		t.Fatalf("Error = %q, want down", got)
	}

	s.Reduce(HealthUpdated{Source: domain.SourceGateway, OK: false, StatusMsg: "NOT_READY", At: epoch})
	if got := s.Source(domain.SourceGateway).Error; got != "down" {
		t.Errorf("unhealthy update cleared error: %q", got)
	}

	s.Reduce(HealthUpdated{Source: domain.SourceGateway, OK: true, StatusMsg: "READY", At: epoch.Add(time.Second)})
	st := s.Source(domain.SourceGateway)
	if st.Error != "" {
		t.Errorf("healthy update did not clear error: %q", st.Error)
	}
	if !st.HealthOK || st.StatusMsg != "READY" || !st.LastUpdatedAt.Equal(epoch.Add(time.Second)) {
		t.Errorf("unexpected state: %+v", st)
	}
	if s.Source(domain.SourceAudit).HealthOK {
		t.Error("audit affected by gateway update")
	}
}

func TestReduce_Version(t *testing.T) {
	s := NewStore(nil)
	s.Reduce(VersionUpdated{Source: domain.SourceAudit, Version: "2.0.0", ContractsVersion: "1.4.0", At: epoch})

	st := s.Source(domain.SourceAudit)
	if st.Version != "2.0.0" || st.ContractsVersion != "1.4.0" {
		t.Errorf("unexpected version state: %+v", st)
	}
}

func TestReduce_MetricsAndInventory(t *testing.T) {
	s := NewStore(nil)

	m := map[string]any{"connected_peers": 4}
	s.Reduce(MetricsUpdated{Metrics: m, At: epoch})
	m["connected_peers"] = 99

	s.Reduce(InventoryUpdated{
		Peers:    []domain.Peer{{PeerID: "p1"}},
		Sessions: []domain.Session{{SessionID: "s1"}, {SessionID: "s2"}},
		At:       epoch.Add(time.Second),
	})

	snap := s.Snapshot(epoch.Add(2*time.Second), 5*time.Second)
	if snap.Metrics["connected_peers"] != 4 {
		t.Errorf("store aliases the caller's metrics map: %v", snap.Metrics)
	}
	if len(snap.Peers) != 1 || len(snap.Sessions) != 2 {
		t.Errorf("unexpected inventory: %d peers, %d sessions", len(snap.Peers), len(snap.Sessions))
	}
	if got := s.StaleSince(domain.SourceGateway, epoch.Add(2*time.Second)); got != time.Second {
		t.Errorf("StaleSince(gateway) = %v, want 1s", got)
	}
}

func TestReduce_AuditDedupSingleInsertion(t *testing.T) {
	s := NewStore(nil)

	s.Reduce(AuditEventsReceived{Items: []domain.AuditEvent{event("a", 1), event("b", 2)}, NextCursor: "c1"})
	if got := len(s.AuditEvents()); got != 2 {
		t.Fatalf("got %d events, want 2", got)
	}

	s.Reduce(AuditEventsReceived{Items: []domain.AuditEvent{event("a", 1), event("b", 2), event("b", 2)}, NextCursor: "c2"})
	events := s.AuditEvents()
	if len(events) != 2 {
		t.Errorf("duplicates increased the sequence: %v", ids(events))
	}
	if s.Cursor() != "c2" {
		t.Errorf("Cursor() = %q, want c2", s.Cursor())
	}

	s.Reduce(AuditEventsReceived{Items: []domain.AuditEvent{event("c", 3), event("c", 3)}})
	if got := ids(s.AuditEvents()); len(got) != 3 {
		t.Errorf("expected exactly one insertion of c, got %v", got)
	}
	if s.seenCount() != len(s.AuditEvents()) {
		t.Errorf("seen set (%d) and sequence (%d) disagree", s.seenCount(), len(s.AuditEvents()))
	}
}

func TestReduce_AuditNewestFirst(t *testing.T) {
	s := NewStore(nil)

	s.Reduce(AuditEventsReceived{Items: []domain.AuditEvent{event("mid", 10*time.Second)}})
	s.Reduce(AuditEventsReceived{Items: []domain.AuditEvent{event("new", 20*time.Second), event("old", 0)}})

	got := ids(s.AuditEvents())
	want := []string{"new", "mid", "old"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestReduce_AuditCap(t *testing.T) {
	s := NewStore(nil)

	for batch := 0; batch < 3; batch++ {
		items := make([]domain.AuditEvent, 500)
		for i := range items {
			n := batch*500 + i
			items[i] = event(fmt.Sprintf("e-%04d", n), time.Duration(n)*time.Second)
		}
		s.Reduce(AuditEventsReceived{Items: items})
	}

	events := s.AuditEvents()
	if len(events) != MaxAuditEvents {
		t.Fatalf("got %d events, want %d", len(events), MaxAuditEvents)
	}
	if events[0].ID != "e-1499" || events[len(events)-1].ID != "e-0500" {
		t.Errorf("unexpected window: first=%s last=%s", events[0].ID, events[len(events)-1].ID)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time().After(events[i-1].Time()) {
			t.Fatalf("sequence not newest-first at %d", i)
		}
	}
	if s.seenCount() != MaxAuditEvents {
		t.Errorf("seen set holds %d ids, want %d", s.seenCount(), MaxAuditEvents)
	}

	// An evicted id is no longer a duplicate, but it is older than the window
	s.Reduce(AuditEventsReceived{Items: []domain.AuditEvent{event("e-0000", 0)}})
	if got := len(s.AuditEvents()); got != MaxAuditEvents {
		t.Errorf("cap exceeded: %d", got)
	}
}

func TestReduce_AuditUnparseableTimestampKeepsArrivalOrder(t *testing.T) {
	s := NewStore(nil)

	items := make([]domain.AuditEvent, MaxAuditEvents)
	for i := range items {
		items[i] = event(fmt.Sprintf("e-%04d", i), time.Duration(i)*time.Second)
	}
	s.Reduce(AuditEventsReceived{Items: items, At: epoch.Add(time.Hour)})

	odd := domain.AuditEvent{ID: "odd", Timestamp: "yesterday-ish", Outcome: "OK"}
	for i := 0; i < 3; i++ {
		s.Reduce(AuditEventsReceived{Items: []domain.AuditEvent{odd}, At: epoch.Add(2 * time.Hour)})
	}

	events := s.AuditEvents()
	if len(events) != MaxAuditEvents {
		t.Fatalf("got %d events, want %d", len(events), MaxAuditEvents)
	}
	if events[0].ID != "odd" {
		t.Errorf("newest event = %s, want odd", events[0].ID)
	}
	if !events[0].ReceivedAt.Equal(epoch.Add(2 * time.Hour)) {
		t.Errorf("ReceivedAt = %v", events[0].ReceivedAt)
	}
	if events[len(events)-1].ID != "e-0001" {
		t.Errorf("oldest event = %s, want e-0001", events[len(events)-1].ID)
	}
	if s.seenCount() != MaxAuditEvents {
		t.Errorf("seen set holds %d ids, want %d", s.seenCount(), MaxAuditEvents)
	}
}

func TestReduce_FatalError(t *testing.T) {
	s := NewStore(nil)

	s.Reduce(ErrorOccurred{Source: domain.SourceAudit, Kind: domain.KindNetwork, Message: "flaky", At: epoch})
	if fatal, _ := s.IsFatal(); fatal {
		t.Fatal("non-fatal error set fatal flag")
	}

	s.Reduce(ErrorOccurred{Source: domain.SourceAudit, Kind: domain.KindContract, Message: "contract major 2 != 1", Fatal: true, At: epoch})
	fatal, msg := s.IsFatal()
	if !fatal {
		t.Fatal("fatal flag not set")
	}
	if msg != "FATAL [audit]: contract major 2 != 1" {
		t.Errorf("fatal message = %q", msg)
	}

	s.Reduce(HealthUpdated{Source: domain.SourceAudit, OK: true, At: epoch})
	if fatal, _ := s.IsFatal(); !fatal {
		t.Error("fatal flag cleared by a later event")
	}
}

func TestReduce_ErrorDoesNotRefresh(t *testing.T) {
	s := NewStore(nil)
	s.Reduce(HealthUpdated{Source: domain.SourceGateway, OK: true, At: epoch})
	s.Reduce(ErrorOccurred{Source: domain.SourceGateway, Kind: domain.KindTimeout, Message: "slow", At: epoch.Add(10 * time.Second)})

	if got := s.StaleSince(domain.SourceGateway, epoch.Add(10*time.Second)); got != 10*time.Second {
		t.Errorf("StaleSince = %v, want 10s", got)
	}
}

func TestReduce_ZeroTimestampUsesClock(t *testing.T) {
	s := NewStore(nil)
	s.now = func() time.Time { return epoch }

	s.Reduce(HealthUpdated{Source: domain.SourceGateway, OK: true})
	if got := s.Source(domain.SourceGateway).LastUpdatedAt; !got.Equal(epoch) {
		t.Errorf("LastUpdatedAt = %v, want %v", got, epoch)
	}
}

func TestSnapshot_Staleness(t *testing.T) {
	s := NewStore(nil)
	s.Reduce(HealthUpdated{Source: domain.SourceGateway, OK: true, At: epoch})

	tests := []struct {
		name      string
		now       time.Time
		src       domain.Source
		wantStale bool
	}{
		{"fresh", epoch.Add(2 * time.Second), domain.SourceGateway, false},
		{"at threshold", epoch.Add(5 * time.Second), domain.SourceGateway, false},
		{"past threshold", epoch.Add(6 * time.Second), domain.SourceGateway, true},
		{"never updated", epoch, domain.SourceAudit, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := s.Snapshot(tt.now, 5*time.Second).Source(tt.src)
			if view.Stale != tt.wantStale {
				t.Errorf("Stale = %v, want %v (since %v)", view.Stale, tt.wantStale, view.StaleSince)
			}
		})
	}
}

func TestEvents_Names(t *testing.T) {
	events := []Event{
		HealthUpdated{}, VersionUpdated{}, MetricsUpdated{},
		AuditEventsReceived{}, ErrorOccurred{}, InventoryUpdated{},
	}
	seen := make(map[string]bool)
	for _, e := range events {
		if e.Name() == "" || seen[e.Name()] {
			t.Errorf("event %T has empty or duplicate name %q", e, e.Name())
		}
		seen[e.Name()] = true
	}
}
