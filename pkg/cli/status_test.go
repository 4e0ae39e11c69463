package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/state"
)

func testSnapshot(t *testing.T) (state.Snapshot, time.Time) {
	t.Helper()
	now := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	store := state.NewStore(nil)

	store.Reduce(state.HealthUpdated{Source: domain.SourceGateway, OK: true, StatusMsg: "READY", At: now.Add(-2 * time.Second)})
	store.Reduce(state.VersionUpdated{Source: domain.SourceGateway, Version: "1.4.0", ContractsVersion: "1.2.0", At: now.Add(-2 * time.Second)})
	store.Reduce(state.MetricsUpdated{Metrics: map[string]any{"connected_peers": 3, "active_sessions": 1}, At: now.Add(-time.Second)})
	store.Reduce(state.ErrorOccurred{Source: domain.SourceAudit, Kind: domain.KindNetwork, Message: "server error"})

	var events []domain.AuditEvent
	for i := range 8 {
		events = append(events, domain.AuditEvent{
			ID:        "evt-" + string(rune('a'+i)),
			Timestamp: now.Add(time.Duration(-i) * time.Minute).Format(time.RFC3339),
			EventType: "policy.decision",
			Outcome:   "OK",
		})
	}
	events[0].Outcome = "DENIED"
	store.Reduce(state.AuditEventsReceived{Items: events, NextCursor: "c-1", At: now})

	return store.Snapshot(now, 5*time.Second), now
}

func TestNewStatusView(t *testing.T) {
	snap, now := testSnapshot(t)
	view := NewStatusView("DEGRADED", snap, 3)

	if view.State != "DEGRADED" || !view.TakenAt.Equal(now) {
		t.Errorf("unexpected header %q %v", view.State, view.TakenAt)
	}
	if view.AuditTotal != 8 || len(view.RecentEvents) != 3 {
		t.Errorf("expected 3 of 8 events, got %d of %d", len(view.RecentEvents), view.AuditTotal)
	}
	if view.RecentEvents[0].ID != "evt-a" {
		t.Errorf("expected newest event first, got %s", view.RecentEvents[0].ID)
	}

	gw, audit := view.Sources[0], view.Sources[1]
	if !gw.Healthy || gw.AgeSeconds == nil || *gw.AgeSeconds != 1 || gw.Stale {
		t.Errorf("unexpected gateway status %+v", gw)
	}
	if audit.AgeSeconds == nil || *audit.AgeSeconds != 0 {
		t.Errorf("expected audit age 0 from the event batch, got %v", audit.AgeSeconds)
	}
	if audit.Healthy || audit.Status != "INITIALIZING" || audit.Error != "server error" {
		t.Errorf("expected audit error, got %+v", audit)
	}
}

func TestNewStatusView_FewerEventsThanRequested(t *testing.T) {
	snap, _ := testSnapshot(t)
	view := NewStatusView("RUNNING", snap, 50)
	if len(view.RecentEvents) != 8 {
		t.Errorf("expected all 8 events, got %d", len(view.RecentEvents))
	}
}

func TestRenderStatus(t *testing.T) {
	snap, _ := testSnapshot(t)
	p := NewPrinter(&bytes.Buffer{}, FormatText)
	out := p.RenderStatus(NewStatusView("DEGRADED", snap, 2))

	for _, want := range []string{
		"talos-tui  DEGRADED  2026-10-14T09:30:00Z",
		"✓ gateway",
		"v1.4.0 contracts 1.2.0",
		"updated 1s ago",
		"✗ audit",
		"INITIALIZING",
		"updated 0s ago error: server error",
		"metrics: active_sessions=1 connected_peers=3",
		"audit events (2 of 8):",
		"DENIED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "FATAL") {
		t.Error("unexpected fatal banner")
	}
}

func TestRenderStatus_WithoutTimes(t *testing.T) {
	snap, _ := testSnapshot(t)
	p := NewPrinter(&bytes.Buffer{}, FormatText)
	p.ShowTimes = false

	first := p.RenderStatus(NewStatusView("RUNNING", snap, 2))
	snap.TakenAt = snap.TakenAt.Add(time.Minute)
	snap.Sources[0].StaleSince += time.Minute
	second := p.RenderStatus(NewStatusView("RUNNING", snap, 2))

	if first != second {
		t.Errorf("frames differ only by time but render differently:\n%s\n%s", first, second)
	}
	if strings.Contains(first, "ago") {
		t.Error("ages rendered with ShowTimes off")
	}
}

func TestRenderStatus_Fatal(t *testing.T) {
	store := state.NewStore(nil)
	store.Reduce(state.ErrorOccurred{
		Source:  domain.SourceGateway,
		Kind:    domain.KindContract,
		Message: "Incompatible contracts: 2.0.0 (want major 1)",
		Fatal:   true,
	})

	p := NewPrinter(&bytes.Buffer{}, FormatText)
	out := p.RenderStatus(NewStatusView("FATAL", store.Snapshot(time.Now(), time.Second), 0))
	if !strings.Contains(out, "FATAL [gateway]: Incompatible contracts") {
		t.Errorf("missing fatal banner in:\n%s", out)
	}
	if strings.Count(out, "never updated STALE") != 2 {
		t.Errorf("expected both sources never updated and stale:\n%s", out)
	}
}

func TestPrinter_StatusJSON(t *testing.T) {
	snap, _ := testSnapshot(t)
	buf := &bytes.Buffer{}
	p := NewPrinter(buf, FormatJSON)

	if err := p.Status(NewStatusView("RUNNING", snap, 1)); err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["state"] != "RUNNING" || decoded["cursor"] != "c-1" {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
	sources := decoded["sources"].([]any)
	if _, ok := sources[0].(map[string]any)["age_seconds"]; !ok {
		t.Error("updated source should carry age_seconds")
	}

	buf.Reset()
	if err := p.Status(NewStatusView("BOOT", state.NewStore(nil).Snapshot(time.Now(), time.Second), 1)); err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if strings.Contains(buf.String(), "age_seconds") {
		t.Error("never-updated sources should omit age_seconds")
	}
}

func TestPrinter_Check(t *testing.T) {
	results := []CheckResult{
		{Service: "gateway", Endpoint: "http://localhost:8000", OK: true, Status: "READY", Version: "1.4.0", ContractsVersion: "1.2.0"},
		{Service: "audit", Endpoint: "http://localhost:8001", Status: "UNREACHABLE", Error: "[NETWORK] connection refused"},
	}

	buf := &bytes.Buffer{}
	if err := NewPrinter(buf, FormatText).Check(results); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Service Reachability:\n") {
		t.Errorf("missing heading in %q", out)
	}
	if !strings.Contains(out, "✓ gateway:") || !strings.Contains(out, "(version 1.4.0, contracts 1.2.0)") {
		t.Errorf("unexpected gateway line in %q", out)
	}
	if !strings.Contains(out, "✗ audit:") || !strings.Contains(out, "connection refused") {
		t.Errorf("unexpected audit line in %q", out)
	}

	buf.Reset()
	if err := NewPrinter(buf, FormatJSON).Check(results); err != nil {
		t.Fatalf("Check() JSON error = %v", err)
	}
	var decoded []CheckResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || len(decoded) != 2 {
		t.Errorf("unexpected JSON %q: %v", buf.String(), err)
	}
}
