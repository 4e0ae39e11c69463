package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"

	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/state"
)

// DefaultRecentEvents is the number of audit events shown in a status frame.
const DefaultRecentEvents = 5

// SourceStatus is the printable view of one upstream.
type SourceStatus struct {
	Source           string   `json:"source"`
	Healthy          bool     `json:"healthy"`
	Status           string   `json:"status"`
	Version          string   `json:"version,omitempty"`
	ContractsVersion string   `json:"contracts_version,omitempty"`
	AgeSeconds       *float64 `json:"age_seconds,omitempty"`
	Stale            bool     `json:"stale"`
	Error            string   `json:"error,omitempty"`
}

// StatusView is the printable projection of a state snapshot.
type StatusView struct {
	State        string              `json:"state"`
	TakenAt      time.Time           `json:"taken_at"`
	Sources      []SourceStatus      `json:"sources"`
	Metrics      map[string]any      `json:"metrics,omitempty"`
	Peers        int                 `json:"peers"`
	Sessions     int                 `json:"sessions"`
	AuditTotal   int                 `json:"audit_total"`
	RecentEvents []domain.AuditEvent `json:"recent_events,omitempty"`
	Cursor       string              `json:"cursor,omitempty"`
	Fatal        string              `json:"fatal,omitempty"`
}

// NewStatusView projects snap, keeping the newest recent audit events.
func NewStatusView(coordinatorState string, snap state.Snapshot, recent int) StatusView {
	view := StatusView{
		State:      coordinatorState,
		TakenAt:    snap.TakenAt,
		Sources:    make([]SourceStatus, 0, len(snap.Sources)),
		Metrics:    snap.Metrics,
		Peers:      len(snap.Peers),
		Sessions:   len(snap.Sessions),
		AuditTotal: len(snap.AuditEvents),
		Cursor:     snap.Cursor,
	}
	if snap.Fatal {
		view.Fatal = snap.FatalMsg
	}
	if recent > 0 {
		view.RecentEvents = snap.AuditEvents[:min(recent, len(snap.AuditEvents))]
	}

	for _, src := range snap.Sources {
		st := SourceStatus{
			Source:           string(src.Source),
			Healthy:          src.HealthOK,
			Status:           src.StatusMsg,
			Version:          src.Version,
			ContractsVersion: src.ContractsVersion,
			Stale:            src.Stale,
			Error:            src.Error,
		}
		if src.StaleSince != state.Never {
			age := src.StaleSince.Seconds()
			st.AgeSeconds = &age
		}
		view.Sources = append(view.Sources, st)
	}
	return view
}

// Status writes view in the printer's format.
func (p *Printer) Status(view StatusView) error {
	if p.format == FormatJSON {
		return p.JSON(view)
	}
	_, err := fmt.Fprint(p.w, p.RenderStatus(view))
	return err
}

// RenderStatus renders view as a multi-line text frame.
func (p *Printer) RenderStatus(view StatusView) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s  %s", p.bold.Sprint("talos-tui"), p.stateColor(view.State).Sprint(view.State))
	if p.ShowTimes {
		sb.WriteString("  " + p.dim.Sprint(view.TakenAt.UTC().Format(time.RFC3339)))
	}
	sb.WriteByte('\n')

	for _, src := range view.Sources {
		fmt.Fprintf(&sb, " %s %-8s %-12s", p.mark(src.Healthy), src.Source, src.Status)
		if src.Version != "" {
			fmt.Fprintf(&sb, " v%s", strings.TrimPrefix(src.Version, "v"))
		}
		if src.ContractsVersion != "" {
			fmt.Fprintf(&sb, " contracts %s", src.ContractsVersion)
		}
		if p.ShowTimes {
			sb.WriteString(" " + p.dim.Sprint(formatAge(src.AgeSeconds)))
		}
		if src.Stale {
			sb.WriteString(" " + p.warn.Sprint("STALE"))
		}
		if src.Error != "" {
			sb.WriteString(" " + p.bad.Sprint("error: "+src.Error))
		}
		sb.WriteByte('\n')
	}

	if len(view.Metrics) > 0 {
		pairs := make([]string, 0, len(view.Metrics))
		for _, k := range slices.Sorted(maps.Keys(view.Metrics)) {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, view.Metrics[k]))
		}
		fmt.Fprintf(&sb, "metrics: %s\n", strings.Join(pairs, " "))
	}
	if view.Peers > 0 || view.Sessions > 0 {
		fmt.Fprintf(&sb, "inventory: %d peers, %d sessions\n", view.Peers, view.Sessions)
	}

	if len(view.RecentEvents) > 0 {
		fmt.Fprintf(&sb, "audit events (%d of %d):\n", len(view.RecentEvents), view.AuditTotal)
		for _, ev := range view.RecentEvents {
			outcome := p.ok.Sprint(ev.Outcome)
			if ev.Outcome != "OK" {
				outcome = p.warn.Sprint(ev.Outcome)
			}
			fmt.Fprintf(&sb, "  %s %-24s %-8s %s\n", p.dim.Sprint(ev.Timestamp), ev.EventType, outcome, ev.ID)
		}
	}

	if view.Fatal != "" {
		sb.WriteString(p.bad.Sprint(view.Fatal) + "\n")
	}
	return sb.String()
}

func (p *Printer) stateColor(s string) *color.Color {
	switch s {
	case "RUNNING":
		return p.ok
	case "FATAL":
		return p.bad
	case "DEGRADED", "STOPPING":
		return p.warn
	default:
		return p.bold
	}
}

func formatAge(seconds *float64) string {
	if seconds == nil {
		return "never updated"
	}
	d := time.Duration(*seconds * float64(time.Second)).Round(100 * time.Millisecond)
	return fmt.Sprintf("updated %s ago", d)
}

// CheckResult is the outcome of a one-shot probe of a single upstream.
type CheckResult struct {
	Service          string `json:"service"`
	Endpoint         string `json:"endpoint"`
	OK               bool   `json:"ok"`
	Status           string `json:"status"`
	Version          string `json:"version,omitempty"`
	ContractsVersion string `json:"contracts_version,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Check writes probe results in the printer's format.
func (p *Printer) Check(results []CheckResult) error {
	if p.format == FormatJSON {
		return p.JSON(results)
	}

	fmt.Fprintln(p.w, "Service Reachability:")
	for _, r := range results {
		line := fmt.Sprintf(" %s %-9s %-32s %s", p.mark(r.OK), r.Service+":", r.Endpoint, r.Status)
		if r.Version != "" {
			line += fmt.Sprintf(" (version %s, contracts %s)", r.Version, r.ContractsVersion)
		}
		if r.Error != "" {
			line += " " + p.bad.Sprint(r.Error)
		}
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}
	return nil
}
