package main

import (
	"strings"
	"testing"

	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/state"
)

func TestSourceReady(t *testing.T) {
	view := func(mutate func(*state.SourceView)) state.Snapshot {
		v := state.SourceView{Source: domain.SourceAudit}
		v.HealthOK = true
		if mutate != nil {
			mutate(&v)
		}
		return state.Snapshot{Sources: []state.SourceView{v}}
	}

	tests := []struct {
		name    string
		snap    state.Snapshot
		wantErr string
	}{
		{name: "healthy", snap: view(nil)},
		{name: "error", snap: view(func(v *state.SourceView) { v.Error = "server error" }), wantErr: "audit: server error"},
		{name: "not healthy", snap: view(func(v *state.SourceView) { v.HealthOK = false }), wantErr: "not healthy"},
		{name: "stale", snap: view(func(v *state.SourceView) { v.Stale = true }), wantErr: "stale"},
		{name: "missing", snap: state.Snapshot{}, wantErr: "has not reported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sourceReady(tt.snap, domain.SourceAudit)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
