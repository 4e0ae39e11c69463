package main

import (
	"context"
	"fmt"
	"time"

	"talos-hq/console/pkg/coordinator"
	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/state"
	"talos-hq/console/pkg/telemetry/health"
)

// readinessChecker builds the /readyz checks: the coordinator must be
// RUNNING and every source healthy and fresh.
func readinessChecker(coord *coordinator.Coordinator, store *state.Store, staleAfter time.Duration) *health.Checker {
	checker := health.New(0)

	checker.Register("coordinator", func(context.Context) error {
		if st := coord.State(); st != coordinator.StateRunning {
			return fmt.Errorf("state %s", st)
		}
		return nil
	})

	for _, src := range domain.Sources {
		checker.Register(string(src), func(context.Context) error {
			return sourceReady(store.Snapshot(time.Now(), staleAfter), src)
		})
	}
	return checker
}

func sourceReady(snap state.Snapshot, src domain.Source) error {
	for _, view := range snap.Sources {
		if view.Source != src {
			continue
		}
		switch {
		case view.Error != "":
			return fmt.Errorf("%s: %s", src, view.Error)
		case !view.HealthOK:
			return fmt.Errorf("%s is not healthy", src)
		case view.Stale:
			return fmt.Errorf("%s is stale", src)
		}
		return nil
	}
	return fmt.Errorf("%s has not reported", src)
}
