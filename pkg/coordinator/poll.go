package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/state"
)

// startPolling spawns the metrics, audit and inventory loops.
func (c *Coordinator) startPolling() error {
	loops := []func(context.Context) error{c.metricsLoop, c.auditLoop}
	if c.schedule != nil {
		loops = append(loops, c.inventoryLoop)
	}

	var errs []error
	for _, loop := range loops {
		if _, err := c.sup.Spawn(loop, ScopePoll); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}
	c.logger.Info("polling started", "interval", c.cfg.PollInterval, "inventory_schedule", c.cfg.InventorySchedule)
	return nil
}

// pollLoop calls tick every PollInterval while the coordinator is polling.
func (c *Coordinator) pollLoop(ctx context.Context, tick func(context.Context)) error {
	for ctx.Err() == nil && c.State().Polling() {
		tick(ctx)
		if err := sleep(ctx, c.cfg.PollInterval); err != nil {
			return nil
		}
	}
	return nil
}

func (c *Coordinator) metricsLoop(ctx context.Context) error {
	return c.pollLoop(ctx, func(ctx context.Context) {
		summary, err := c.gateway.GetMetricsSummary(ctx)
		if err != nil {
			c.pollFailed(ctx, domain.SourceGateway, err)
			return
		}

		c.emit(state.MetricsUpdated{Metrics: summary.AsMap(), At: time.Now()})
		c.pollSucceeded(domain.SourceGateway)
	})
}

func (c *Coordinator) auditLoop(ctx context.Context) error {
	return c.pollLoop(ctx, func(ctx context.Context) {
		page, err := c.audit.ListEvents(ctx, c.cfg.AuditPageSize, "")
		if err != nil {
			c.pollFailed(ctx, domain.SourceAudit, err)
			return
		}

		c.emit(state.AuditEventsReceived{Items: page.Items, NextCursor: page.NextCursor, At: time.Now()})
		c.pollSucceeded(domain.SourceAudit)
	})
}

// inventoryLoop refreshes peers and sessions once immediately and then on
// the cron schedule. Failures are reported but do not degrade the
// coordinator.
func (c *Coordinator) inventoryLoop(ctx context.Context) error {
	for ctx.Err() == nil && c.State().Polling() {
		c.refreshInventory(ctx)

		now := time.Now()
		if err := sleep(ctx, c.schedule.Next(now).Sub(now)); err != nil {
			return nil
		}
	}
	return nil
}

func (c *Coordinator) refreshInventory(ctx context.Context) {
	peers, err := c.gateway.ListPeers(ctx)
	if err == nil {
		var sessions []domain.Session
		sessions, err = c.gateway.ListSessions(ctx)
		if err == nil {
			c.emit(state.InventoryUpdated{Peers: peers, Sessions: sessions, At: time.Now()})
			return
		}
	}
	if cancelled(ctx, err) {
		return
	}
	c.logger.Warn("inventory refresh failed", "kind", string(domain.KindOf(err)), "error", err)
	c.report(domain.SourceGateway, err)
}

// pollFailed reports a polling failure and degrades the coordinator. AUTH
// and CONTRACT failures are fatal.
func (c *Coordinator) pollFailed(ctx context.Context, src domain.Source, err error) {
	if cancelled(ctx, err) {
		return
	}

	// The source is marked before the transition so a concurrent recovery
	// check never sees DEGRADED without the failing source.
	c.setFailing(src, true)

	kind := domain.KindOf(err)
	if domain.IsFatalKind(kind) {
		c.fail(src, kind, messageOf(err))
		return
	}

	c.logger.Warn("poll failed", "source", string(src), "kind", string(kind), "error", err)
	c.report(src, err)
	c.transition(StateDegraded)
}

// pollSucceeded clears a previous failure of src and returns to RUNNING
// once both sources report healthy.
func (c *Coordinator) pollSucceeded(src domain.Source) {
	if c.setFailing(src, false) {
		c.emit(state.HealthUpdated{Source: src, OK: true, StatusMsg: "READY", At: time.Now()})
	}

	c.transitionWhen(StateRunning, func(from State) bool {
		return from == StateDegraded &&
			c.reportingHealthy(domain.SourceGateway) &&
			c.reportingHealthy(domain.SourceAudit)
	})
}

// setFailing records whether the last poll of src failed and returns the
// previous value.
func (c *Coordinator) setFailing(src domain.Source, failing bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.failing[src]
	c.failing[src] = failing
	return prev
}

// reportingHealthy reports whether src is healthy and its last poll succeeded.
func (c *Coordinator) reportingHealthy(src domain.Source) bool {
	c.mu.RLock()
	failing := c.failing[src]
	c.mu.RUnlock()
	return !failing && c.store.Source(src).HealthOK
}
