package coordinator

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/trace"

	"talos-hq/console/pkg/adapters"
	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/state"
	"talos-hq/console/pkg/telemetry/tracing"
)

// handshakeLoop runs the handshake for the gateway and then the audit
// service. Once both succeed it starts the polling loops and returns.
func (c *Coordinator) handshakeLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		switch c.State() {
		case StateHandshakeGateway:
			c.handshake(ctx, c.gateway)
		case StateHandshakeAudit:
			c.handshake(ctx, c.audit)
		case StateRunning, StateDegraded:
			return c.startPolling()
		default:
			return nil
		}

		if err := sleep(ctx, c.cfg.HandshakeInterval); err != nil {
			return nil
		}
	}
	return nil
}

// handshake makes one attempt against adapter: health, then version and
// the contracts gate. Each attempt is traced as its own span.
func (c *Coordinator) handshake(ctx context.Context, adapter adapters.SourceAdapter) {
	src := adapter.Source()

	c.mu.Lock()
	if c.attempts[src] >= c.cfg.MaxHandshakeAttempts {
		c.mu.Unlock()
		c.fail(src, domain.KindHandshake, fmt.Sprintf("Max attempts (%d) exceeded", c.cfg.MaxHandshakeAttempts))
		return
	}
	c.attempts[src]++
	attempt := c.attempts[src]
	c.mu.Unlock()

	c.logger.Info("handshake attempt", "source", string(src), "attempt", attempt, "max_attempts", c.cfg.MaxHandshakeAttempts)

	spanCtx, span := c.tracer.Start(ctx, "handshake."+string(src),
		trace.WithAttributes(tracing.Service(src), tracing.Attempt(attempt)),
	)
	err := c.handshakeAttempt(spanCtx, adapter)
	tracing.RecordError(span, err)
	span.End()

	if err != nil {
		c.handshakeFailed(ctx, src, attempt, err)
		return
	}

	switch src {
	case domain.SourceGateway:
		c.transition(StateHandshakeAudit)
	default:
		c.transition(StateRunning)
	}
}

func (c *Coordinator) handshakeAttempt(ctx context.Context, adapter adapters.SourceAdapter) error {
	src := adapter.Source()

	health, err := adapter.GetHealth(ctx)
	if err != nil {
		return err
	}

	status := "READY"
	if !health.OK() {
		status = "NOT_READY"
	}
	c.emit(state.HealthUpdated{Source: src, OK: health.OK(), StatusMsg: status, At: time.Now()})

	if err := HealthGate(src, health); err != nil {
		return err
	}

	version, err := adapter.GetVersion(ctx)
	if err != nil {
		return err
	}
	c.emit(state.VersionUpdated{
		Source:           src,
		Version:          version.ServiceVersion,
		ContractsVersion: version.ContractsVersion,
		At:               time.Now(),
	})

	if err := ContractsGate(version, c.cfg.ContractsMajor); err != nil {
		return err
	}

	c.logger.Info("handshake complete",
		"source", string(src),
		"service_version", version.ServiceVersion,
		"contracts_version", version.ContractsVersion,
	)
	return nil
}

// handshakeFailed classifies a failed attempt. AUTH and CONTRACT are fatal
// whatever budget remains; anything else is reported and followed by a
// backoff before the next attempt.
func (c *Coordinator) handshakeFailed(ctx context.Context, src domain.Source, attempt int, err error) {
	if cancelled(ctx, err) {
		return
	}

	kind := domain.KindOf(err)
	if domain.IsFatalKind(kind) {
		c.fail(src, kind, messageOf(err))
		return
	}

	backoff := c.handshakeBackoff(attempt)
	c.logger.Warn("handshake failed",
		"source", string(src),
		"attempt", attempt,
		"kind", string(kind),
		"error", err,
		"backoff", backoff,
	)
	c.report(src, err)
	_ = sleep(ctx, backoff)
}

// handshakeBackoff returns min(MaxHandshakeBackoff, 2^attempt seconds).
func (c *Coordinator) handshakeBackoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if d > c.cfg.MaxHandshakeBackoff || d <= 0 {
		return c.cfg.MaxHandshakeBackoff
	}
	return d
}
