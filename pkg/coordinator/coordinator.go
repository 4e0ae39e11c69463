package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"talos-hq/console/pkg/adapters"
	"talos-hq/console/pkg/config"
	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/state"
	"talos-hq/console/pkg/supervisor"
	"talos-hq/console/pkg/telemetry/metrics"
	"talos-hq/console/pkg/telemetry/tracing"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("coordinator already started")

// Supervisor scopes used by the coordinator.
const (
	ScopeHandshake = "handshake"
	ScopePoll      = "poll"
)

// Config contains the coordinator's retry budget and intervals.
type Config struct {
	// ContractsMajor is the contracts major version both sources must report.
	ContractsMajor string

	// MaxHandshakeAttempts is the per-source handshake budget.
	MaxHandshakeAttempts int

	// HandshakeInterval is the pause between handshake loop iterations.
	HandshakeInterval time.Duration

	// MaxHandshakeBackoff caps the 2^attempt second backoff after a failed attempt.
	MaxHandshakeBackoff time.Duration

	// PollInterval is the metrics and audit polling period.
	PollInterval time.Duration

	// AuditPageSize is the number of events requested per audit poll.
	AuditPageSize int

	// StopGrace bounds how long Stop waits for tasks to finish.
	StopGrace time.Duration

	// InventorySchedule is a cron schedule for peer and session refresh.
	// Empty disables it.
	InventorySchedule string
}

// ConfigFrom builds a coordinator Config from the console configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ContractsMajor:       cfg.ContractsMajor,
		MaxHandshakeAttempts: cfg.Coordinator.MaxHandshakeAttempts,
		HandshakeInterval:    cfg.Coordinator.HandshakeInterval,
		MaxHandshakeBackoff:  cfg.Coordinator.MaxHandshakeBackoff,
		PollInterval:         cfg.Coordinator.PollInterval,
		AuditPageSize:        cfg.Coordinator.AuditPageSize,
		StopGrace:            cfg.Coordinator.StopGrace,
		InventorySchedule:    cfg.Coordinator.InventorySchedule,
	}
}

func (c *Config) applyDefaults() {
	if c.ContractsMajor == "" {
		c.ContractsMajor = config.DefaultContractsMajor
	}
	if c.MaxHandshakeAttempts <= 0 {
		c.MaxHandshakeAttempts = config.DefaultMaxHandshakeAttempts
	}
	if c.HandshakeInterval <= 0 {
		c.HandshakeInterval = config.DefaultHandshakeInterval
	}
	if c.MaxHandshakeBackoff <= 0 {
		c.MaxHandshakeBackoff = config.DefaultMaxHandshakeBackoff
	}
	if c.PollInterval <= 0 {
		c.PollInterval = config.DefaultPollInterval
	}
	if c.AuditPageSize <= 0 {
		c.AuditPageSize = config.DefaultAuditPageSize
	}
	if c.StopGrace <= 0 {
		c.StopGrace = config.DefaultStopGrace
	}
}

// TransitionFunc observes a state transition. It runs synchronously, in
// transition order, and must not call Start, Stop or another transition.
type TransitionFunc func(from, to State)

// Coordinator drives the handshake with both sources and then the polling
// loops, reporting everything it learns to the store as events.
type Coordinator struct {
	cfg      Config
	store    *state.Store
	gateway  adapters.GatewayAdapter
	audit    adapters.AuditAdapter
	sup      *supervisor.Supervisor
	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	schedule cron.Schedule

	// transitionMu serializes transitions together with their hooks.
	transitionMu sync.Mutex

	mu       sync.RWMutex
	current  State
	started  bool
	attempts map[domain.Source]int
	hooks    []TransitionFunc

	// failing marks sources whose most recent poll failed.
	failing map[domain.Source]bool
}

// New creates a coordinator in BOOT. It fails if the inventory schedule
// does not parse.
func New(
	cfg Config,
	store *state.Store,
	gateway adapters.GatewayAdapter,
	audit adapters.AuditAdapter,
	sup *supervisor.Supervisor,
	logger *slog.Logger,
	collector *metrics.Collector,
) (*Coordinator, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	var schedule cron.Schedule
	if cfg.InventorySchedule != "" {
		var err error
		schedule, err = cron.ParseStandard(cfg.InventorySchedule)
		if err != nil {
			return nil, fmt.Errorf("invalid inventory schedule %q: %w", cfg.InventorySchedule, err)
		}
	}

	c := &Coordinator{
		cfg:      cfg,
		store:    store,
		gateway:  gateway,
		audit:    audit,
		sup:      sup,
		logger:   logger.With("component", "coordinator"),
		metrics:  collector,
		schedule: schedule,
		current:  StateBoot,
		attempts: make(map[domain.Source]int, len(domain.Sources)),
		failing:  make(map[domain.Source]bool, len(domain.Sources)),
	}
	collector.SetState(string(StateBoot))
	return c, nil
}

// SetTracer makes the coordinator trace each handshake attempt. It must be
// called before Start.
func (c *Coordinator) SetTracer(t *tracing.Tracer) {
	c.tracer = t
}

// OnTransition registers fn to observe every subsequent transition.
func (c *Coordinator) OnTransition(fn TransitionFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Attempts returns the number of handshake attempts made against src.
func (c *Coordinator) Attempts(src domain.Source) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attempts[src]
}

// Start moves to HANDSHAKE_GATEWAY and spawns the handshake loop.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	c.logger.Info("coordinator starting", "contracts_major", c.cfg.ContractsMajor)
	if !c.transition(StateHandshakeGateway) {
		return fmt.Errorf("cannot start from state %s", c.State())
	}

	if _, err := c.sup.Spawn(c.handshakeLoop, ScopeHandshake); err != nil {
		c.transition(StateFatal)
		return fmt.Errorf("failed to spawn handshake loop: %w", err)
	}
	return nil
}

// Stop moves to STOPPING, cancels the handshake and polling tasks and
// waits for them for at most the configured grace period.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.transition(StateStopping)

	graceCtx, cancel := context.WithTimeout(ctx, c.cfg.StopGrace)
	defer cancel()

	err := errors.Join(
		c.sup.CancelScope(graceCtx, ScopeHandshake),
		c.sup.CancelScope(graceCtx, ScopePoll),
	)
	if err != nil {
		c.logger.Warn("coordinator stop grace period exceeded", "grace", c.cfg.StopGrace, "error", err)
		return err
	}
	c.logger.Info("coordinator stopped")
	return nil
}

// transition moves to next if the move is legal and reports whether it did.
// A transition to the current state is a no-op.
func (c *Coordinator) transition(next State) bool {
	return c.transitionWhen(next, nil)
}

// transitionWhen is transition guarded by ok, which is evaluated with the
// current state under the transition lock. ok runs without c.mu held.
func (c *Coordinator) transitionWhen(next State, ok func(from State) bool) bool {
	c.transitionMu.Lock()
	defer c.transitionMu.Unlock()

	c.mu.RLock()
	from := c.current
	c.mu.RUnlock()
	if ok != nil && !ok(from) {
		return false
	}

	c.mu.Lock()
	from = c.current
	if from == next || !from.allowed(next) {
		c.mu.Unlock()
		return false
	}
	c.current = next
	hooks := append([]TransitionFunc(nil), c.hooks...)
	c.mu.Unlock()

	c.logger.Info("transition", "from", string(from), "to", string(next))
	c.metrics.RecordTransition(string(from), string(next))
	for _, fn := range hooks {
		fn(from, next)
	}
	return true
}

// emit reduces e into the store.
func (c *Coordinator) emit(e state.Event) {
	c.store.Reduce(e)
}

// report emits a non-fatal error for src.
func (c *Coordinator) report(src domain.Source, err error) {
	c.emit(state.ErrorOccurred{
		Source:  src,
		Kind:    domain.KindOf(err),
		Message: messageOf(err),
		At:      time.Now(),
	})
}

// fail moves to FATAL and emits a fatal error for src.
func (c *Coordinator) fail(src domain.Source, kind domain.Kind, message string) {
	if !c.transition(StateFatal) {
		return
	}
	c.logger.Error("fatal error", "source", string(src), "kind", string(kind), "error", message)
	c.emit(state.ErrorOccurred{
		Source:  src,
		Kind:    kind,
		Message: message,
		Fatal:   true,
		At:      time.Now(),
	})
}

func messageOf(err error) string {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr.Message
	}
	return err.Error()
}

// cancelled reports whether err is the result of ctx being cancelled.
func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || domain.KindOf(err) == domain.KindCancelled)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
