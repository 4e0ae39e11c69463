package supervisor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"talos-hq/console/pkg/config"
	"talos-hq/console/pkg/telemetry/logging"
	"talos-hq/console/pkg/telemetry/metrics"
)

// ErrClosed is returned by Spawn after Stop.
var ErrClosed = errors.New("supervisor is closed")

// Work is a unit of background work. It must return promptly once ctx is
// cancelled.
type Work func(ctx context.Context) error

// Task is a handle to spawned work.
type Task struct {
	id     uint64
	scope  string
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Scope returns the scope the task was spawned under ("" if none).
func (t *Task) Scope() string { return t.scope }

// Cancel requests cancellation without waiting.
func (t *Task) Cancel() { t.cancel() }

// Done is closed once the task has finished and left the registry.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task result. It is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Supervisor owns the shared HTTP connection pool and every background
// task. Tasks may be grouped into named scopes and cancelled together.
type Supervisor struct {
	transport *http.Transport
	client    *http.Client
	logger    *slog.Logger
	metrics   *metrics.Collector

	mu     sync.Mutex
	closed bool
	nextID uint64
	tasks  map[uint64]*Task
	scopes map[string]map[uint64]*Task
}

// New creates a supervisor with a pooled HTTP client configured from cfg.
// Per-request deadlines are applied by the caller; the pool only bounds
// connection establishment.
func New(cfg config.HTTPConfig, logger *slog.Logger, collector *metrics.Collector) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = config.DefaultConnectTimeout
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = config.DefaultMaxIdleConns
	}
	idleTimeout := cfg.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = config.DefaultIdleConnTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
		MaxIdleConns:        maxIdle,
		MaxIdleConnsPerHost: maxIdle,
		IdleConnTimeout:     idleTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Supervisor{
		transport: transport,
		client:    &http.Client{Transport: transport},
		logger:    logger.With("component", "supervisor"),
		metrics:   collector,
		tasks:     make(map[uint64]*Task),
		scopes:    make(map[string]map[uint64]*Task),
	}
}

// WithTLS sets the TLS configuration of the shared pool. It must be called
// before the first request and returns s.
func (s *Supervisor) WithTLS(cfg *tls.Config) *Supervisor {
	s.transport.TLSClientConfig = cfg
	return s
}

// HTTPClient returns the shared pooled client.
func (s *Supervisor) HTTPClient() *http.Client {
	return s.client
}

// Spawn runs work in a new goroutine, registered globally and under scope
// when scope is not empty. The task leaves both registries when it returns,
// whatever the outcome.
func (s *Supervisor) Spawn(work Work, scope string) (*Task, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	ctx, cancel := context.WithCancel(context.Background())
	if scope != "" {
		ctx = logging.WithScope(ctx, scope)
	}

	s.nextID++
	t := &Task{
		id:     s.nextID,
		scope:  scope,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.tasks[t.id] = t
	if scope != "" {
		group, ok := s.scopes[scope]
		if !ok {
			group = make(map[uint64]*Task)
			s.scopes[scope] = group
		}
		group[t.id] = t
	}
	active := len(s.tasks)
	s.mu.Unlock()

	s.metrics.SetTasks(active)

	go s.run(ctx, t, work)
	return t, nil
}

func (s *Supervisor) run(ctx context.Context, t *Task, work Work) {
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("task panicked: %v", r)
		}
		t.cancel()

		switch {
		case t.err == nil, errors.Is(t.err, context.Canceled):
		default:
			s.logger.WarnContext(ctx, "task failed", "task", t.id, "error", t.err)
		}

		s.unregister(t)
		close(t.done)
	}()

	t.err = work(ctx)
}

func (s *Supervisor) unregister(t *Task) {
	s.mu.Lock()
	delete(s.tasks, t.id)
	if group, ok := s.scopes[t.scope]; ok {
		delete(group, t.id)
		if len(group) == 0 {
			delete(s.scopes, t.scope)
		}
	}
	active := len(s.tasks)
	s.mu.Unlock()

	s.metrics.SetTasks(active)
}

// CancelScope cancels every task currently registered under scope and
// waits for all of them to finish, or for ctx to be done.
func (s *Supervisor) CancelScope(ctx context.Context, scope string) error {
	s.mu.Lock()
	group := s.scopes[scope]
	tasks := make([]*Task, 0, len(group))
	for _, t := range group {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	if len(tasks) > 0 {
		s.logger.Debug("cancelling scope", "scope", scope, "tasks", len(tasks))
	}
	return cancelAndWait(ctx, tasks)
}

// CancelAll cancels every registered task and waits for all of them to
// finish, or for ctx to be done.
func (s *Supervisor) CancelAll(ctx context.Context) error {
	s.mu.Lock()
	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	return cancelAndWait(ctx, tasks)
}

// Stop closes the supervisor so that Spawn fails with ErrClosed, cancels
// every task and releases the connection pool. The pool is released even
// when ctx expires before all tasks finish; the wait error is returned.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.CancelAll(ctx)
	s.transport.CloseIdleConnections()

	if err != nil {
		s.logger.Warn("supervisor stopped before all tasks finished", "active", s.ActiveCount(), "error", err)
		return err
	}
	s.logger.Info("supervisor stopped")
	return nil
}

// ActiveCount returns the number of registered tasks.
func (s *Supervisor) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// ScopeCount returns the number of tasks registered under scope.
func (s *Supervisor) ScopeCount(scope string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scopes[scope])
}

// Closed reports whether Stop has been called.
func (s *Supervisor) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func cancelAndWait(ctx context.Context, tasks []*Task) error {
	for _, t := range tasks {
		t.cancel()
	}
	for _, t := range tasks {
		select {
		case <-t.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
