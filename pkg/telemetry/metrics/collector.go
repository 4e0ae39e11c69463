package metrics

import (
	"strconv"
	"time"

	"talos-hq/console/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records Prometheus metrics for the HTTP client, the coordinator
// and the state store. All methods are safe to call on a nil *Collector,
// which records nothing.
//
// Metrics:
//   - talos_tui_http_attempts_total: HTTP attempts by service, method and status
//   - talos_tui_http_latency_seconds: HTTP attempt latency by service
//   - talos_tui_http_errors_total: classified client failures by service and kind
//   - talos_tui_coordinator_state: 1 for the current coordinator state, 0 otherwise
//   - talos_tui_coordinator_transitions_total: state transitions by from/to
//   - talos_tui_store_events_total: reduced events by type
//   - talos_tui_supervisor_tasks: tasks currently registered with the supervisor
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	httpAttempts *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	state       *prometheus.GaugeVec
	transitions *prometheus.CounterVec

	events *prometheus.CounterVec
	tasks  prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics with registry.
// If registry is nil a private registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		httpAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_attempts_total",
				Help:      "Total number of HTTP attempts against upstream services",
			},
			[]string{"service", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_latency_seconds",
				Help:      "Latency of individual HTTP attempts in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"service"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_errors_total",
				Help:      "Total number of failed client calls by error kind",
			},
			[]string{"service", "kind"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "coordinator_state",
				Help:      "Current coordinator state (1=current, 0=otherwise)",
			},
			[]string{"state"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "coordinator_transitions_total",
				Help:      "Total number of coordinator state transitions",
			},
			[]string{"from", "to"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_events_total",
				Help:      "Total number of events reduced by the state store",
			},
			[]string{"type"},
		),
		tasks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "supervisor_tasks",
				Help:      "Number of tasks currently registered with the supervisor",
			},
		),
	}

	registry.MustRegister(
		c.httpAttempts,
		c.httpLatency,
		c.httpErrors,
		c.state,
		c.transitions,
		c.events,
		c.tasks,
	)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordAttempt records one HTTP attempt. status is 0 for transport failures.
func (c *Collector) RecordAttempt(service, method string, status int, latency time.Duration) {
	if !c.enabled() {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.httpAttempts.WithLabelValues(service, method, label).Inc()
	c.httpLatency.WithLabelValues(service).Observe(latency.Seconds())
}

// RecordError records a classified client failure.
func (c *Collector) RecordError(service, kind string) {
	if !c.enabled() {
		return
	}
	c.httpErrors.WithLabelValues(service, kind).Inc()
}

// RecordTransition records a coordinator state change and updates the
// current-state gauge.
func (c *Collector) RecordTransition(from, to string) {
	if !c.enabled() {
		return
	}
	c.transitions.WithLabelValues(from, to).Inc()
	c.state.WithLabelValues(from).Set(0)
	c.state.WithLabelValues(to).Set(1)
}

// SetState sets the gauge of current to 1 without counting a transition.
// Used for the initial state.
func (c *Collector) SetState(current string) {
	if !c.enabled() {
		return
	}
	c.state.WithLabelValues(current).Set(1)
}

// RecordEvent records a reduced state store event.
func (c *Collector) RecordEvent(eventType string) {
	if !c.enabled() {
		return
	}
	c.events.WithLabelValues(eventType).Inc()
}

// SetTasks records the number of registered supervisor tasks.
func (c *Collector) SetTasks(n int) {
	if !c.enabled() {
		return
	}
	c.tasks.Set(float64(n))
}

// Registry returns the Prometheus registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
