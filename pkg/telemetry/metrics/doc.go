// Package metrics provides Prometheus instrumentation for the console.
//
// A single Collector is created at startup and handed to the HTTP client,
// the coordinator, the state store and the supervisor. A nil *Collector is
// valid and records nothing, so tests and library users need not wire one.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	go collector.Serve(ctx, cfg.Telemetry.Metrics.ListenAddress, "/metrics", nil)
package metrics
