// Package telemetry groups the observability packages of the console.
//
//   - logging: structured slog logging to a file, with token redaction and
//     a level that can change at runtime
//   - metrics: Prometheus counters and gauges for HTTP attempts, state
//     transitions, audit ingestion and supervised tasks
//   - tracing: OpenTelemetry spans for handshake attempts and upstream calls
//   - health: liveness and readiness probes served next to /metrics
//
// Logs never go to the terminal, which belongs to the display.
package telemetry
