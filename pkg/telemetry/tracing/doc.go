// Package tracing provides OpenTelemetry tracing for the console.
//
// # Spans
//
// The coordinator opens one span per handshake attempt and the HTTP client
// opens one client span per request, so a trace shows every retry of a
// handshake together with the calls it made:
//
//	handshake.gateway  talos.service=gateway talos.attempt=2
//	└── gateway GET /health  http.response.status_code=503
//
// Failed spans carry the error kind in talos.error.kind.
//
// # Propagation
//
// Every outgoing request carries the W3C traceparent header so the gateway
// and audit service can join the trace.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "localhost:4317"
//	    insecure: true
//	    sampler: ratio      # always, never or ratio
//	    sample_ratio: 0.25
//
// Spans are batched and exported over OTLP gRPC. A nil *Tracer is a valid
// disabled tracer.
package tracing
