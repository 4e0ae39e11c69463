package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// propagator writes W3C trace context and baggage. It is fixed rather than
// read from the otel globals so outgoing headers do not depend on whether
// New installed the global provider.
var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Inject writes the trace context of ctx into headers as traceparent (and
// tracestate when present). Nothing is written when ctx carries no span
// context.
func Inject(ctx context.Context, headers http.Header) {
	propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// Extract returns ctx extended with the trace context found in headers.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}
