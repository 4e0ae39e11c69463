package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"talos-hq/console/pkg/domain"
)

// Attribute keys for console spans.
const (
	AttrService    = "talos.service"
	AttrAttempt    = "talos.attempt"
	AttrErrorKind  = "talos.error.kind"
	AttrHTTPMethod = "http.request.method"
	AttrHTTPPath   = "url.path"
	AttrHTTPStatus = "http.response.status_code"
)

// Service returns the attribute naming the upstream service.
func Service(src domain.Source) attribute.KeyValue {
	return attribute.String(AttrService, string(src))
}

// Attempt returns the attribute carrying a 1-based attempt number.
func Attempt(n int) attribute.KeyValue {
	return attribute.Int(AttrAttempt, n)
}

// SetHTTPAttributes records the request line and, when non-zero, the status.
func SetHTTPAttributes(span trace.Span, method, path string, status int) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPPath, path),
	)
	if status != 0 {
		span.SetAttributes(attribute.Int(AttrHTTPStatus, status))
	}
}

// RecordError marks span failed with err, tagging it with the error kind.
// A nil err marks the span OK.
func RecordError(span trace.Span, err error) {
	if err == nil {
		SetStatus(span, nil)
		return
	}
	span.SetAttributes(attribute.String(AttrErrorKind, string(domain.KindOf(err))))
	span.RecordError(err)
	SetStatus(span, err)
}
