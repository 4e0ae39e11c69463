package domain

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure observed while talking to an upstream service.
type Kind string

const (
	KindNetwork         Kind = "NETWORK"
	KindTimeout         Kind = "TIMEOUT"
	KindAuth            Kind = "AUTH"
	// KindIncompatible is a contract failure reported by an upstream
	// rather than detected by the contracts gate. It is fatal like CONTRACT.
	KindIncompatible    Kind = "INCOMPATIBLE"
	KindBadResponse     Kind = "BAD_RESPONSE"
	KindPayloadTooLarge Kind = "PAYLOAD_TOO_LARGE"
	KindCancelled       Kind = "CANCELLED"
	KindNotReady        Kind = "NOT_READY"
	KindContract        Kind = "CONTRACT"
	KindRateLimit       Kind = "RATE_LIMIT"
	KindHandshake       Kind = "HANDSHAKE"
	KindUnknown         Kind = "UNKNOWN"
)

// Error is the typed failure returned by the HTTP client and the adapters.
type Error struct {
	// Kind is the failure classification
	Kind Kind

	// Message is a human readable description
	Message string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Retryable reports whether the failure is transient
	Retryable bool

	// Detail carries optional extra context (never a response body)
	Detail string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.StatusCode != 0 {
		base += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	return base
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf classifies an arbitrary error. Context cancellation maps to
// KindCancelled and anything unrecognised to KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// IsFatalKind reports whether a failure of kind k must halt the handshake
// regardless of the remaining attempt budget.
func IsFatalKind(k Kind) bool {
	return k == KindAuth || k == KindContract || k == KindIncompatible
}

// IsRetryable reports whether err is a transient failure.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
