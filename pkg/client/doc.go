// Package client implements the resilient JSON-over-HTTP client shared by
// the gateway and audit adapters.
//
// Each Do call makes up to MaxAttempts attempts. The status of every
// attempt decides the next step:
//
//   - 2xx: body is size-checked, decoded and passed through redact.Value
//   - 429: wait Retry-After (default 1s) and try again; the attempt counts
//   - 401, 403: AUTH, returned immediately
//   - 404 and other 4xx: BAD_RESPONSE, returned immediately
//   - 5xx, timeouts, transport failures: exponential backoff with jitter
//
// A declared Content-Length above MaxResponseSize fails with
// PAYLOAD_TOO_LARGE before the body is read. Exhausting the budget fails
// with a retryable NETWORK error (TIMEOUT when the last attempt timed out).
//
// Every attempt is logged as "http attempt" with method, target, status,
// latency_ms and attempt. Bodies are never logged.
package client
