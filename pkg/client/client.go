package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"talos-hq/console/pkg/config"
	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/redact"
	"talos-hq/console/pkg/telemetry/logging"
	"talos-hq/console/pkg/telemetry/metrics"
	"talos-hq/console/pkg/telemetry/tracing"
)

const (
	// DefaultRetryAfter is the 429 wait used when Retry-After is absent or unparseable.
	DefaultRetryAfter = 1 * time.Second

	// jitterFraction bounds the random delay added to each backoff.
	jitterFraction = 0.1

	// RequestIDHeader carries the per-attempt request identifier.
	RequestIDHeader = "X-Request-ID"
)

// Config contains the settings of one Client.
type Config struct {
	// Service names the upstream in logs and metrics ("gateway", "audit").
	Service string

	// BaseURL is the URL request paths are resolved against.
	BaseURL string

	// Token is sent as a bearer credential when not empty.
	Token string

	// UserAgent is sent with every request when not empty.
	UserAgent string

	// MaxAttempts is the attempt budget of a single Do call.
	MaxAttempts int

	// TotalTimeout bounds each attempt, including reading the body.
	TotalTimeout time.Duration

	// MaxResponseSize caps the response body in bytes.
	MaxResponseSize int64

	// BaseDelay and MaxDelay shape the exponential backoff.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// RetryAfter is the 429 wait when the server does not send one.
	RetryAfter time.Duration
}

// ConfigFrom builds a client Config from the console configuration.
func ConfigFrom(service string, svc config.ServiceConfig, httpCfg config.HTTPConfig, userAgent string) Config {
	return Config{
		Service:         service,
		BaseURL:         svc.BaseURL,
		Token:           svc.Token,
		UserAgent:       userAgent,
		MaxAttempts:     httpCfg.MaxAttempts,
		TotalTimeout:    httpCfg.TotalTimeout,
		MaxResponseSize: httpCfg.MaxResponseSize,
		BaseDelay:       httpCfg.BaseDelay,
		MaxDelay:        httpCfg.MaxDelay,
	}
}

// Client issues JSON requests against one upstream service with timeouts,
// retry and backoff, rate-limit handling, a response size cap and
// redaction of every successful body.
//
// Client does not own its *http.Client; the connection pool belongs to the
// caller (the supervisor) and is shared between clients.
type Client struct {
	cfg     Config
	base    *url.URL
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	jitter  func() float64
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger, collector *metrics.Collector) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = config.DefaultMaxAttempts
	}
	if cfg.TotalTimeout <= 0 {
		cfg.TotalTimeout = config.DefaultTotalTimeout
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = config.DefaultMaxResponseSize
	}
	if cfg.BaseDelay < 0 {
		cfg.BaseDelay = 0
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = DefaultRetryAfter
	}
	if cfg.Service == "" {
		cfg.Service = base.Host
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:     cfg,
		base:    base,
		http:    httpClient,
		logger:  logger.With("component", "client", "service", cfg.Service),
		metrics: collector,
		jitter:  rand.Float64,
	}, nil
}

// WithTracer makes c open a client span per Do call and propagate its trace
// context to the upstream. It returns c.
func (c *Client) WithTracer(t *tracing.Tracer) *Client {
	c.tracer = t
	return c
}

// Service returns the upstream name of this client.
func (c *Client) Service() string {
	return c.cfg.Service
}

// outcome is the classified result of a single attempt.
type outcome struct {
	value  any
	err    *domain.Error
	retry  bool
	wait   time.Duration // fixed wait before the next attempt; backoff when zero
	status int
}

// Do issues method against path (resolved against the base URL) with the
// given query parameters and optional JSON body. On success it returns the
// decoded and redacted JSON value. Failures are always *domain.Error.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body any) (any, error) {
	target := c.base.JoinPath(path)
	// JoinPath leaves the path relative when the base URL has none.
	if !strings.HasPrefix(target.Path, "/") {
		target.Path = "/" + target.Path
		target.RawPath = ""
	}
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	ctx, span := c.tracer.Start(ctx, c.cfg.Service+" "+method+" "+target.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracing.Service(domain.Source(c.cfg.Service))),
	)
	defer span.End()

	value, err := c.do(ctx, method, target, body)
	status := 0
	var derr *domain.Error
	if errors.As(err, &derr) {
		status = derr.StatusCode
	}
	tracing.SetHTTPAttributes(span, method, target.Path, status)
	tracing.RecordError(span, err)
	return value, err
}

func (c *Client) do(ctx context.Context, method string, target *url.URL, body any) (any, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &domain.Error{Kind: domain.KindBadResponse, Message: "failed to encode request body", Cause: err}
		}
	}

	var last *domain.Error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		out := c.attempt(ctx, attempt, method, target.String(), payload)
		if out.err == nil {
			return out.value, nil
		}
		last = out.err

		if !out.retry {
			c.metrics.RecordError(c.cfg.Service, string(out.err.Kind))
			return nil, out.err
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		wait := out.wait
		if out.status != http.StatusTooManyRequests {
			wait = c.backoff(attempt)
		}
		c.logger.Debug("retrying request",
			"method", method,
			"target", target.Path,
			"attempt", attempt,
			"max_attempts", c.cfg.MaxAttempts,
			"backoff", wait,
		)
		if err := sleep(ctx, wait); err != nil {
			c.metrics.RecordError(c.cfg.Service, string(domain.KindCancelled))
			return nil, &domain.Error{Kind: domain.KindCancelled, Message: "request cancelled", Cause: err}
		}
	}

	final := &domain.Error{
		Kind:       domain.KindNetwork,
		Message:    fmt.Sprintf("%s %s failed after %d attempts", method, target.Path, c.cfg.MaxAttempts),
		StatusCode: last.StatusCode,
		Retryable:  true,
		Cause:      last,
	}
	if last.Kind == domain.KindTimeout {
		final.Kind = domain.KindTimeout
	}
	c.metrics.RecordError(c.cfg.Service, string(final.Kind))
	return nil, final
}

// attempt performs one HTTP exchange and classifies its result.
func (c *Client) attempt(ctx context.Context, n int, method, target string, payload []byte) outcome {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.TotalTimeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, target, bodyReader)
	if err != nil {
		return outcome{err: &domain.Error{Kind: domain.KindBadResponse, Message: "failed to create request", Cause: err}}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	tracing.Inject(ctx, req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		out := c.transportFailure(ctx, err)
		c.logAttempt(ctx, n, method, req.URL.Path, 0, time.Since(start), out.err)
		return out
	}
	defer resp.Body.Close()

	out := c.classify(attemptCtx, resp)
	out.status = resp.StatusCode
	c.logAttempt(ctx, n, method, req.URL.Path, resp.StatusCode, time.Since(start), out.err)
	return out
}

// transportFailure classifies an error returned by http.Client.Do.
func (c *Client) transportFailure(parent context.Context, err error) outcome {
	if parent.Err() != nil {
		return outcome{err: &domain.Error{Kind: domain.KindCancelled, Message: "request cancelled", Cause: err}}
	}
	if isTimeout(err) {
		return outcome{
			err:   &domain.Error{Kind: domain.KindTimeout, Message: fmt.Sprintf("request timed out after %s", c.cfg.TotalTimeout), Retryable: true, Cause: err},
			retry: true,
		}
	}
	return outcome{
		err:   &domain.Error{Kind: domain.KindNetwork, Message: "transport failure", Retryable: true, Cause: err},
		retry: true,
	}
}

// classify maps a response onto an outcome, reading the body only for
// successful responses whose declared length fits the cap.
func (c *Client) classify(ctx context.Context, resp *http.Response) outcome {
	status := resp.StatusCode

	switch {
	case status == http.StatusTooManyRequests:
		discard(resp.Body)
		return outcome{
			err:   &domain.Error{Kind: domain.KindRateLimit, Message: "rate limited", StatusCode: status, Retryable: true},
			retry: true,
			wait:  parseRetryAfter(resp.Header.Get("Retry-After"), c.cfg.RetryAfter),
		}

	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		discard(resp.Body)
		return outcome{err: &domain.Error{Kind: domain.KindAuth, Message: "authentication rejected", StatusCode: status}}

	case status == http.StatusNotFound:
		discard(resp.Body)
		return outcome{err: &domain.Error{Kind: domain.KindBadResponse, Message: "resource not found", StatusCode: status}}

	case status >= 500:
		discard(resp.Body)
		return outcome{
			err:   &domain.Error{Kind: domain.KindNetwork, Message: "server error", StatusCode: status, Retryable: true},
			retry: true,
		}

	case status >= 300:
		discard(resp.Body)
		return outcome{err: &domain.Error{Kind: domain.KindBadResponse, Message: "unexpected status", StatusCode: status}}
	}

	if resp.ContentLength > c.cfg.MaxResponseSize {
		return outcome{err: &domain.Error{
			Kind:       domain.KindPayloadTooLarge,
			Message:    fmt.Sprintf("declared response size %d exceeds limit %d", resp.ContentLength, c.cfg.MaxResponseSize),
			StatusCode: status,
		}}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseSize+1))
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return outcome{
				err:   &domain.Error{Kind: domain.KindTimeout, Message: "timed out reading response", StatusCode: status, Retryable: true, Cause: err},
				retry: true,
			}
		}
		return outcome{
			err:   &domain.Error{Kind: domain.KindNetwork, Message: "failed to read response", StatusCode: status, Retryable: true, Cause: err},
			retry: true,
		}
	}
	if int64(len(data)) > c.cfg.MaxResponseSize {
		return outcome{err: &domain.Error{
			Kind:       domain.KindPayloadTooLarge,
			Message:    fmt.Sprintf("response exceeds limit %d", c.cfg.MaxResponseSize),
			StatusCode: status,
		}}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return outcome{}
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return outcome{err: &domain.Error{Kind: domain.KindBadResponse, Message: "invalid JSON response", StatusCode: status, Cause: err}}
	}
	return outcome{value: redact.Value(decoded)}
}

// backoff returns min(MaxDelay, BaseDelay*2^(attempt-1)) plus up to 10% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.cfg.MaxDelay) {
		delay = float64(c.cfg.MaxDelay)
	}
	return time.Duration(delay + delay*jitterFraction*c.jitter())
}

func (c *Client) logAttempt(ctx context.Context, n int, method, target string, status int, latency time.Duration, failure *domain.Error) {
	c.metrics.RecordAttempt(c.cfg.Service, method, status, latency)

	level := slog.LevelInfo
	args := []any{
		"method", method,
		"target", target,
		"status", status,
		"latency_ms", latency.Milliseconds(),
		"attempt", n,
	}
	if traceID := tracing.TraceID(ctx); traceID != "" {
		args = append(args, "trace_id", traceID)
	}
	if failure != nil {
		level = slog.LevelWarn
		args = append(args, "kind", string(failure.Kind), "error", failure.Message)
	}
	c.logger.Log(ctx, level, "http attempt", args...)
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string, fallback time.Duration) time.Duration {
	if header == "" {
		return fallback
	}

	if seconds, err := strconv.ParseFloat(header, 64); err == nil && seconds >= 0 {
		return time.Duration(seconds * float64(time.Second))
	}

	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
		return 0
	}

	return fallback
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// discard drains a small amount of an unread body so the connection can be reused.
func discard(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
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
