package adapters

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"talos-hq/console/pkg/domain"
)

// HTTPAudit talks to the audit service.
type HTTPAudit struct {
	client    Requester
	validator Validator
	logger    *slog.Logger
}

// NewHTTPAudit creates an audit adapter on top of client. validator may be nil.
func NewHTTPAudit(client Requester, validator Validator, logger *slog.Logger) *HTTPAudit {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPAudit{
		client:    client,
		validator: validator,
		logger:    logger.With("component", "adapter", "source", string(domain.SourceAudit)),
	}
}

// Source implements SourceAdapter.
func (a *HTTPAudit) Source() domain.Source { return domain.SourceAudit }

// GetVersion implements SourceAdapter.
func (a *HTTPAudit) GetVersion(ctx context.Context) (domain.VersionInfo, error) {
	data, err := a.client.Do(ctx, http.MethodGet, "version", nil, nil)
	if err != nil {
		return domain.VersionInfo{}, err
	}
	return decodeVersion(data)
}

// GetHealth implements SourceAdapter.
func (a *HTTPAudit) GetHealth(ctx context.Context) (domain.Health, error) {
	data, err := a.client.Do(ctx, http.MethodGet, "health", nil, nil)
	if err != nil {
		return domain.Health{}, err
	}
	return decodeHealth(data)
}

// ListEvents implements AuditAdapter. Items that fail validation or
// decoding are logged and skipped.
func (a *HTTPAudit) ListEvents(ctx context.Context, limit int, before string) (domain.AuditPage, error) {
	if limit <= 0 || limit > MaxListItems {
		limit = MaxListItems
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if before != "" {
		params.Set("before", before)
	}

	data, err := a.client.Do(ctx, http.MethodGet, "api/events", params, nil)
	if err != nil {
		return domain.AuditPage{}, err
	}
	body, err := asObject(data, "events page")
	if err != nil {
		return domain.AuditPage{}, err
	}

	items := listItems(body, "items")
	page := domain.AuditPage{
		Items:      make([]domain.AuditEvent, 0, len(items)),
		NextCursor: str(body, "next_cursor"),
	}
	page.HasMore, _ = body["has_more"].(bool)

	for i, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			a.logger.Error("failed to parse audit event", "index", i, "error", "not an object")
			continue
		}
		if a.validator != nil {
			if err := a.validator.Validate(AuditEventSchema, m); err != nil {
				a.logger.Error("audit event failed validation", "index", i, "error", err)
				continue
			}
		}
		event, err := decodeEvent(m)
		if err != nil {
			a.logger.Error("failed to parse audit event", "index", i, "error", err)
			continue
		}
		page.Items = append(page.Items, event)
	}

	return page, nil
}
