// Package crm implements the CRM collaborator over a REST API: tagging,
// custom fields, outbound messaging, webhooks, opportunities, and bookings.
// Reference data (calendars, tags, custom fields) is cached with a TTL at
// this boundary; the engine never depends on caching semantics.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/internal/logging"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
)

const defaultTimeout = 15 * time.Second

// APIError is a typed failure from the CRM API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm api error: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the CRM REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger

	calendars    *cache[[]Calendar]
	tags         *cache[[]string]
	customFields *cache[[]CustomField]
}

// Calendar is one bookable calendar exposed by the CRM.
type Calendar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomField describes one contact custom field definition.
type CustomField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCacheTTL overrides the reference-data cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.calendars.ttl = ttl
		c.tags.ttl = ttl
		c.customFields.ttl = ttl
	}
}

// New creates a CRM client for the given API base URL and bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		token:        token,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       logging.NewNop(),
		calendars:    newCache[[]Calendar](defaultCacheTTL),
		tags:         newCache[[]string](defaultCacheTTL),
		customFields: newCache[[]CustomField](defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddTag implements ports.CRMClient.
func (c *Client) AddTag(ctx context.Context, contactID, tag string) error {
	return c.do(ctx, http.MethodPost, "/contacts/"+url.PathEscape(contactID)+"/tags",
		map[string]any{"tag": tag}, nil)
}

// RemoveTag implements ports.CRMClient.
func (c *Client) RemoveTag(ctx context.Context, contactID, tag string) error {
	return c.do(ctx, http.MethodDelete,
		"/contacts/"+url.PathEscape(contactID)+"/tags/"+url.PathEscape(tag), nil, nil)
}

// UpdateCustomField implements ports.CRMClient.
func (c *Client) UpdateCustomField(ctx context.Context, update ports.FieldUpdate) error {
	return c.do(ctx, http.MethodPut,
		"/contacts/"+url.PathEscape(update.ContactID)+"/custom-fields",
		map[string]any{"field": update.Field, "value": update.Value}, nil)
}

// SendMessage implements ports.CRMClient.
func (c *Client) SendMessage(ctx context.Context, msg ports.OutboundMessage) error {
	return c.do(ctx, http.MethodPost, "/conversations/messages", map[string]any{
		"contact_id": msg.ContactID,
		"channel":    string(msg.Channel),
		"subject":    msg.Subject,
		"body":       msg.Body,
	}, nil)
}

// SendWebhook POSTs the payload to the target URL directly, outside the CRM
// API surface.
func (c *Client) SendWebhook(ctx context.Context, req ports.WebhookRequest) error {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	return nil
}

// CreateOpportunity implements ports.CRMClient.
func (c *Client) CreateOpportunity(ctx context.Context, opp ports.Opportunity) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/opportunities", map[string]any{
		"contact_id":  opp.ContactID,
		"pipeline_id": opp.PipelineID,
		"stage_id":    opp.StageID,
		"name":        opp.Name,
		"value":       opp.Value,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateBooking implements ports.CRMClient.
func (c *Client) CreateBooking(ctx context.Context, req ports.BookingRequest) (*ports.Booking, error) {
	var out ports.Booking
	err := c.do(ctx, http.MethodPost,
		"/calendars/"+url.PathEscape(req.CalendarID)+"/bookings", map[string]any{
			"contact_id": req.ContactID,
			"start_time": req.StartTime,
			"notes":      req.Notes,
		}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Calendars lists the bookable calendars, served from cache within the TTL.
func (c *Client) Calendars(ctx context.Context) ([]Calendar, error) {
	return c.calendars.get(func() ([]Calendar, error) {
		var out []Calendar
		if err := c.do(ctx, http.MethodGet, "/calendars", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Tags lists the known contact tags, served from cache within the TTL.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	return c.tags.get(func() ([]string, error) {
		var out []string
		if err := c.do(ctx, http.MethodGet, "/tags", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// CustomFields lists the custom field definitions, served from cache within
// the TTL.
func (c *Client) CustomFields(ctx context.Context) ([]CustomField, error) {
	return c.customFields.get(func() ([]CustomField, error) {
		var out []CustomField
		if err := c.do(ctx, http.MethodGet, "/custom-fields", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("crm call failed", "method", method, "path", path, "status", resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode crm response: %w", err)
		}
	}
	return nil
}
