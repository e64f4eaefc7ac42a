// Package fulfillment provides the Printful API client used to inspect and
// confirm orders. Calls are single-shot: a failed attempt is terminal for that
// webhook delivery and the caller decides what to record.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/allisson/order-guard/internal/errors"
)

// DefaultAPIURL is the production Printful API base URL.
const DefaultAPIURL = "https://api.printful.com"

// Confirmable statuses: an order in any other status has already advanced and
// must not be confirmed again.
const (
	StatusDraft   = "draft"
	StatusPending = "pending"
)

// OrderStatus is the remote view of an order, reduced to what the gatekeeper
// needs for the pre-confirmation re-check.
type OrderStatus struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Confirmable reports whether the order may still be confirmed.
func (o *OrderStatus) Confirmable() bool {
	return o.Status == StatusDraft || o.Status == StatusPending
}

// Config holds Printful client configuration.
type Config struct {
	APIURL         string
	APIKey         string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

// Client is an HTTP client for the Printful orders API. Outbound calls pass
// through a token bucket so webhook bursts don't trip Printful's own limits.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Printful API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst)
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

// GetOrder fetches the current state of an order. Returns an error on any
// transport or HTTP-status failure; the caller decides whether a failed fetch
// blocks confirmation.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*OrderStatus, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/orders/%d", c.baseURL, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build get order request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch order")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, fmt.Sprintf("order %d", orderID))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("failed to fetch order %d: status %d: %s", orderID, resp.StatusCode, body)
	}

	var payload struct {
		Result OrderStatus `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode order response")
	}

	return &payload.Result, nil
}

// ConfirmOrder requests fulfillment confirmation for a draft order. Returns
// nil only on HTTP success. No retries: the webhook sender redelivers, or the
// failure stays queryable as an error event.
func (c *Client) ConfirmOrder(ctx context.Context, orderID int64) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/orders/%d/confirm", c.baseURL, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return apperrors.Wrap(err, "failed to build confirm order request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "failed to confirm order")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("failed to confirm order %d: status %d: %s", orderID, resp.StatusCode, body)
	}

	c.logger.Info("confirmed order", slog.Int64("order_id", orderID))
	return nil
}

// wait blocks on the outbound rate limiter if one is configured.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.Wrap(err, "rate limiter wait aborted")
	}
	return nil
}
