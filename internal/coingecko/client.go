// Package coingecko talks to the CoinGecko v3 REST API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/metrics"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/queue"
)

const maxBodySize = 10 << 20

// Fetcher returns the raw JSON body of a CoinGecko endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

type Client struct {
	baseURL string
	apiKey  string
	keyType string
	client  *http.Client
	queue   *queue.Queue
}

type ClientOption func(*Client)

// WithAPIKey sets the key and its tier ("pro" or "demo").
func WithAPIKey(key, keyType string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
		c.keyType = keyType
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.client.Timeout = d }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithQueue routes every request through q.
func WithQueue(q *queue.Queue) ClientOption {
	return func(c *Client) { c.queue = q }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		keyType: commons.APIKeyTypePro,
		client:  &http.Client{Timeout: commons.DefaultUpstreamTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.queue == nil {
		return c.fetch(ctx, endpoint, params)
	}
	return queue.Submit(ctx, c.queue, func(ctx context.Context) ([]byte, error) {
		return c.fetch(ctx, endpoint, params)
	})
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	endpoint = strings.TrimLeft(endpoint, "/")
	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if header := c.keyHeader(); header != "" {
		req.Header.Set(header, c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(metrics.StatusClass(0)).Inc()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequests.WithLabelValues(metrics.StatusClass(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			Status:   resp.StatusCode,
			Endpoint: endpoint,
			Message:  errorMessage(resp.StatusCode, body),
		}
	}

	if len(body) == 0 {
		return nil, model.ErrNoData
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON from %s", endpoint)
	}
	return body, nil
}

func (c *Client) keyHeader() string {
	if c.apiKey == "" {
		return ""
	}
	if c.keyType == commons.APIKeyTypeDemo {
		return "x-cg-demo-api-key"
	}
	return "x-cg-pro-api-key"
}

// errorMessage prefers the message CoinGecko puts in its error bodies.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error  json.RawMessage `json:"error"`
		Status struct {
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Status.ErrorMessage != "" {
			return payload.Status.ErrorMessage
		}
		var msg string
		if json.Unmarshal(payload.Error, &msg) == nil && msg != "" {
			return msg
		}
	}
	return http.StatusText(status)
}
