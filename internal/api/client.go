// Package api is the HTTP+JSON client for the remote dataset service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/leefowlercu/mldata/internal/config"
	"github.com/leefowlercu/mldata/internal/metrics"
)

const (
	DefaultTimeout = 30 * time.Second
)

// Client talks to the remote dataset API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	owner      string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithOwner sets the owner prefix used to namespace bare dataset prefixes.
func WithOwner(owner string) Option {
	return func(c *Client) {
		c.owner = strings.Trim(owner, "/")
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// NewFromConfig creates a Client from the root config. Options are applied
// after the configured ones.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is not configured")
	}

	base := []Option{
		WithTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second),
		WithToken(cfg.API.ResolveToken()),
		WithOwner(cfg.API.Owner),
		WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
	}

	return New(cfg.API.BaseURL, append(base, opts...)...), nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolvePrefix namespaces a bare prefix with the configured owner. Prefixes
// that already contain "/" and clients without an owner return prefix as is.
func (c *Client) ResolvePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if c.owner == "" || strings.Contains(prefix, "/") {
		return prefix
	}
	return c.owner + "/" + prefix
}

// datasetPath builds /datasets/<prefix>, escaping each prefix segment.
func datasetPath(prefix string) string {
	segments := strings.Split(strings.Trim(prefix, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/datasets/" + strings.Join(segments, "/")
}

func elementsPath(prefix string) string {
	return datasetPath(prefix) + "/elements"
}

func elementPath(prefix, id string) string {
	return elementsPath(prefix) + "/" + url.PathEscape(id)
}

// do sends a request and returns the response for a 2xx status. Any other
// status is drained into a *StatusError. endpoint is the metric label.
func (c *Client) do(ctx context.Context, method, path, endpoint string, body io.Reader, contentType string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter; %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request; %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(method, endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("failed to reach %s; %w", c.baseURL, err)
	}
	metrics.RecordAPIRequest(method, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil {
			statusErr.Message = errResp.Error
		}
		return nil, statusErr
	}

	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, endpoint string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("failed to encode request; %w", err)
		}
		body = buf
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, endpoint, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response; %w", err)
	}

	return nil
}
