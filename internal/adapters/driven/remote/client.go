package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.RemoteAPI = (*Client)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// HeaderIdempotencyKey lets the backend de-duplicate replayed writes.
	HeaderIdempotencyKey = "Idempotency-Key"
)

// Config configures the REST client.
type Config struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client is the REST client for the POS backend.
type Client struct {
	baseURL     string
	http        *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a client. An empty token sends no Authorization header.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", domain.ErrInvalidInput, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := &http.Client{}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	hc.Timeout = timeout

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        hc,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

// CreateSale posts a create-sale payload verbatim.
func (c *Client) CreateSale(ctx context.Context, payload json.RawMessage, idempotencyKey string) (json.RawMessage, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[HeaderIdempotencyKey] = idempotencyKey
	}
	body, err := c.do(ctx, http.MethodPost, "/sales/", nil, payload, headers)
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return body, nil
}

// ListProducts fetches a shop's products. Both a bare array and a
// paginated {"results": [...]} body are accepted.
func (c *Client) ListProducts(ctx context.Context, shopID int64) ([]domain.CachedProduct, error) {
	query := url.Values{"shop": []string{strconv.FormatInt(shopID, 10)}}
	body, err := c.do(ctx, http.MethodGet, "/products/", query, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products, err := decodeProducts(body)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	payload []byte,
	headers map[string]string,
) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrRemoteUnreachable, err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteUnreachable, method, endpoint, err)
	}
	defer resp.Body.Close()

	c.rateLimiter.Observe(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
			URL:        endpoint,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrRemoteUnreachable, err)
	}
	return data, nil
}
