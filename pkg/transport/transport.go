package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultDialTimeout bounds connection establishment.
	DefaultDialTimeout = 10 * time.Second

	// DefaultHeaderTimeout bounds the wait for response headers. The body
	// of a streaming response is not subject to it.
	DefaultHeaderTimeout = 30 * time.Second

	// Catalog responses are small and change rarely; a short TTL avoids
	// refetching them every time the model picker opens.
	catalogCacheSize = 16
	catalogCacheTTL  = time.Minute

	// Error bodies are read fully but bounded.
	maxErrorBodyBytes = 1 << 20
)

// Request describes a single HTTP exchange against a model backend.
// Immutable once built by an adapter.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// StatusError is returned when a backend answers with a non-2xx status.
// The body is kept so adapters can surface the backend's own message.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, string(e.Body))
}

// Client wraps an http.Client tuned for streaming reads and keeps the
// bounded catalog cache.
type Client struct {
	http  *http.Client
	cache *expirable.LRU[string, []byte]
}

// NewClient creates a transport client. headerTimeout of zero selects
// DefaultHeaderTimeout.
func NewClient(headerTimeout time.Duration) *Client {
	if headerTimeout == 0 {
		headerTimeout = DefaultHeaderTimeout
	}
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: DefaultDialTimeout,
				}).DialContext,
				ResponseHeaderTimeout: headerTimeout,
			},
		},
		cache: expirable.NewLRU[string, []byte](catalogCacheSize, nil, catalogCacheTTL),
	}
}

// Get performs a buffered request and returns the full body. Responses
// are served from the catalog cache when the same request was answered
// within the cache TTL.
func (c *Client) Get(ctx context.Context, req Request) ([]byte, error) {
	key := cacheKey(req)
	if body, ok := c.cache.Get(key); ok {
		return body, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	applyHeaders(httpReq, req.Headers)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	c.cache.Add(key, body)
	return body, nil
}

// InvalidateCache drops all cached catalog responses.
func (c *Client) InvalidateCache() {
	c.cache.Purge()
}

func applyHeaders(httpReq *http.Request, headers map[string]string) {
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("Content-Type") == "" && httpReq.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
}

// cacheKey identifies a request by method, URL and sorted headers so two
// callers with different credentials never share an entry.
func cacheKey(req Request) string {
	pairs := make([]string, 0, len(req.Headers))
	for k, v := range req.Headers {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return req.Method + " " + req.URL + "\n" + strings.Join(pairs, "\n")
}
