package utils

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"variant-tracker/internal/types"
)

// HTTPClient fetches retailer pages with a bounded timeout. Each fetch is
// a fresh anonymous GET; no cookies or session state are carried across
// requests. A short-lived LRU body cache lets several orders against the
// same product page share one fetch within a cycle.
type HTTPClient struct {
	client *resty.Client
	logger types.Logger
	cache  *expirable.LRU[string, string]
}

// NewHTTPClient creates a new HTTP client with the given configuration.
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := resty.New().
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")

	var cache *expirable.LRU[string, string]
	if config.PageCacheTTL > 0 && config.PageCacheSize > 0 {
		cache = expirable.NewLRU[string, string](config.PageCacheSize, nil, config.PageCacheTTL)
	}

	return &HTTPClient{
		client: client,
		logger: logger,
		cache:  cache,
	}
}

// SetTransport swaps the underlying HTTP transport. Used by tests to
// install mock responders.
func (h *HTTPClient) SetTransport(transport http.RoundTripper) {
	h.client.SetTransport(transport)
}

// Get performs a single GET and returns the response body. Transport
// failures, timeouts, and non-2xx statuses are reported as a
// *types.FetchError; page-not-found detection is the adapter's concern,
// never inferred here.
func (h *HTTPClient) Get(ctx context.Context, url string) (string, error) {
	if h.cache != nil {
		if body, ok := h.cache.Get(url); ok {
			h.logger.Debugf("page cache hit for %s", url)
			return body, nil
		}
	}

	resp, err := h.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", &types.FetchError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &types.FetchError{
			URL:        url,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode()),
		}
	}

	body := string(resp.Body())
	h.logger.Debugf("retrieved %d bytes from %s", len(body), url)
	if h.cache != nil {
		h.cache.Add(url, body)
	}
	return body, nil
}

// Close cleans up resources.
func (h *HTTPClient) Close() {
	if h.cache != nil {
		h.cache.Purge()
	}
}
