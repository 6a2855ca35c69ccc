package adapters

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"variant-tracker/internal/types"
	"variant-tracker/utils"
)

// BaseAdapter provides the fetch clients and parsing helpers shared by all
// retailer adapters. Store-specific adapters embed it and add their URL
// template, not-found predicate, and selectors.
type BaseAdapter struct {
	config        *types.Config
	logger        types.Logger
	httpClient    *utils.HTTPClient
	browserClient *utils.BrowserClient
}

// NewBaseAdapter creates a base adapter with initialized HTTP and browser
// clients.
func NewBaseAdapter(config *types.Config, logger types.Logger) *BaseAdapter {
	return &BaseAdapter{
		config:        config,
		logger:        logger,
		httpClient:    utils.NewHTTPClient(config, logger),
		browserClient: utils.NewBrowserClient(config, logger),
	}
}

// GetPageContent retrieves the HTML of a page using either the HTTP client
// or the headless browser, depending on configuration.
func (b *BaseAdapter) GetPageContent(ctx context.Context, url string) (string, error) {
	if b.config.UseHeadlessBrowser {
		return b.browserClient.GetPageContent(ctx, url)
	}
	return b.httpClient.Get(ctx, url)
}

// ParseHTML parses HTML content into a goquery document.
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

var priceCleaner = strings.NewReplacer(
	"€", "",
	"$", "",
	"£", "",
	"EUR", "",
	"USD", "",
	" ", "",
	" ", "",
)

// ParsePrice turns displayed price text like "€ 98,00" into a number.
// The currency symbol is stripped and a decimal comma is normalized to a
// period. Unparsable text yields 0 rather than an error: a partial page
// model is preferable to aborting the whole parse.
func (b *BaseAdapter) ParsePrice(text string) float64 {
	cleaned := priceCleaner.Replace(strings.TrimSpace(text))
	// "1.299,95" style: the period is a thousands separator.
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		b.logger.Debugf("unparsable price text %q, defaulting to 0", text)
		return 0
	}
	return price
}

// SetTransport swaps the HTTP transport of the underlying client. Used by
// tests to install mock responders.
func (b *BaseAdapter) SetTransport(transport http.RoundTripper) {
	b.httpClient.SetTransport(transport)
}

// Config returns the adapter configuration.
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}

// Close cleans up resources.
func (b *BaseAdapter) Close() {
	if b.httpClient != nil {
		b.httpClient.Close()
	}
}

// Observe runs one full adapter pass for an order: build the product page
// URL, fetch and parse it, and resolve the requested variant. A confirmed
// missing page short-circuits before any extraction and is recorded as a
// zero-price, unavailable observation; fetch failures propagate so the
// caller can skip the order for this cycle.
func Observe(ctx context.Context, adapter types.RetailerAdapter, order types.TrackedOrder, now func() time.Time) (types.Observation, error) {
	url := adapter.BuildURL(order)
	page, err := adapter.FetchPage(ctx, url)
	if errors.Is(err, types.ErrPageNotFound) {
		return types.Observation{
			Reason:     types.ReasonPageNotFound,
			CapturedAt: now(),
		}, nil
	}
	if err != nil {
		return types.Observation{}, err
	}
	return ResolveVariant(page, order.Color, order.Size, now), nil
}
