package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"variant-tracker/internal/types"
)

// BrowserClient retrieves pages through a headless browser, for retailers
// that only render variant data client side.
type BrowserClient struct {
	config *types.Config
	logger types.Logger
}

// NewBrowserClient creates a new browser client.
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// GetPageContent navigates to url and returns the rendered HTML. Errors
// surface as *types.FetchError so callers treat browser and HTTP fetches
// uniformly.
func (b *BrowserClient) GetPageContent(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.config.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(500*time.Millisecond), // let variant widgets settle
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &types.FetchError{URL: url, Err: fmt.Errorf("headless fetch: %w", err)}
	}

	b.logger.Debugf("retrieved rendered page from %s (%d bytes)", url, len(html))
	return html, nil
}
