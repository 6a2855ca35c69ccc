package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"variant-tracker/internal/types"
)

// Demandware-style product URL: the product identifier appears both as a
// path segment and as the scope key of the variation query parameters. An
// empty color keeps the dwvar key with a blank value so the URL shape
// stays identical regardless of which variant dimensions are set.
const lululemonURLTemplate = "https://www.lululemon.de/en-de/p/%s/%s.html?dwvar_%s_color=%s&dwvar_%s_size=%s"

// LululemonAdapter handles tracking for lululemon.de product pages.
type LululemonAdapter struct {
	*BaseAdapter
}

// NewLululemonAdapter creates a new Lululemon adapter.
func NewLululemonAdapter(config *types.Config, logger types.Logger) *LululemonAdapter {
	return &LululemonAdapter{
		BaseAdapter: NewBaseAdapter(config, logger),
	}
}

// Matches reports whether this adapter handles the given retailer id.
func (l *LululemonAdapter) Matches(retailerID string) bool {
	return strings.EqualFold(retailerID, "lululemon")
}

// BuildURL derives the canonical product page URL from the order. Pure and
// deterministic: the same order always yields the same URL.
func (l *LululemonAdapter) BuildURL(order types.TrackedOrder) string {
	id := order.ProductIdentifier
	return fmt.Sprintf(lululemonURLTemplate,
		url.PathEscape(order.Name),
		id, id,
		url.QueryEscape(order.Color),
		id,
		url.QueryEscape(order.Size),
	)
}

// FetchPage retrieves the page at pageURL and extracts its color groups
// and sizes. The not-found predicate is evaluated before any extraction so
// a removed product is never mistaken for a valid page with no variants.
func (l *LululemonAdapter) FetchPage(ctx context.Context, pageURL string) (*types.PageModel, error) {
	html, err := l.GetPageContent(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := l.ParseHTML(html)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err}
	}

	if doc.Find("h1.error-page-title").Length() > 0 {
		return nil, types.ErrPageNotFound
	}

	return l.extractPageModel(doc), nil
}

// extractPageModel walks the variation widgets. Extraction degrades per
// element: a malformed group or size control is recorded with defaults and
// never aborts the rest of the page.
func (l *LululemonAdapter) extractPageModel(doc *goquery.Document) *types.PageModel {
	page := &types.PageModel{}

	doc.Find("div.color-group").Each(func(_ int, group *goquery.Selection) {
		cg := types.ColorGroup{
			Price:    l.ParsePrice(group.Find("span.price").First().Text()),
			Selected: group.HasClass("selected"),
		}
		group.Find("a.color-swatch").Each(func(_ int, swatch *goquery.Selection) {
			if name := swatch.AttrOr("data-color", ""); name != "" {
				cg.Colors = append(cg.Colors, name)
			}
		})
		page.ColorGroups = append(page.ColorGroups, cg)
	})

	doc.Find("div.size-selector input").Each(func(_ int, input *goquery.Selection) {
		name := strings.TrimPrefix(input.AttrOr("id", ""), "size_")
		if name == "" {
			return
		}
		_, disabled := input.Attr("disabled")
		page.Sizes = append(page.Sizes, types.ArticleSize{
			Name:      name,
			Available: !disabled,
		})
	})

	l.logger.Debugf("lululemon page model: %d color groups, %d sizes",
		len(page.ColorGroups), len(page.Sizes))
	return page
}
