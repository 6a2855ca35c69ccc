package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"variant-tracker/internal/types"
)

// Under Armour selects variants client side, so the product URL carries no
// color or size query dimension at all.
const underArmourURLTemplate = "https://www.underarmour.de/de-de/p/%s/%s.html"

// UnderArmourAdapter handles tracking for underarmour.de product pages.
type UnderArmourAdapter struct {
	*BaseAdapter
}

// NewUnderArmourAdapter creates a new Under Armour adapter.
func NewUnderArmourAdapter(config *types.Config, logger types.Logger) *UnderArmourAdapter {
	return &UnderArmourAdapter{
		BaseAdapter: NewBaseAdapter(config, logger),
	}
}

// Matches reports whether this adapter handles the given retailer id.
func (u *UnderArmourAdapter) Matches(retailerID string) bool {
	return strings.EqualFold(retailerID, "underarmour")
}

// BuildURL derives the canonical product page URL from the order.
func (u *UnderArmourAdapter) BuildURL(order types.TrackedOrder) string {
	return fmt.Sprintf(underArmourURLTemplate,
		url.PathEscape(order.Name),
		order.ProductIdentifier,
	)
}

// FetchPage retrieves the page at pageURL and extracts its color groups
// and sizes, short-circuiting on the retailer's error-page marker.
func (u *UnderArmourAdapter) FetchPage(ctx context.Context, pageURL string) (*types.PageModel, error) {
	html, err := u.GetPageContent(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := u.ParseHTML(html)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err}
	}

	if doc.Find("section.page-not-found").Length() > 0 {
		return nil, types.ErrPageNotFound
	}

	return u.extractPageModel(doc), nil
}

func (u *UnderArmourAdapter) extractPageModel(doc *goquery.Document) *types.PageModel {
	page := &types.PageModel{}

	doc.Find("ul.color-groups li.group").Each(func(_ int, group *goquery.Selection) {
		cg := types.ColorGroup{
			Price:    u.ParsePrice(group.Find("span.sales-price").First().Text()),
			Selected: group.HasClass("active"),
		}
		group.Find("button[data-swatch]").Each(func(_ int, swatch *goquery.Selection) {
			if name := swatch.AttrOr("data-swatch", ""); name != "" {
				cg.Colors = append(cg.Colors, name)
			}
		})
		page.ColorGroups = append(page.ColorGroups, cg)
	})

	// Size labels come from the option value, availability from the
	// disabled marker on the option itself.
	doc.Find("select.size-select option").Each(func(_ int, option *goquery.Selection) {
		name := strings.TrimSpace(option.AttrOr("value", ""))
		if name == "" {
			return
		}
		_, disabled := option.Attr("disabled")
		page.Sizes = append(page.Sizes, types.ArticleSize{
			Name:      name,
			Available: !disabled,
		})
	})

	u.logger.Debugf("underarmour page model: %d color groups, %d sizes",
		len(page.ColorGroups), len(page.Sizes))
	return page
}
