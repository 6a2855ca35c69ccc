package adapters

import (
	"time"

	"variant-tracker/internal/types"
)

// ResolveVariant selects the matching color-group price and size
// availability from page for the requested (color, size). It never fails:
// a missing color or size means the variant is gone from sale, which is
// itself meaningful tracked information, so it is recorded as a
// zero-price, unavailable observation with an explicit reason instead of
// being dropped.
func ResolveVariant(page *types.PageModel, color, size string, now func() time.Time) types.Observation {
	obs := types.Observation{CapturedAt: now()}
	if page == nil {
		obs.Reason = types.ReasonPageNotFound
		return obs
	}

	group, ok := selectColorGroup(page, color)
	if !ok {
		obs.Reason = types.ReasonColorNotListed
		return obs
	}

	article, ok := findSize(page, size)
	if !ok {
		obs.Reason = types.ReasonSizeNotListed
		return obs
	}

	obs.Price = group.Price
	obs.Available = article.Available
	obs.Reason = types.ReasonOK
	return obs
}

// selectColorGroup picks the group containing the requested color, exact
// match. An empty color means "whichever group is currently primary": the
// first group flagged as selected, falling back to the first group in
// document order when the page flags none.
func selectColorGroup(page *types.PageModel, color string) (types.ColorGroup, bool) {
	if len(page.ColorGroups) == 0 {
		return types.ColorGroup{}, false
	}

	if color == "" {
		for _, group := range page.ColorGroups {
			if group.Selected {
				return group, true
			}
		}
		return page.ColorGroups[0], true
	}

	for _, group := range page.ColorGroups {
		for _, name := range group.Colors {
			if name == color {
				return group, true
			}
		}
	}
	return types.ColorGroup{}, false
}

func findSize(page *types.PageModel, size string) (types.ArticleSize, bool) {
	for _, article := range page.Sizes {
		if article.Name == size {
			return article, true
		}
	}
	return types.ArticleSize{}, false
}
