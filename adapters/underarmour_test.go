package adapters

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"variant-tracker/internal/types"
)

const underArmourProductHTML = `<html><body>
<ul class="color-groups">
  <li class="group active">
    <span class="sales-price">$54.99</span>
    <button data-swatch="Black"></button>
    <button data-swatch="Pitch Gray"></button>
  </li>
  <li class="group">
    <span class="sales-price">$44.99</span>
    <button data-swatch="Royal"></button>
  </li>
</ul>
<select class="size-select">
  <option value="">Select size</option>
  <option value="SM">SM</option>
  <option value="MD" disabled>MD</option>
  <option value="LG">LG</option>
</select>
</body></html>`

func newTestUnderArmourAdapter(t *testing.T) (*UnderArmourAdapter, *httpmock.MockTransport) {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.PageCacheTTL = 0

	adapter := NewUnderArmourAdapter(cfg, logrus.New())
	t.Cleanup(adapter.Close)

	transport := httpmock.NewMockTransport()
	adapter.SetTransport(transport)
	return adapter, transport
}

// Under Armour has no color or size query dimension; the URL carries only
// the slug and identifier, regardless of the tracked variant.
func TestUnderArmourBuildURL(t *testing.T) {
	adapter, _ := newTestUnderArmourAdapter(t)

	order := types.TrackedOrder{
		ProductIdentifier: "1361379",
		Name:              "tech-2-0-shirt",
		Color:             "Black",
		Size:              "MD",
	}

	want := "https://www.underarmour.de/de-de/p/tech-2-0-shirt/1361379.html"
	assert.Equal(t, want, adapter.BuildURL(order))
	assert.Equal(t, want, adapter.BuildURL(order))
}

func TestUnderArmourFetchPage(t *testing.T) {
	adapter, transport := newTestUnderArmourAdapter(t)
	transport.RegisterResponder("GET", "https://www.underarmour.de/de-de/p/tech-2-0-shirt/1361379.html",
		httpmock.NewStringResponder(200, underArmourProductHTML))

	page, err := adapter.FetchPage(context.Background(),
		"https://www.underarmour.de/de-de/p/tech-2-0-shirt/1361379.html")
	require.NoError(t, err)

	require.Len(t, page.ColorGroups, 2)
	assert.Equal(t, []string{"Black", "Pitch Gray"}, page.ColorGroups[0].Colors)
	assert.Equal(t, 54.99, page.ColorGroups[0].Price)
	assert.True(t, page.ColorGroups[0].Selected)
	assert.Equal(t, 44.99, page.ColorGroups[1].Price)

	// the placeholder option has no value and is skipped
	require.Len(t, page.Sizes, 3)
	assert.Equal(t, types.ArticleSize{Name: "SM", Available: true}, page.Sizes[0])
	assert.Equal(t, types.ArticleSize{Name: "MD", Available: false}, page.Sizes[1])
	assert.Equal(t, types.ArticleSize{Name: "LG", Available: true}, page.Sizes[2])
}

func TestUnderArmourFetchPage_NotFound(t *testing.T) {
	adapter, transport := newTestUnderArmourAdapter(t)
	transport.RegisterResponder("GET", "https://www.underarmour.de/de-de/p/gone/0.html",
		httpmock.NewStringResponder(200, `<html><body><section class="page-not-found"></section></body></html>`))

	page, err := adapter.FetchPage(context.Background(), "https://www.underarmour.de/de-de/p/gone/0.html")
	assert.Nil(t, page)
	assert.ErrorIs(t, err, types.ErrPageNotFound)
}
