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

const lululemonProductHTML = `<html><body>
<div class="product-variations">
  <div class="color-group selected">
    <span class="price">€ 98,00</span>
    <a class="color-swatch" data-color="0001"></a>
    <a class="color-swatch" data-color="31382"></a>
  </div>
  <div class="color-group">
    <span class="price">N/A</span>
    <a class="color-swatch" data-color="47741"></a>
  </div>
</div>
<div class="size-selector">
  <input id="size_M" type="radio">
  <input id="size_L" type="radio">
  <input id="size_XL" type="radio" disabled>
</div>
</body></html>`

const lululemonNotFoundHTML = `<html><body>
<h1 class="error-page-title">Sorry, we could not find that page.</h1>
</body></html>`

func newTestLululemonAdapter(t *testing.T) (*LululemonAdapter, *httpmock.MockTransport) {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.PageCacheTTL = 0 // one responder call per fetch

	adapter := NewLululemonAdapter(cfg, logrus.New())
	t.Cleanup(adapter.Close)

	transport := httpmock.NewMockTransport()
	adapter.SetTransport(transport)
	return adapter, transport
}

func TestLululemonBuildURL(t *testing.T) {
	adapter, _ := newTestLululemonAdapter(t)

	order := types.TrackedOrder{
		ProductIdentifier: "prod9200786",
		Name:              "align-pant",
		Color:             "0001",
		Size:              "L",
	}

	want := "https://www.lululemon.de/en-de/p/align-pant/prod9200786.html?dwvar_prod9200786_color=0001&dwvar_prod9200786_size=L"
	assert.Equal(t, want, adapter.BuildURL(order))
	// deterministic across repeated calls
	assert.Equal(t, want, adapter.BuildURL(order))
}

func TestLululemonBuildURL_EmptyColor(t *testing.T) {
	adapter, _ := newTestLululemonAdapter(t)

	order := types.TrackedOrder{
		ProductIdentifier: "prod9200786",
		Name:              "align-pant",
		Size:              "L",
	}

	want := "https://www.lululemon.de/en-de/p/align-pant/prod9200786.html?dwvar_prod9200786_color=&dwvar_prod9200786_size=L"
	assert.Equal(t, want, adapter.BuildURL(order))
}

func TestLululemonFetchPage(t *testing.T) {
	adapter, transport := newTestLululemonAdapter(t)
	transport.RegisterResponder("GET", "https://www.lululemon.de/en-de/p/align-pant/prod9200786.html",
		httpmock.NewStringResponder(200, lululemonProductHTML))

	page, err := adapter.FetchPage(context.Background(),
		"https://www.lululemon.de/en-de/p/align-pant/prod9200786.html")
	require.NoError(t, err)
	require.NotNil(t, page)

	require.Len(t, page.ColorGroups, 2)
	assert.Equal(t, []string{"0001", "31382"}, page.ColorGroups[0].Colors)
	assert.Equal(t, 98.0, page.ColorGroups[0].Price)
	assert.True(t, page.ColorGroups[0].Selected)
	assert.False(t, page.ColorGroups[1].Selected)

	require.Len(t, page.Sizes, 3)
	assert.Equal(t, types.ArticleSize{Name: "M", Available: true}, page.Sizes[0])
	assert.Equal(t, types.ArticleSize{Name: "L", Available: true}, page.Sizes[1])
	assert.Equal(t, types.ArticleSize{Name: "XL", Available: false}, page.Sizes[2])
}

// An unparsable price degrades that group to zero without dropping the
// group or aborting the rest of the parse.
func TestLululemonFetchPage_PartialPrice(t *testing.T) {
	adapter, transport := newTestLululemonAdapter(t)
	transport.RegisterResponder("GET", "https://www.lululemon.de/en-de/p/x/p1.html",
		httpmock.NewStringResponder(200, lululemonProductHTML))

	page, err := adapter.FetchPage(context.Background(), "https://www.lululemon.de/en-de/p/x/p1.html")
	require.NoError(t, err)

	require.Len(t, page.ColorGroups, 2)
	assert.Equal(t, 0.0, page.ColorGroups[1].Price)
	assert.Equal(t, []string{"47741"}, page.ColorGroups[1].Colors)
}

func TestLululemonFetchPage_NotFound(t *testing.T) {
	adapter, transport := newTestLululemonAdapter(t)
	transport.RegisterResponder("GET", "https://www.lululemon.de/en-de/p/gone/p0.html",
		httpmock.NewStringResponder(200, lululemonNotFoundHTML))

	page, err := adapter.FetchPage(context.Background(), "https://www.lululemon.de/en-de/p/gone/p0.html")
	assert.Nil(t, page)
	assert.ErrorIs(t, err, types.ErrPageNotFound)
}

func TestLululemonFetchPage_ServerError(t *testing.T) {
	adapter, transport := newTestLululemonAdapter(t)
	transport.RegisterResponder("GET", "https://www.lululemon.de/en-de/p/x/p1.html",
		httpmock.NewStringResponder(503, ""))

	_, err := adapter.FetchPage(context.Background(), "https://www.lululemon.de/en-de/p/x/p1.html")

	var fetchErr *types.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 503, fetchErr.StatusCode)
	assert.NotErrorIs(t, err, types.ErrPageNotFound)
}

// Observe must short-circuit on the not-found marker and still hand back a
// recordable zero-price, unavailable observation.
func TestObserve_PageNotFoundRecorded(t *testing.T) {
	adapter, transport := newTestLululemonAdapter(t)
	transport.RegisterResponder("GET",
		"https://www.lululemon.de/en-de/p/gone/prod1.html?dwvar_prod1_color=0001&dwvar_prod1_size=L",
		httpmock.NewStringResponder(200, lululemonNotFoundHTML))

	order := types.TrackedOrder{
		ProductIdentifier: "prod1",
		Name:              "gone",
		Color:             "0001",
		Size:              "L",
	}

	obs, err := Observe(context.Background(), adapter, order, fixedClock())
	require.NoError(t, err)
	assert.Equal(t, 0.0, obs.Price)
	assert.False(t, obs.Available)
	assert.Equal(t, types.ReasonPageNotFound, obs.Reason)
	assert.False(t, obs.CapturedAt.IsZero())
}

func TestObserve_FullPass(t *testing.T) {
	adapter, transport := newTestLululemonAdapter(t)
	transport.RegisterResponder("GET",
		"https://www.lululemon.de/en-de/p/align-pant/prod9200786.html?dwvar_prod9200786_color=0001&dwvar_prod9200786_size=L",
		httpmock.NewStringResponder(200, lululemonProductHTML))

	order := types.TrackedOrder{
		ProductIdentifier: "prod9200786",
		Name:              "align-pant",
		Color:             "0001",
		Size:              "L",
	}

	obs, err := Observe(context.Background(), adapter, order, fixedClock())
	require.NoError(t, err)
	assert.Equal(t, 98.0, obs.Price)
	assert.True(t, obs.Available)
	assert.Equal(t, types.ReasonOK, obs.Reason)
}
