package types

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Reason explains why an observation reports what it reports. A zero price
// on its own is ambiguous ("free" vs "gone"); the reason code makes the
// history unambiguous for downstream consumers.
type Reason string

const (
	// ReasonOK means the requested variant was found on a valid page.
	ReasonOK Reason = "ok"
	// ReasonPageNotFound means the retailer confirmed the product page no
	// longer exists.
	ReasonPageNotFound Reason = "page_not_found"
	// ReasonColorNotListed means the page was valid but no color group
	// contained the requested color.
	ReasonColorNotListed Reason = "color_not_listed"
	// ReasonSizeNotListed means the page was valid but the requested size
	// was not offered.
	ReasonSizeNotListed Reason = "size_not_listed"
)

// Observation is one point-in-time price and availability reading for a
// tracked variant. It is created once by an adapter invocation and never
// modified after it is appended to an order's history.
type Observation struct {
	Price      float64   `json:"price"`
	Available  bool      `json:"available"`
	Reason     Reason    `json:"reason"`
	CapturedAt time.Time `json:"captured_at"`
}

// TrackedOrder is one product variant tracked over time.
type TrackedOrder struct {
	ID                string        `json:"id"`
	RetailerID        string        `json:"retailer_id"`
	ProductIdentifier string        `json:"product_identifier"`
	Name              string        `json:"name"`
	Color             string        `json:"color"`
	Size              string        `json:"size"`
	History           []Observation `json:"history"`
	SearchCount       int           `json:"search_count"`

	// Version supports optimistic concurrency in the order store. Managed
	// by the store, not by callers.
	Version int64 `json:"-"`
}

// AppendObservation records one tracking result. History is append-only;
// this is the only way it grows, and only the tracking job calls it.
func (o *TrackedOrder) AppendObservation(obs Observation) {
	o.History = append(o.History, obs)
	o.SearchCount++
}

// ColorGroup is a set of colors on a retailer page that share one
// displayed price.
type ColorGroup struct {
	Colors   []string
	Price    float64
	Selected bool
}

// ArticleSize is one size control on a retailer page.
type ArticleSize struct {
	Name      string
	Available bool
}

// PageModel is the structured form of one fetched product page. It is
// constructed fresh per fetch and discarded after variant resolution,
// never persisted.
type PageModel struct {
	ColorGroups []ColorGroup
	Sizes       []ArticleSize
}

// RetailerAdapter is the per-retailer strategy for claiming a retailer id,
// building the canonical product page URL, and turning a fetched page into
// a PageModel.
type RetailerAdapter interface {
	// Matches reports whether this adapter handles the given retailer id.
	Matches(retailerID string) bool
	// BuildURL derives the product page URL from the order's identifier
	// and variant. Pure: same order, same URL.
	BuildURL(order TrackedOrder) string
	// FetchPage retrieves and parses the page at url. It returns
	// ErrPageNotFound when the retailer's error-page marker is present and
	// a *FetchError on network or HTTP failures.
	FetchPage(ctx context.Context, url string) (*PageModel, error)
	// Close releases fetch resources.
	Close()
}

var (
	// ErrPageNotFound signals the retailer confirmed the page is gone.
	// Distinct from a fetch failure: it is meaningful tracked information.
	ErrPageNotFound = errors.New("retailer page not found")

	// ErrNoAdapter signals a retailer id with no registered adapter. This
	// is a configuration defect, not transient flakiness.
	ErrNoAdapter = errors.New("no adapter for retailer")

	// ErrCycleInProgress is returned when RunOnce is invoked while a
	// previous cycle is still running.
	ErrCycleInProgress = errors.New("tracking cycle already in progress")
)

// FetchError wraps a transport failure, timeout, or unexpected HTTP
// status. Orders hitting one are skipped for the cycle and retried on the
// next scheduled invocation.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config holds the tunables shared by the fetch clients and the tracking
// job.
type Config struct {
	Timeout             time.Duration
	UserAgent           string
	MaxConcurrentOrders int
	UseHeadlessBrowser  bool
	PageCacheTTL        time.Duration
	PageCacheSize       int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:             30 * time.Second,
		UserAgent:           "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		MaxConcurrentOrders: 5,
		UseHeadlessBrowser:  false,
		PageCacheTTL:        30 * time.Second,
		PageCacheSize:       128,
	}
}

// Logger defines the logging interface. Satisfied by *logrus.Logger and
// *logrus.Entry.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
