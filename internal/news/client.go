// Package news fetches headlines from the external news provider and
// degrades to generated placeholder articles when the API key is missing
// or the upstream call fails. Callers never see an error from this
// package; degraded mode is reported on the Result and marked on the
// articles themselves via the "mock-source" source id.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
)

// DefaultBaseURL is the production provider endpoint.
const DefaultBaseURL = "https://newsapi.org/v2"

// requestTimeout bounds the outbound call so a slow upstream cannot stall
// the page render waiting on it.
const requestTimeout = 8 * time.Second

// Params describes a headlines or search request. Zero values take the
// documented defaults.
type Params struct {
	Category string // empty means "general"; "all" disables the category filter
	Query    string
	PageSize int // provider default 20, mock path default 10
	Page     int // 1-based
	Country  string // two-letter code, empty means "us"
}

// Reason explains why a result was served from the mock generator.
type Reason string

const (
	ReasonMissingKey     Reason = "missing_api_key"
	ReasonUpstreamStatus Reason = "upstream_status"
	ReasonTransport      Reason = "transport"
)

// Result is the outcome of a fetch. Degraded results contain generated
// placeholder articles instead of provider data.
type Result struct {
	Articles []model.Article
	Degraded bool
	Reason   Reason
	// Status is the upstream HTTP status when Reason is ReasonUpstreamStatus.
	Status int
}

// Service is the fetch surface the server renders from. Client implements
// it directly; Cache wraps another Service with a freshness window.
type Service interface {
	TopHeadlines(ctx context.Context, p Params) Result
	Search(ctx context.Context, p Params) Result
}

// Client calls the provider's top-headlines and everything endpoints.
// It holds no state between calls; concurrent use is fine.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client

	// Injectable for tests; set by NewClient.
	now  func() time.Time
	intn func(n int) int
}

var _ Service = (*Client)(nil)

// NewClient creates a client. An empty apiKey is valid and puts every
// call on the mock path.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: requestTimeout},
		now:        time.Now,
		intn:       rand.Intn,
	}
}

// apiResponse is the provider's success envelope. Fields other than
// articles are ignored.
type apiResponse struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Articles     []model.Article `json:"articles"`
}

// TopHeadlines fetches top headlines for the given params. It never
// fails: missing credentials, upstream errors and transport errors all
// degrade to mock data built from the same params.
func (c *Client) TopHeadlines(ctx context.Context, p Params) Result {
	if c.APIKey == "" {
		log.Printf("news: NEWS_API_KEY is not set, serving mock headlines")
		return c.degraded(p, ReasonMissingKey, 0)
	}

	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("country", defaultStr(p.Country, "us"))
	q.Set("pageSize", strconv.Itoa(defaultInt(p.PageSize, 20)))
	q.Set("page", strconv.Itoa(defaultInt(p.Page, 1)))
	category := defaultStr(p.Category, "general")
	if category != "all" {
		q.Set("category", category)
	}
	if p.Query != "" {
		q.Set("q", p.Query)
	}

	return c.fetch(ctx, "/top-headlines", q, p)
}

// Search queries the provider's everything endpoint keyed on Query.
// An empty query returns an empty, non-degraded result with no network
// call: it means "no results", not "use defaults". Fallback results are
// tagged with the general category regardless of the requested one,
// matching the behavior callers already depend on.
func (c *Client) Search(ctx context.Context, p Params) Result {
	if p.Query == "" {
		return Result{Articles: []model.Article{}}
	}

	fallback := p
	fallback.Category = "general"

	if c.APIKey == "" {
		log.Printf("news: NEWS_API_KEY is not set, serving mock search results")
		return c.degraded(fallback, ReasonMissingKey, 0)
	}

	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("q", p.Query)
	q.Set("pageSize", strconv.Itoa(defaultInt(p.PageSize, 20)))
	q.Set("page", strconv.Itoa(defaultInt(p.Page, 1)))

	return c.fetch(ctx, "/everything", q, fallback)
}

// fetch performs the provider call and resolves every failure mode to a
// degraded result built from fallbackParams.
func (c *Client) fetch(ctx context.Context, path string, query url.Values, fallbackParams Params) Result {
	reqURL := c.BaseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("news: build request: %v", err)
		return c.degraded(fallbackParams, ReasonTransport, 0)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("news: fetch %s: %v", path, err)
		return c.degraded(fallbackParams, ReasonTransport, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("news: provider error: %d - %s", resp.StatusCode, body)
		if resp.StatusCode == http.StatusUnauthorized {
			log.Printf("news: API key authentication failed, check the NEWS_API_KEY environment variable")
		}
		return c.degraded(fallbackParams, ReasonUpstreamStatus, resp.StatusCode)
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("news: decode response: %v", err)
		return c.degraded(fallbackParams, ReasonTransport, 0)
	}

	articles := data.Articles
	if articles == nil {
		// A provider 200 with no articles is a real empty result set,
		// not a failure.
		articles = []model.Article{}
	}
	return Result{Articles: articles}
}

func (c *Client) degraded(p Params, reason Reason, status int) Result {
	return Result{
		Articles: c.mockArticles(p),
		Degraded: true,
		Reason:   reason,
		Status:   status,
	}
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func defaultInt(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

// String implements fmt.Stringer for log lines.
func (r Reason) String() string { return string(r) }

// Describe renders a reason for the degraded-mode banner.
func (r Result) Describe() string {
	switch r.Reason {
	case ReasonMissingKey:
		return "no news API key is configured"
	case ReasonUpstreamStatus:
		return fmt.Sprintf("the news provider returned HTTP %d", r.Status)
	case ReasonTransport:
		return "the news provider could not be reached"
	default:
		return ""
	}
}
