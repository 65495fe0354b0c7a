package news

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultCacheTTL matches the provider revalidation window the pages were
// built around. Staleness up to this long is acceptable.
const DefaultCacheTTL = 300 * time.Second

// Cache wraps a Service with a freshness window so repeated page renders
// within the TTL reuse a single provider call. Only successful results
// are cached; degraded calls re-evaluate upstream health every time so
// recovery is immediate.
type Cache struct {
	svc Service
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	res     Result
	fetched time.Time
}

// NewCache wraps svc. A ttl of zero uses DefaultCacheTTL.
func NewCache(svc Service, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		svc:     svc,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

var _ Service = (*Cache)(nil)

// TopHeadlines serves from cache within the TTL, delegating otherwise.
func (c *Cache) TopHeadlines(ctx context.Context, p Params) Result {
	return c.lookup(ctx, "top", p, c.svc.TopHeadlines)
}

// Search serves from cache within the TTL, delegating otherwise.
func (c *Cache) Search(ctx context.Context, p Params) Result {
	return c.lookup(ctx, "search", p, c.svc.Search)
}

func (c *Cache) lookup(ctx context.Context, op string, p Params, fetch func(context.Context, Params) Result) Result {
	key := fmt.Sprintf("%s|%s|%s|%s|%d|%d", op, p.Country, p.Category, p.Query, p.PageSize, p.Page)

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.fetched) < c.ttl {
		return entry.res
	}

	res := fetch(ctx, p)
	if !res.Degraded {
		c.mu.Lock()
		c.entries[key] = cacheEntry{res: res, fetched: c.now()}
		c.mu.Unlock()
	}
	return res
}
