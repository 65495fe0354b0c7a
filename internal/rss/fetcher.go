// Package rss fetches user-followed RSS/Atom feeds.
package rss

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/database"
	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/mmcdole/gofeed"
)

// DefaultPollInterval is how often the background poller refreshes all
// followed feeds.
const DefaultPollInterval = 15 * time.Minute

// Concurrency settings
const (
	// MaxConcurrencyPostgres is the number of parallel fetches for PostgreSQL
	MaxConcurrencyPostgres = 10
	// MaxConcurrencySQLite is the number of parallel fetches for SQLite (limited due to locking)
	MaxConcurrencySQLite = 1
	// DelayBetweenDomainRequests is the minimum delay between requests to the same domain
	DelayBetweenDomainRequests = 500 * time.Millisecond
)

// domainThrottle spaces out requests to the same host so refreshing many
// follows on one domain does not hammer it.
type domainThrottle struct {
	mu          sync.Mutex
	lastRequest map[string]time.Time
}

func newDomainThrottle() *domainThrottle {
	return &domainThrottle{lastRequest: make(map[string]time.Time)}
}

// wait blocks until the courtesy delay for the domain has elapsed, then
// claims the current time slot.
func (dt *domainThrottle) wait(ctx context.Context, domain string) error {
	for {
		dt.mu.Lock()
		last := dt.lastRequest[domain]
		now := time.Now()
		if last.IsZero() || now.Sub(last) >= DelayBetweenDomainRequests {
			dt.lastRequest[domain] = now
			dt.mu.Unlock()
			return nil
		}
		remaining := DelayBetweenDomainRequests - now.Sub(last)
		dt.mu.Unlock()

		select {
		case <-time.After(remaining):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func extractDomain(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL // fallback to full URL
	}
	return u.Host
}

// Fetcher handles RSS feed fetching for followed feeds.
type Fetcher struct {
	db          database.Store
	parser      *gofeed.Parser
	concurrency int
	throttle    *domainThrottle
}

// NewFetcher creates a new fetcher with concurrency based on database type.
func NewFetcher(db database.Store) *Fetcher {
	concurrency := MaxConcurrencySQLite
	if db.SupportsHighConcurrency() {
		concurrency = MaxConcurrencyPostgres
	}
	return &Fetcher{
		db:          db,
		parser:      gofeed.NewParser(),
		concurrency: concurrency,
		throttle:    newDomainThrottle(),
	}
}

// FetchFeed fetches and parses a single followed feed, storing new items.
// Returns the number of new items added.
func (f *Fetcher) FetchFeed(ctx context.Context, feed model.Feed) (int, error) {
	if err := f.throttle.wait(ctx, extractDomain(feed.URL)); err != nil {
		return 0, fmt.Errorf("throttle cancelled for %s: %w", feed.URL, err)
	}

	parsed, err := f.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		// Record the error for UI display.
		errMsg := err.Error()
		if len(errMsg) > 200 {
			errMsg = errMsg[:200]
		}
		_ = f.db.UpdateFeedError(feed.ID, errMsg)
		return 0, fmt.Errorf("parse feed %s: %w", feed.URL, err)
	}

	// Adopt the feed's own title when the follow was created with the URL
	// as a stand-in title.
	if parsed.Title != "" && feed.Title == feed.URL {
		if err := f.db.UpdateFeedTitle(feed.ID, parsed.Title); err != nil {
			log.Printf("rss: update title for feed %d: %v", feed.ID, err)
		}
	}

	now := time.Now()
	newCount := 0
	for _, item := range parsed.Items {
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}
		if guid == "" {
			continue
		}
		pubDate := now
		if item.PublishedParsed != nil {
			pubDate = *item.PublishedParsed
		}
		content := item.Content
		if content == "" {
			content = item.Description
		}
		_, isNew, err := f.db.AddFeedItem(&model.FeedItem{
			FeedID:      feed.ID,
			GUID:        guid,
			Title:       item.Title,
			Link:        item.Link,
			Content:     content,
			PublishedAt: pubDate,
			FetchedAt:   now,
		})
		if err != nil {
			log.Printf("rss: add item %s: %v", guid, err)
			continue
		}
		if isNew {
			newCount++
		}
	}

	// Update last fetched time (and clear any previous error).
	if err := f.db.UpdateFeedLastFetched(feed.ID, now); err != nil {
		log.Printf("rss: update last_fetched for feed %d: %v", feed.ID, err)
	}

	return newCount, nil
}

// FetchAll refreshes every followed feed, in parallel for PostgreSQL and
// sequentially for SQLite. Returns a map of feed ID -> new item count.
func (f *Fetcher) FetchAll(ctx context.Context) (map[int64]int, error) {
	feeds, err := f.db.GetAllFeeds()
	if err != nil {
		return nil, err
	}
	if len(feeds) == 0 {
		return map[int64]int{}, nil
	}

	log.Printf("rss: fetching %d feeds with concurrency=%d", len(feeds), f.concurrency)

	results := make(map[int64]int)
	var mu sync.Mutex
	var wg sync.WaitGroup
	feedChan := make(chan model.Feed)

	for i := 0; i < f.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for feed := range feedChan {
				count, err := f.FetchFeed(ctx, feed)
				if err != nil {
					log.Printf("rss: fetch %s: %v", feed.URL, err)
					continue
				}
				mu.Lock()
				results[feed.ID] = count
				mu.Unlock()
			}
		}()
	}

	var cancelled error
	for _, feed := range feeds {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
		case feedChan <- feed:
			continue
		}
		break
	}
	close(feedChan)
	wg.Wait()

	return results, cancelled
}

// Poller runs continuous background polling of followed feeds.
type Poller struct {
	fetcher  *Fetcher
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoller creates a background poller. A non-positive interval uses
// DefaultPollInterval.
func NewPoller(db database.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		fetcher:  NewFetcher(db),
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the polling loop.
func (p *Poller) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			results, err := p.fetcher.FetchAll(ctx)
			cancel()

			if err != nil {
				log.Printf("rss: poller: %v", err)
			} else {
				total := 0
				for _, c := range results {
					total += c
				}
				log.Printf("rss: poller fetched %d new items from %d feeds", total, len(results))
			}

			select {
			case <-p.stopChan:
				return
			case <-time.After(p.interval):
			}
		}
	}()
}

// Stop stops the poller gracefully.
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}
