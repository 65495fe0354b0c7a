// Package model defines shared data structures.
package model

import "time"

// MockSourceID marks articles synthesized by the fallback path. It never
// appears on real provider or RSS data; consumers use it to detect
// degraded mode.
const MockSourceID = "mock-source"

// Source identifies where an article came from.
type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article is the stable article shape returned by the news adapter,
// regardless of whether it came from the provider, the mock generator,
// or a followed RSS feed. Absent fields are nil, never empty-but-present.
type Article struct {
	Source      Source  `json:"source"`
	Author      *string `json:"author"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Content     *string `json:"content"`
}

// IsMock reports whether the article was synthesized by the fallback path.
func (a Article) IsMock() bool {
	return a.Source.ID != nil && *a.Source.ID == MockSourceID
}

// User is a registered account with display preferences.
type User struct {
	ID                string
	Username          string
	Email             string
	AvatarURL         string
	PreferredCountry  string
	PreferredCategory string
	CreatedAt         time.Time
}

// Session maps a cookie token to a user.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Bookmark is a saved article in a named collection. Articles are keyed by
// URL, so the saved fields are denormalized copies taken at save time.
type Bookmark struct {
	ID                 int64
	UserID             string
	ArticleTitle       string
	ArticleURL         string
	ArticleImageURL    string
	ArticleDescription string
	ArticleSource      string
	ArticlePublishedAt string
	CollectionName     string
	CreatedAt          time.Time
}

// Favorite is a starred article.
type Favorite struct {
	ID                 int64
	UserID             string
	ArticleTitle       string
	ArticleURL         string
	ArticleImageURL    string
	ArticleDescription string
	ArticleSource      string
	ArticlePublishedAt string
	CreatedAt          time.Time
}

// Comment is a user comment on an article, joined with the author's
// display fields for rendering.
type Comment struct {
	ID         int64
	UserID     string
	ArticleURL string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Username   string
	AvatarURL  string
}

// HistoryEntry records that a user opened an article. Re-reading the same
// URL refreshes ReadAt instead of adding a row.
type HistoryEntry struct {
	ID              int64
	UserID          string
	ArticleTitle    string
	ArticleURL      string
	ArticleImageURL string
	ArticleSource   string
	ArticleCategory string
	ReadAt          time.Time
}

// Feed is an RSS/Atom source followed by a user.
type Feed struct {
	ID          int64
	UserID      string
	Title       string
	URL         string
	LastFetched time.Time
	LastError   string
}

// FeedItem is a single entry fetched from a followed feed.
type FeedItem struct {
	ID          int64
	FeedID      int64
	GUID        string
	Title       string
	Link        string
	Content     string
	PublishedAt time.Time
	FetchedAt   time.Time
}

// Article converts a feed item to the shared article shape so bookmarks,
// favorites and history work on RSS data unchanged.
func (it FeedItem) Article(sourceID, sourceName string) Article {
	var content *string
	if it.Content != "" {
		content = &it.Content
	}
	return Article{
		Source:      Source{ID: &sourceID, Name: sourceName},
		Title:       it.Title,
		URL:         it.Link,
		PublishedAt: it.PublishedAt.UTC().Format(time.RFC3339),
		Content:     content,
	}
}
