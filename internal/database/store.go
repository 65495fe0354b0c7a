// Package database provides storage backends for the news application.
package database

import (
	"errors"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
)

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, e.g. bookmarking the same article twice in one collection.
// Handlers compare with errors.Is to answer "already saved" distinctly.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for database operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// SupportsHighConcurrency returns true if the database can handle
	// many concurrent write operations (e.g., PostgreSQL).
	// SQLite returns false due to write locking limitations.
	SupportsHighConcurrency() bool

	// User operations
	CreateUser(u *model.User) error
	GetUserByID(id string) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	UpdateProfile(userID string, username, avatarURL, preferredCountry, preferredCategory string) error

	// Session operations
	CreateSession(s *model.Session) error
	GetSession(token string) (*model.Session, error)
	DeleteSession(token string) error
	DeleteExpiredSessions(now time.Time) (int64, error)

	// Bookmark operations
	AddBookmark(b *model.Bookmark) (int64, error)
	RemoveBookmark(userID, articleURL, collection string) error
	IsBookmarked(userID, articleURL, collection string) (bool, error)
	GetBookmarks(userID, collection string) ([]model.Bookmark, error)
	GetBookmarkCollections(userID string) ([]string, error)
	GetBookmarksBetween(userID string, start, end time.Time) ([]model.Bookmark, error)

	// Favorite operations
	AddFavorite(f *model.Favorite) (int64, error)
	RemoveFavorite(userID, articleURL string) error
	IsFavorite(userID, articleURL string) (bool, error)
	GetFavorites(userID string) ([]model.Favorite, error)
	GetFavoritesBetween(userID string, start, end time.Time) ([]model.Favorite, error)

	// Comment operations
	AddComment(c *model.Comment) (int64, error)
	DeleteComment(commentID int64, userID string) (bool, error)
	GetComments(articleURL string) ([]model.Comment, error)
	GetCommentsBetween(userID string, start, end time.Time) ([]model.Comment, error)

	// Reading history operations
	AddHistory(h *model.HistoryEntry) error
	GetHistory(userID string, limit int) ([]model.HistoryEntry, error)
	ClearHistory(userID string) error

	// Followed feed operations
	CreateFeed(userID, title, url string) (int64, error)
	GetFeed(feedID int64) (*model.Feed, error)
	GetFeeds(userID string) ([]model.Feed, error)
	GetAllFeeds() ([]model.Feed, error)
	DeleteFeed(feedID int64, userID string) error
	UpdateFeedTitle(feedID int64, title string) error
	UpdateFeedError(feedID int64, errMsg string) error
	UpdateFeedLastFetched(feedID int64, t time.Time) error
	AddFeedItem(item *model.FeedItem) (int64, bool, error)
	GetFeedItems(feedID int64, limit int) ([]model.FeedItem, error)
}
