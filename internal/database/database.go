// Package database provides SQLite storage for the news application.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Ensure DB implements Store interface.
var _ Store = (*DB)(nil)

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseType returns the database backend name.
func (db *DB) DatabaseType() string {
	return "SQLite"
}

// SupportsHighConcurrency returns false: SQLite serializes writes.
func (db *DB) SupportsHighConcurrency() bool {
	return false
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		avatar_url TEXT DEFAULT '',
		preferred_country TEXT DEFAULT 'us',
		preferred_category TEXT DEFAULT 'general',
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		article_title TEXT NOT NULL,
		article_url TEXT NOT NULL,
		article_image_url TEXT DEFAULT '',
		article_description TEXT DEFAULT '',
		article_source TEXT DEFAULT '',
		article_published_at TEXT DEFAULT '',
		collection_name TEXT NOT NULL DEFAULT 'Default',
		created_at DATETIME NOT NULL,
		UNIQUE(user_id, article_url, collection_name)
	);
	CREATE TABLE IF NOT EXISTS favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		article_title TEXT NOT NULL,
		article_url TEXT NOT NULL,
		article_image_url TEXT DEFAULT '',
		article_description TEXT DEFAULT '',
		article_source TEXT DEFAULT '',
		article_published_at TEXT DEFAULT '',
		created_at DATETIME NOT NULL,
		UNIQUE(user_id, article_url)
	);
	CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		article_url TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reading_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		article_title TEXT NOT NULL,
		article_url TEXT NOT NULL,
		article_image_url TEXT DEFAULT '',
		article_source TEXT DEFAULT '',
		article_category TEXT DEFAULT 'general',
		read_at DATETIME NOT NULL,
		UNIQUE(user_id, article_url)
	);
	CREATE TABLE IF NOT EXISTS feeds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		last_fetched DATETIME,
		last_error TEXT DEFAULT '',
		UNIQUE(user_id, url)
	);
	CREATE TABLE IF NOT EXISTS feed_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feed_id INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
		guid TEXT NOT NULL,
		title TEXT NOT NULL,
		link TEXT,
		content TEXT,
		published_at DATETIME,
		fetched_at DATETIME NOT NULL,
		UNIQUE(feed_id, guid)
	);
	CREATE INDEX IF NOT EXISTS idx_comments_article_url ON comments(article_url);
	CREATE INDEX IF NOT EXISTS idx_history_user_read_at ON reading_history(user_id, read_at DESC);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// isDuplicateSQLite reports whether err is a uniqueness violation.
func isDuplicateSQLite(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- User Methods ---

// CreateUser inserts a new user.
func (db *DB) CreateUser(u *model.User) error {
	_, err := db.conn.Exec(`
		INSERT INTO users (id, username, email, avatar_url, preferred_country, preferred_category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.AvatarURL, u.PreferredCountry, u.PreferredCategory, u.CreatedAt)
	if isDuplicateSQLite(err) {
		return ErrDuplicate
	}
	return err
}

// GetUserByID returns the user with the given id.
func (db *DB) GetUserByID(id string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRow(
		"SELECT id, username, email, avatar_url, preferred_country, preferred_category, created_at FROM users WHERE id = ?", id))
}

// GetUserByUsername returns the user with the given username.
func (db *DB) GetUserByUsername(username string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRow(
		"SELECT id, username, email, avatar_url, preferred_country, preferred_category, created_at FROM users WHERE username = ?", username))
}

func (db *DB) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.AvatarURL, &u.PreferredCountry, &u.PreferredCategory, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the user's display fields and preferences.
func (db *DB) UpdateProfile(userID, username, avatarURL, preferredCountry, preferredCategory string) error {
	_, err := db.conn.Exec(`
		UPDATE users SET username = ?, avatar_url = ?, preferred_country = ?, preferred_category = ?
		WHERE id = ?`,
		username, avatarURL, preferredCountry, preferredCategory, userID)
	if isDuplicateSQLite(err) {
		return ErrDuplicate
	}
	return err
}

// --- Session Methods ---

// CreateSession stores a session token.
func (db *DB) CreateSession(s *model.Session) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
		s.Token, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

// GetSession returns the session for a token.
func (db *DB) GetSession(token string) (*model.Session, error) {
	var s model.Session
	err := db.conn.QueryRow(
		"SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?", token).
		Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// DeleteExpiredSessions prunes sessions that expired before now.
func (db *DB) DeleteExpiredSessions(now time.Time) (int64, error) {
	res, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Bookmark Methods ---

// AddBookmark saves an article into a collection. Returns ErrDuplicate if
// the article is already in that collection.
func (db *DB) AddBookmark(b *model.Bookmark) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO bookmarks (user_id, article_title, article_url, article_image_url,
			article_description, article_source, article_published_at, collection_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.ArticleTitle, b.ArticleURL, b.ArticleImageURL,
		b.ArticleDescription, b.ArticleSource, b.ArticlePublishedAt, b.CollectionName, b.CreatedAt)
	if isDuplicateSQLite(err) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RemoveBookmark deletes a bookmark owned by the user.
func (db *DB) RemoveBookmark(userID, articleURL, collection string) error {
	_, err := db.conn.Exec(
		"DELETE FROM bookmarks WHERE user_id = ? AND article_url = ? AND collection_name = ?",
		userID, articleURL, collection)
	return err
}

// IsBookmarked reports whether the user saved the article in the collection.
func (db *DB) IsBookmarked(userID, articleURL, collection string) (bool, error) {
	var id int64
	err := db.conn.QueryRow(
		"SELECT id FROM bookmarks WHERE user_id = ? AND article_url = ? AND collection_name = ?",
		userID, articleURL, collection).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GetBookmarks returns the user's bookmarks, newest first, optionally
// filtered by collection.
func (db *DB) GetBookmarks(userID, collection string) ([]model.Bookmark, error) {
	query := `SELECT id, user_id, article_title, article_url, article_image_url,
		article_description, article_source, article_published_at, collection_name, created_at
		FROM bookmarks WHERE user_id = ?`
	args := []interface{}{userID}
	if collection != "" {
		query += " AND collection_name = ?"
		args = append(args, collection)
	}
	query += " ORDER BY created_at DESC"
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookmarks(rows)
}

// GetBookmarkCollections returns the user's distinct collection names.
func (db *DB) GetBookmarkCollections(userID string) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT DISTINCT collection_name FROM bookmarks WHERE user_id = ? ORDER BY collection_name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetBookmarksBetween returns bookmarks created within [start, end].
func (db *DB) GetBookmarksBetween(userID string, start, end time.Time) ([]model.Bookmark, error) {
	rows, err := db.conn.Query(`SELECT id, user_id, article_title, article_url, article_image_url,
		article_description, article_source, article_published_at, collection_name, created_at
		FROM bookmarks WHERE user_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookmarks(rows)
}

func scanBookmarks(rows *sql.Rows) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.ArticleTitle, &b.ArticleURL, &b.ArticleImageURL,
			&b.ArticleDescription, &b.ArticleSource, &b.ArticlePublishedAt, &b.CollectionName, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// --- Favorite Methods ---

// AddFavorite stars an article. Returns ErrDuplicate if already starred.
func (db *DB) AddFavorite(f *model.Favorite) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO favorites (user_id, article_title, article_url, article_image_url,
			article_description, article_source, article_published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.UserID, f.ArticleTitle, f.ArticleURL, f.ArticleImageURL,
		f.ArticleDescription, f.ArticleSource, f.ArticlePublishedAt, f.CreatedAt)
	if isDuplicateSQLite(err) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RemoveFavorite unstars an article.
func (db *DB) RemoveFavorite(userID, articleURL string) error {
	_, err := db.conn.Exec("DELETE FROM favorites WHERE user_id = ? AND article_url = ?", userID, articleURL)
	return err
}

// IsFavorite reports whether the user starred the article.
func (db *DB) IsFavorite(userID, articleURL string) (bool, error) {
	var id int64
	err := db.conn.QueryRow(
		"SELECT id FROM favorites WHERE user_id = ? AND article_url = ?", userID, articleURL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GetFavorites returns the user's favorites, newest first.
func (db *DB) GetFavorites(userID string) ([]model.Favorite, error) {
	rows, err := db.conn.Query(`SELECT id, user_id, article_title, article_url, article_image_url,
		article_description, article_source, article_published_at, created_at
		FROM favorites WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFavorites(rows)
}

// GetFavoritesBetween returns favorites created within [start, end].
func (db *DB) GetFavoritesBetween(userID string, start, end time.Time) ([]model.Favorite, error) {
	rows, err := db.conn.Query(`SELECT id, user_id, article_title, article_url, article_image_url,
		article_description, article_source, article_published_at, created_at
		FROM favorites WHERE user_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFavorites(rows)
}

func scanFavorites(rows *sql.Rows) ([]model.Favorite, error) {
	var favorites []model.Favorite
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.ArticleTitle, &f.ArticleURL, &f.ArticleImageURL,
			&f.ArticleDescription, &f.ArticleSource, &f.ArticlePublishedAt, &f.CreatedAt); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// --- Comment Methods ---

// AddComment stores a comment.
func (db *DB) AddComment(c *model.Comment) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO comments (user_id, article_url, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		c.UserID, c.ArticleURL, c.Content, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteComment removes a comment only if the user owns it. Returns
// whether a row was deleted.
func (db *DB) DeleteComment(commentID int64, userID string) (bool, error) {
	res, err := db.conn.Exec("DELETE FROM comments WHERE id = ? AND user_id = ?", commentID, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// GetComments returns comments on an article, newest first, with the
// author's display fields joined in.
func (db *DB) GetComments(articleURL string) ([]model.Comment, error) {
	rows, err := db.conn.Query(`
		SELECT c.id, c.user_id, c.article_url, c.content, c.created_at, c.updated_at,
			u.username, u.avatar_url
		FROM comments c JOIN users u ON c.user_id = u.id
		WHERE c.article_url = ? ORDER BY c.created_at DESC`, articleURL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

// GetCommentsBetween returns the user's comments created within [start, end].
func (db *DB) GetCommentsBetween(userID string, start, end time.Time) ([]model.Comment, error) {
	rows, err := db.conn.Query(`
		SELECT c.id, c.user_id, c.article_url, c.content, c.created_at, c.updated_at,
			u.username, u.avatar_url
		FROM comments c JOIN users u ON c.user_id = u.id
		WHERE c.user_id = ? AND c.created_at >= ? AND c.created_at <= ?
		ORDER BY c.created_at DESC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

func scanComments(rows *sql.Rows) ([]model.Comment, error) {
	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.ArticleURL, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&c.Username, &c.AvatarURL); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// --- Reading History Methods ---

// AddHistory records a read. Re-reading the same article refreshes the
// timestamp instead of adding a row.
func (db *DB) AddHistory(h *model.HistoryEntry) error {
	_, err := db.conn.Exec(`
		INSERT INTO reading_history (user_id, article_title, article_url, article_image_url,
			article_source, article_category, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, article_url) DO UPDATE SET
			read_at = excluded.read_at,
			article_category = excluded.article_category`,
		h.UserID, h.ArticleTitle, h.ArticleURL, h.ArticleImageURL,
		h.ArticleSource, h.ArticleCategory, h.ReadAt)
	return err
}

// GetHistory returns the most recent reads, newest first.
func (db *DB) GetHistory(userID string, limit int) ([]model.HistoryEntry, error) {
	rows, err := db.conn.Query(`
		SELECT id, user_id, article_title, article_url, article_image_url,
			article_source, article_category, read_at
		FROM reading_history WHERE user_id = ? ORDER BY read_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.HistoryEntry
	for rows.Next() {
		var h model.HistoryEntry
		if err := rows.Scan(&h.ID, &h.UserID, &h.ArticleTitle, &h.ArticleURL, &h.ArticleImageURL,
			&h.ArticleSource, &h.ArticleCategory, &h.ReadAt); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// ClearHistory deletes all of the user's history.
func (db *DB) ClearHistory(userID string) error {
	_, err := db.conn.Exec("DELETE FROM reading_history WHERE user_id = ?", userID)
	return err
}

// --- Feed Methods ---

// CreateFeed follows an RSS source. Returns ErrDuplicate if already followed.
func (db *DB) CreateFeed(userID, title, url string) (int64, error) {
	res, err := db.conn.Exec("INSERT INTO feeds (user_id, title, url) VALUES (?, ?, ?)", userID, title, url)
	if isDuplicateSQLite(err) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetFeed returns a followed feed by id.
func (db *DB) GetFeed(feedID int64) (*model.Feed, error) {
	var f model.Feed
	var lastFetched sql.NullTime
	var lastError sql.NullString
	err := db.conn.QueryRow(
		"SELECT id, user_id, title, url, last_fetched, last_error FROM feeds WHERE id = ?", feedID).
		Scan(&f.ID, &f.UserID, &f.Title, &f.URL, &lastFetched, &lastError)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastFetched.Valid {
		f.LastFetched = lastFetched.Time
	}
	if lastError.Valid {
		f.LastError = lastError.String
	}
	return &f, nil
}

// GetFeeds returns the feeds followed by a user.
func (db *DB) GetFeeds(userID string) ([]model.Feed, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, title, url, last_fetched, last_error FROM feeds WHERE user_id = ? ORDER BY title", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeeds(rows)
}

// GetAllFeeds returns every followed feed, for the background poller.
func (db *DB) GetAllFeeds() ([]model.Feed, error) {
	rows, err := db.conn.Query("SELECT id, user_id, title, url, last_fetched, last_error FROM feeds ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeeds(rows)
}

func scanFeeds(rows *sql.Rows) ([]model.Feed, error) {
	var feeds []model.Feed
	for rows.Next() {
		var f model.Feed
		var lastFetched sql.NullTime
		var lastError sql.NullString
		if err := rows.Scan(&f.ID, &f.UserID, &f.Title, &f.URL, &lastFetched, &lastError); err != nil {
			return nil, err
		}
		if lastFetched.Valid {
			f.LastFetched = lastFetched.Time
		}
		if lastError.Valid {
			f.LastError = lastError.String
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// DeleteFeed unfollows a feed owned by the user. Items cascade.
func (db *DB) DeleteFeed(feedID int64, userID string) error {
	_, err := db.conn.Exec("DELETE FROM feeds WHERE id = ? AND user_id = ?", feedID, userID)
	return err
}

// UpdateFeedTitle sets the feed title discovered from the feed document.
func (db *DB) UpdateFeedTitle(feedID int64, title string) error {
	_, err := db.conn.Exec("UPDATE feeds SET title = ? WHERE id = ?", title, feedID)
	return err
}

// UpdateFeedError records the last fetch error for UI display.
func (db *DB) UpdateFeedError(feedID int64, errMsg string) error {
	_, err := db.conn.Exec("UPDATE feeds SET last_error = ? WHERE id = ?", errMsg, feedID)
	return err
}

// UpdateFeedLastFetched updates the last_fetched timestamp and clears any
// previous error.
func (db *DB) UpdateFeedLastFetched(feedID int64, t time.Time) error {
	_, err := db.conn.Exec("UPDATE feeds SET last_fetched = ?, last_error = '' WHERE id = ?", t, feedID)
	return err
}

// AddFeedItem inserts an item if its GUID is new for that feed. Returns
// the id and whether it was new.
func (db *DB) AddFeedItem(item *model.FeedItem) (int64, bool, error) {
	res, err := db.conn.Exec(`
		INSERT INTO feed_items (feed_id, guid, title, link, content, published_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(feed_id, guid) DO NOTHING`,
		item.FeedID, item.GUID, item.Title, item.Link, item.Content, item.PublishedAt, item.FetchedAt)
	if err != nil {
		return 0, false, err
	}
	id, _ := res.LastInsertId()
	affected, _ := res.RowsAffected()
	return id, affected > 0, nil
}

// GetFeedItems returns the newest items for a feed.
func (db *DB) GetFeedItems(feedID int64, limit int) ([]model.FeedItem, error) {
	rows, err := db.conn.Query(`
		SELECT id, feed_id, guid, title, link, content, published_at, fetched_at
		FROM feed_items WHERE feed_id = ? ORDER BY published_at DESC LIMIT ?`, feedID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeedItems(rows)
}

func scanFeedItems(rows *sql.Rows) ([]model.FeedItem, error) {
	var items []model.FeedItem
	for rows.Next() {
		var it model.FeedItem
		var link, content sql.NullString
		var publishedAt, fetchedAt sql.NullTime
		if err := rows.Scan(&it.ID, &it.FeedID, &it.GUID, &it.Title, &link, &content, &publishedAt, &fetchedAt); err != nil {
			return nil, err
		}
		it.Link = link.String
		it.Content = content.String
		if publishedAt.Valid {
			it.PublishedAt = publishedAt.Time
		}
		if fetchedAt.Valid {
			it.FetchedAt = fetchedAt.Time
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
