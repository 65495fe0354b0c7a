package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *DB, id, username string) *model.User {
	t.Helper()
	u := &model.User{
		ID:                id,
		Username:          username,
		Email:             username + "@example.com",
		PreferredCountry:  "us",
		PreferredCategory: "general",
		CreatedAt:         time.Now(),
	}
	require.NoError(t, db.CreateUser(u))
	return u
}

func TestUserLifecycle(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")

	byName, err := db.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	byID, err := db.GetUserByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = db.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &model.User{ID: "u2", Username: "alice", Email: "other@example.com", CreatedAt: time.Now()}
	assert.ErrorIs(t, db.CreateUser(dup), ErrDuplicate)
}

func TestUpdateProfile(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")
	createUser(t, db, "u2", "bob")

	require.NoError(t, db.UpdateProfile("u1", "alice2", "https://a/avatar.png", "gb", "technology"))

	u, err := db.GetUserByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "alice2", u.Username)
	assert.Equal(t, "gb", u.PreferredCountry)
	assert.Equal(t, "technology", u.PreferredCategory)

	// Taking another user's name is a uniqueness violation.
	assert.ErrorIs(t, db.UpdateProfile("u2", "alice2", "", "us", "general"), ErrDuplicate)
}

func TestSessions(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")

	now := time.Now()
	require.NoError(t, db.CreateSession(&model.Session{
		Token: "tok1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, db.CreateSession(&model.Session{
		Token: "tok2", UserID: "u1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))

	s, err := db.GetSession("tok1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)

	pruned, err := db.DeleteExpiredSessions(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
	_, err = db.GetSession("tok2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.DeleteSession("tok1"))
	_, err = db.GetSession("tok1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookmarks(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")

	b := &model.Bookmark{
		UserID: "u1", ArticleTitle: "First", ArticleURL: "https://example.com/1",
		CollectionName: "Default", CreatedAt: time.Now(),
	}
	id, err := db.AddBookmark(b)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	// Same article in the same collection is rejected.
	_, err = db.AddBookmark(b)
	assert.ErrorIs(t, err, ErrDuplicate)

	// Same article in a different collection is allowed.
	other := *b
	other.CollectionName = "Reading List"
	_, err = db.AddBookmark(&other)
	require.NoError(t, err)

	saved, err := db.IsBookmarked("u1", "https://example.com/1", "Default")
	require.NoError(t, err)
	assert.True(t, saved)

	collections, err := db.GetBookmarkCollections("u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Reading List"}, collections)

	all, err := db.GetBookmarks("u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	filtered, err := db.GetBookmarks("u1", "Reading List")
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	require.NoError(t, db.RemoveBookmark("u1", "https://example.com/1", "Default"))
	saved, err = db.IsBookmarked("u1", "https://example.com/1", "Default")
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestBookmarksBetween(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	for i, day := range []int{-10, -3, 0} {
		_, err := db.AddBookmark(&model.Bookmark{
			UserID:       "u1",
			ArticleTitle: "Article",
			ArticleURL:   "https://example.com/" + string(rune('a'+i)),
			CreatedAt:    base.AddDate(0, 0, day),
		})
		require.NoError(t, err)
	}

	got, err := db.GetBookmarksBetween("u1", base.AddDate(0, 0, -5), base.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/b", got[0].ArticleURL)
}

func TestFavorites(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")

	f := &model.Favorite{
		UserID: "u1", ArticleTitle: "Starred", ArticleURL: "https://example.com/fav",
		CreatedAt: time.Now(),
	}
	_, err := db.AddFavorite(f)
	require.NoError(t, err)
	_, err = db.AddFavorite(f)
	assert.ErrorIs(t, err, ErrDuplicate)

	starred, err := db.IsFavorite("u1", "https://example.com/fav")
	require.NoError(t, err)
	assert.True(t, starred)

	favorites, err := db.GetFavorites("u1")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Starred", favorites[0].ArticleTitle)

	require.NoError(t, db.RemoveFavorite("u1", "https://example.com/fav"))
	starred, err = db.IsFavorite("u1", "https://example.com/fav")
	require.NoError(t, err)
	assert.False(t, starred)
}

func TestComments(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")
	createUser(t, db, "u2", "bob")

	now := time.Now()
	id, err := db.AddComment(&model.Comment{
		UserID: "u1", ArticleURL: "https://example.com/a", Content: "Interesting",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	comments, err := db.GetComments("https://example.com/a")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Interesting", comments[0].Content)
	assert.Equal(t, "alice", comments[0].Username)

	// Only the author can delete.
	deleted, err := db.DeleteComment(id, "u2")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = db.DeleteComment(id, "u1")
	require.NoError(t, err)
	assert.True(t, deleted)

	comments, err = db.GetComments("https://example.com/a")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestHistoryUpsert(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")

	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	entry := &model.HistoryEntry{
		UserID: "u1", ArticleTitle: "Read me", ArticleURL: "https://example.com/r",
		ArticleCategory: "general", ReadAt: first,
	}
	require.NoError(t, db.AddHistory(entry))

	// Re-reading refreshes the timestamp without adding a row.
	entry.ReadAt = first.Add(3 * time.Hour)
	entry.ArticleCategory = "technology"
	require.NoError(t, db.AddHistory(entry))

	history, err := db.GetHistory("u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "technology", history[0].ArticleCategory)
	assert.WithinDuration(t, first.Add(3*time.Hour), history[0].ReadAt, time.Second)

	require.NoError(t, db.ClearHistory("u1"))
	history, err = db.GetHistory("u1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryOrderAndLimit(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.AddHistory(&model.HistoryEntry{
			UserID:       "u1",
			ArticleTitle: "Item",
			ArticleURL:   "https://example.com/" + string(rune('a'+i)),
			ReadAt:       base.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := db.GetHistory("u1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "https://example.com/e", history[0].ArticleURL)
}

func TestFeeds(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")
	createUser(t, db, "u2", "bob")

	id, err := db.CreateFeed("u1", "Example Feed", "https://example.com/feed.xml")
	require.NoError(t, err)

	_, err = db.CreateFeed("u1", "Same URL", "https://example.com/feed.xml")
	assert.ErrorIs(t, err, ErrDuplicate)

	// The same URL may be followed by a different user.
	_, err = db.CreateFeed("u2", "Example Feed", "https://example.com/feed.xml")
	require.NoError(t, err)

	feed, err := db.GetFeed(id)
	require.NoError(t, err)
	assert.Equal(t, "Example Feed", feed.Title)
	assert.True(t, feed.LastFetched.IsZero())

	require.NoError(t, db.UpdateFeedError(id, "fetch failed"))
	now := time.Now()
	require.NoError(t, db.UpdateFeedLastFetched(id, now))
	feed, err = db.GetFeed(id)
	require.NoError(t, err)
	assert.Empty(t, feed.LastError, "successful fetch clears the error")
	assert.WithinDuration(t, now, feed.LastFetched, time.Second)

	// Deleting with the wrong user leaves the feed in place.
	require.NoError(t, db.DeleteFeed(id, "u2"))
	_, err = db.GetFeed(id)
	require.NoError(t, err)

	require.NoError(t, db.DeleteFeed(id, "u1"))
	_, err = db.GetFeed(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddFeedItemDeduplicates(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")
	feedID, err := db.CreateFeed("u1", "Feed", "https://example.com/feed.xml")
	require.NoError(t, err)

	item := &model.FeedItem{
		FeedID: feedID, GUID: "guid-1", Title: "Post",
		Link: "https://example.com/post", PublishedAt: time.Now(), FetchedAt: time.Now(),
	}
	_, isNew, err := db.AddFeedItem(item)
	require.NoError(t, err)
	assert.True(t, isNew)

	_, isNew, err = db.AddFeedItem(item)
	require.NoError(t, err)
	assert.False(t, isNew)

	items, err := db.GetFeedItems(feedID, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGetFeedItemsOrder(t *testing.T) {
	db := testDB(t)
	createUser(t, db, "u1", "alice")
	feedID, err := db.CreateFeed("u1", "Feed", "https://example.com/feed.xml")
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, _, err := db.AddFeedItem(&model.FeedItem{
			FeedID: feedID, GUID: "g" + string(rune('a'+i)), Title: "Post",
			PublishedAt: base.Add(time.Duration(i) * time.Hour), FetchedAt: base,
		})
		require.NoError(t, err)
	}

	items, err := db.GetFeedItems(feedID, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "gc", items[0].GUID)
}
