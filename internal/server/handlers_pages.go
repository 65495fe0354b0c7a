package server

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/bryan-buckman/newsdesk/internal/news"
)

// categories shown in the filter bar. "all" disables the category filter.
var categories = []string{"all", "general", "business", "technology", "entertainment", "sports", "science", "health"}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	category := r.URL.Query().Get("category")
	country := r.URL.Query().Get("country")
	if user != nil {
		if category == "" {
			category = user.PreferredCategory
		}
		if country == "" {
			country = user.PreferredCountry
		}
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	res := s.news.TopHeadlines(r.Context(), news.Params{
		Category: category,
		Country:  country,
		Query:    r.URL.Query().Get("q"),
		Page:     page,
	})

	s.render(w, "home.html", s.pageData(r, "home", map[string]interface{}{
		"Articles":   res.Articles,
		"Degraded":   res.Degraded,
		"DegradedBy": res.Describe(),
		"Category":   category,
		"Country":    country,
		"Query":      r.URL.Query().Get("q"),
		"PageNum":    page,
		"NextPage":   page + 1,
		"PrevPage":   page - 1,
		"Categories": categories,
		"Countries":  news.Countries,
	}))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	res := s.news.Search(r.Context(), news.Params{Query: query, Page: page})

	s.render(w, "search.html", s.pageData(r, "search", map[string]interface{}{
		"Articles":   res.Articles,
		"Degraded":   res.Degraded,
		"DegradedBy": res.Describe(),
		"Query":      query,
		"PageNum":    page,
		"NextPage":   page + 1,
		"PrevPage":   page - 1,
	}))
}

// handleArticle renders the article context page: the saved metadata
// passed along in the query string plus the comment thread. Viewing an
// article while signed in records it in reading history.
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	articleURL := q.Get("url")
	if articleURL == "" {
		http.Error(w, "url parameter is required", http.StatusBadRequest)
		return
	}

	comments, err := s.db.GetComments(articleURL)
	if err != nil {
		log.Printf("get comments: %v", err)
	}

	user := currentUser(r.Context())
	if user != nil && articleURL != "#" {
		err := s.db.AddHistory(&model.HistoryEntry{
			UserID:          user.ID,
			ArticleTitle:    q.Get("title"),
			ArticleURL:      articleURL,
			ArticleImageURL: q.Get("image"),
			ArticleSource:   q.Get("source"),
			ArticleCategory: defaultCategory(q.Get("category")),
			ReadAt:          time.Now(),
		})
		if err != nil {
			log.Printf("track history: %v", err)
		}
	}

	var bookmarked, favorited bool
	if user != nil {
		bookmarked, _ = s.db.IsBookmarked(user.ID, articleURL, "Default")
		favorited, _ = s.db.IsFavorite(user.ID, articleURL)
	}

	s.render(w, "article.html", s.pageData(r, "article", map[string]interface{}{
		"ArticleURL":   articleURL,
		"Title":        q.Get("title"),
		"Source":       q.Get("source"),
		"Image":        q.Get("image"),
		"Description":  q.Get("description"),
		"Category":     defaultCategory(q.Get("category")),
		"Comments":     comments,
		"IsBookmarked": bookmarked,
		"IsFavorite":   favorited,
	}))
}

func (s *Server) handleBookmarksPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	collection := r.URL.Query().Get("collection")

	bookmarks, err := s.db.GetBookmarks(user.ID, collection)
	if err != nil {
		log.Printf("get bookmarks: %v", err)
	}
	collections, err := s.db.GetBookmarkCollections(user.ID)
	if err != nil {
		log.Printf("get collections: %v", err)
	}

	s.render(w, "bookmarks.html", s.pageData(r, "bookmarks", map[string]interface{}{
		"Bookmarks":   bookmarks,
		"Collections": collections,
		"Collection":  collection,
	}))
}

func (s *Server) handleFavoritesPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	favorites, err := s.db.GetFavorites(user.ID)
	if err != nil {
		log.Printf("get favorites: %v", err)
	}
	s.render(w, "favorites.html", s.pageData(r, "favorites", map[string]interface{}{
		"Favorites": favorites,
	}))
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	history, err := s.db.GetHistory(user.ID, 50)
	if err != nil {
		log.Printf("get history: %v", err)
	}
	s.render(w, "history.html", s.pageData(r, "history", map[string]interface{}{
		"History": history,
	}))
}

func (s *Server) handleFeedsPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	feeds, err := s.db.GetFeeds(user.ID)
	if err != nil {
		log.Printf("get feeds: %v", err)
	}

	type feedView struct {
		Feed     model.Feed
		Articles []model.Article
	}
	views := make([]feedView, 0, len(feeds))
	for _, feed := range feeds {
		items, err := s.db.GetFeedItems(feed.ID, 20)
		if err != nil {
			log.Printf("get feed items: %v", err)
			continue
		}
		views = append(views, feedView{Feed: feed, Articles: articleCards(feed, items)})
	}

	s.render(w, "feeds.html", s.pageData(r, "feeds", map[string]interface{}{
		"Feeds": views,
	}))
}

func (s *Server) handleReportsPage(w http.ResponseWriter, r *http.Request) {
	today := time.Now().Format("2006-01-02")
	weekAgo := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	s.render(w, "reports.html", s.pageData(r, "reports", map[string]interface{}{
		"Categories": categories,
		"Countries":  news.Countries,
		"Today":      today,
		"WeekAgo":    weekAgo,
	}))
}

func (s *Server) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "profile.html", s.pageData(r, "profile", map[string]interface{}{
		"Categories": categories[1:], // "all" is not a preference
		"Countries":  news.Countries,
		"Saved":      r.URL.Query().Get("saved") == "1",
	}))
}

func defaultCategory(c string) string {
	if c == "" {
		return "general"
	}
	return c
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
