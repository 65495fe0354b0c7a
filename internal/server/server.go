// Package server provides the HTTP server and handlers.
package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/database"
	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/bryan-buckman/newsdesk/internal/news"
	"github.com/bryan-buckman/newsdesk/internal/rss"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server is the main HTTP server.
type Server struct {
	db        database.Store
	news      news.Service
	fetcher   *rss.Fetcher
	poller    *rss.Poller
	router    chi.Router
	templates *template.Template
}

// New creates a new server. svc is the headline source, typically a
// news.Client wrapped in a news.Cache.
func New(db database.Store, svc news.Service) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"timeAgo":     timeAgo,
		"countryName": news.CountryName,
		"str":         derefStr,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		db:        db,
		news:      svc,
		fetcher:   rss.NewFetcher(db),
		poller:    rss.NewPoller(db, rss.DefaultPollInterval),
		templates: tmpl,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(s.withSession)

	// Serve static files.
	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	// Mock articles reference this path directly.
	r.Get("/placeholder.svg", s.handlePlaceholder)

	// Pages.
	r.Get("/", s.handleHome)
	r.Get("/search", s.handleSearch)
	r.Get("/article", s.handleArticle)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/bookmarks", s.requirePage(s.handleBookmarksPage))
	r.Get("/favorites", s.requirePage(s.handleFavoritesPage))
	r.Get("/history", s.requirePage(s.handleHistoryPage))
	r.Get("/feeds", s.requirePage(s.handleFeedsPage))
	r.Get("/reports", s.requirePage(s.handleReportsPage))
	r.Get("/profile", s.requirePage(s.handleProfilePage))

	// API.
	r.Route("/api", func(r chi.Router) {
		r.Use(newRateLimiter(10, 30).middleware)

		r.Get("/comments", s.handleListComments)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Post("/bookmarks", s.handleAddBookmark)
			r.Delete("/bookmarks", s.handleRemoveBookmark)
			r.Get("/bookmarks/collections", s.handleBookmarkCollections)

			r.Post("/favorites", s.handleAddFavorite)
			r.Delete("/favorites", s.handleRemoveFavorite)

			r.Post("/comments", s.handleAddComment)
			r.Delete("/comments/{commentID}", s.handleDeleteComment)

			r.Post("/history", s.handleAddHistory)
			r.Delete("/history", s.handleClearHistory)

			r.Post("/feeds", s.handleAddFeed)
			r.Delete("/feeds/{feedID}", s.handleDeleteFeed)
			r.Post("/refresh", s.handleRefreshFeeds)
			r.Post("/import-opml", s.handleImportOPML)
			r.Get("/export-opml", s.handleExportOPML)

			r.Get("/reports/news", s.handleNewsReport)
			r.Get("/reports/activity", s.handleActivityReport)

			r.Post("/profile", s.handleUpdateProfile)
		})
	})

	s.router = r
}

// Start starts the server and the feed poller.
func (s *Server) Start(addr string) error {
	s.poller.Start()
	log.Printf("Server starting on %s (backend: %s)", addr, s.db.DatabaseType())
	return http.ListenAndServe(addr, s.router)
}

// Stop stops the poller.
func (s *Server) Stop() {
	s.poller.Stop()
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handlePlaceholder(w http.ResponseWriter, r *http.Request) {
	data, err := staticFS.ReadFile("static/placeholder.svg")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}

// --- Helpers ---

func (s *Server) render(w http.ResponseWriter, name string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Render error", http.StatusInternalServerError)
	}
}

// pageData assembles the base template data plus page-specific values.
func (s *Server) pageData(r *http.Request, page string, extra map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"Page": page,
		"User": currentUser(r.Context()),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}

func jsonOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// derefStr unwraps nullable article fields for template pipelines that
// need a plain string, such as urlquery.
func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// articleCards converts feed items to the shared article shape for the
// feeds page.
func articleCards(feed model.Feed, items []model.FeedItem) []model.Article {
	sourceID := "rss:" + hostOf(feed.URL)
	cards := make([]model.Article, 0, len(items))
	for _, it := range items {
		cards = append(cards, it.Article(sourceID, feed.Title))
	}
	return cards
}
