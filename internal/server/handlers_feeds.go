package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/database"
	"github.com/bryan-buckman/newsdesk/internal/opml"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleAddFeed(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	var req struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if err := decodeBody(r, &req); err != nil || req.URL == "" {
		jsonError(w, http.StatusBadRequest, "Feed URL is required")
		return
	}
	if req.Title == "" {
		// The fetcher replaces URL stand-in titles with the feed's own.
		req.Title = req.URL
	}

	feedID, err := s.db.CreateFeed(user.ID, req.Title, req.URL)
	if errors.Is(err, database.ErrDuplicate) {
		jsonError(w, http.StatusConflict, "You already follow this feed")
		return
	}
	if err != nil {
		log.Printf("create feed: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to follow feed")
		return
	}

	// First fetch happens inline so the page has items right away. Fetch
	// errors are recorded on the feed, not surfaced here.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if feed, err := s.db.GetFeed(feedID); err == nil {
		if _, err := s.fetcher.FetchFeed(ctx, *feed); err != nil {
			log.Printf("initial fetch %s: %v", req.URL, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "feed_id": feedID})
}

func (s *Server) handleDeleteFeed(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	feedID, err := strconv.ParseInt(chi.URLParam(r, "feedID"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid feed id")
		return
	}
	if err := s.db.DeleteFeed(feedID, user.ID); err != nil {
		log.Printf("delete feed: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to unfollow feed")
		return
	}
	jsonOK(w)
}

// handleRefreshFeeds re-fetches the requesting user's follows.
func (s *Server) handleRefreshFeeds(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	feeds, err := s.db.GetFeeds(user.ID)
	if err != nil {
		log.Printf("get feeds: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to refresh feeds")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	total := 0
	fetched := 0
	for _, feed := range feeds {
		count, err := s.fetcher.FetchFeed(ctx, feed)
		if err != nil {
			log.Printf("refresh %s: %v", feed.URL, err)
			continue
		}
		total += count
		fetched++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"new_items": total,
		"feeds":     fetched,
	})
}

func (s *Server) handleImportOPML(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	file, _, err := r.FormFile("opml")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	entries, err := opml.Parse(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse OPML: %v", err))
		return
	}

	imported := 0
	for _, entry := range entries {
		_, err := s.db.CreateFeed(user.ID, entry.Title, entry.URL)
		if errors.Is(err, database.ErrDuplicate) {
			continue
		}
		if err != nil {
			log.Printf("import feed %s: %v", entry.URL, err)
			continue
		}
		imported++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"imported": imported,
		"total":    len(entries),
	})
}

func (s *Server) handleExportOPML(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	feeds, err := s.db.GetFeeds(user.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to get feeds")
		return
	}

	entries := make([]opml.FeedEntry, 0, len(feeds))
	for _, feed := range feeds {
		entries = append(entries, opml.FeedEntry{Title: feed.Title, URL: feed.URL})
	}

	data, err := opml.Export("Newsdesk Feeds", entries)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to export")
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", "attachment; filename=newsdesk-feeds.opml")
	w.Write(data)
}
