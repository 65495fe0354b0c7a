package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/bryan-buckman/newsdesk/internal/news"
	"github.com/bryan-buckman/newsdesk/internal/report"
)

// reportWindow parses a start/end date pair from the query string. The
// end bound is pushed to the last instant of its day so the range is
// inclusive.
func reportWindow(r *http.Request) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date")
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date")
	}
	return start, end.Add(24*time.Hour - time.Second), nil
}

func reportFormat(r *http.Request) string {
	if r.URL.Query().Get("format") == "html" {
		return "html"
	}
	return "csv"
}

// handleNewsReport fetches a large page of headlines and serializes the
// ones published inside the requested window.
func (s *Server) handleNewsReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := reportWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	country := r.URL.Query().Get("country")
	if country == "" {
		country = "us"
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "all"
	}

	res := s.news.TopHeadlines(r.Context(), news.Params{
		Country:  country,
		Category: category,
		PageSize: 100,
	})
	rows := report.NewsRows(res.Articles, start, end)

	format := reportFormat(r)
	fileName := report.NewsFileName(country, category, format, time.Now())
	log.Printf("generated news report %s (%d rows)", fileName, len(rows))

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	if format == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.WriteNewsHTML(w, "News Report", rows); err != nil {
			log.Printf("write news report: %v", err)
		}
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := report.WriteNewsCSV(w, rows); err != nil {
		log.Printf("write news report: %v", err)
	}
}

// handleActivityReport serializes the user's bookmarks, favorites and
// comments in a date window. Sections are opt-in via query flags.
func (s *Server) handleActivityReport(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	start, end, err := reportWindow(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	var bookmarks []model.Bookmark
	var favorites []model.Favorite
	var comments []model.Comment

	if q.Get("bookmarks") == "1" {
		if bookmarks, err = s.db.GetBookmarksBetween(user.ID, start, end); err != nil {
			log.Printf("report bookmarks: %v", err)
		}
	}
	if q.Get("favorites") == "1" {
		if favorites, err = s.db.GetFavoritesBetween(user.ID, start, end); err != nil {
			log.Printf("report favorites: %v", err)
		}
	}
	if q.Get("comments") == "1" {
		if comments, err = s.db.GetCommentsBetween(user.ID, start, end); err != nil {
			log.Printf("report comments: %v", err)
		}
	}

	rows := report.ActivityRows(bookmarks, favorites, comments)

	format := reportFormat(r)
	fileName := report.ActivityFileName(format, time.Now())
	log.Printf("generated activity report %s (%d rows)", fileName, len(rows))

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	if format == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.WriteActivityHTML(w, "User Activity Report", rows); err != nil {
			log.Printf("write activity report: %v", err)
		}
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := report.WriteActivityCSV(w, rows); err != nil {
		log.Printf("write activity report: %v", err)
	}
}
