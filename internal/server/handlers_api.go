package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/database"
	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/go-chi/chi/v5"
)

// articlePayload is the article metadata clients send when saving.
type articlePayload struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ImageURL    string `json:"urlToImage"`
	Description string `json:"description"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Category    string `json:"category"`
	Collection  string `json:"collection"`
}

// validate rejects articles that cannot be saved: mock articles carry the
// "#" placeholder URL and have nothing to link back to.
func (p *articlePayload) validate() string {
	if p.Title == "" {
		return "Article title is required"
	}
	if p.URL == "" || p.URL == "#" {
		return "This article cannot be saved"
	}
	return ""
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Bookmarks ---

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	var p articlePayload
	if err := decodeBody(r, &p); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg := p.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	collection := p.Collection
	if collection == "" {
		collection = "Default"
	}

	_, err := s.db.AddBookmark(&model.Bookmark{
		UserID:             user.ID,
		ArticleTitle:       p.Title,
		ArticleURL:         p.URL,
		ArticleImageURL:    p.ImageURL,
		ArticleDescription: p.Description,
		ArticleSource:      p.Source,
		ArticlePublishedAt: p.PublishedAt,
		CollectionName:     collection,
		CreatedAt:          time.Now(),
	})
	if errors.Is(err, database.ErrDuplicate) {
		jsonError(w, http.StatusConflict, "Article already in bookmarks")
		return
	}
	if err != nil {
		log.Printf("add bookmark: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to add to bookmarks")
		return
	}
	jsonOK(w)
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	var req struct {
		URL        string `json:"url"`
		Collection string `json:"collection"`
	}
	if err := decodeBody(r, &req); err != nil || req.URL == "" {
		jsonError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Collection == "" {
		req.Collection = "Default"
	}
	if err := s.db.RemoveBookmark(user.ID, req.URL, req.Collection); err != nil {
		log.Printf("remove bookmark: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to remove from bookmarks")
		return
	}
	jsonOK(w)
}

func (s *Server) handleBookmarkCollections(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	collections, err := s.db.GetBookmarkCollections(user.ID)
	if err != nil {
		log.Printf("get collections: %v", err)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "collections": []string{}})
		return
	}
	if collections == nil {
		collections = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "collections": collections})
}

// --- Favorites ---

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	var p articlePayload
	if err := decodeBody(r, &p); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg := p.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	_, err := s.db.AddFavorite(&model.Favorite{
		UserID:             user.ID,
		ArticleTitle:       p.Title,
		ArticleURL:         p.URL,
		ArticleImageURL:    p.ImageURL,
		ArticleDescription: p.Description,
		ArticleSource:      p.Source,
		ArticlePublishedAt: p.PublishedAt,
		CreatedAt:          time.Now(),
	})
	if errors.Is(err, database.ErrDuplicate) {
		jsonError(w, http.StatusConflict, "Article already in favorites")
		return
	}
	if err != nil {
		log.Printf("add favorite: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to add to favorites")
		return
	}
	jsonOK(w)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeBody(r, &req); err != nil || req.URL == "" {
		jsonError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := s.db.RemoveFavorite(user.ID, req.URL); err != nil {
		log.Printf("remove favorite: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to remove from favorites")
		return
	}
	jsonOK(w)
}

// --- Comments ---

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	articleURL := r.URL.Query().Get("article_url")
	if articleURL == "" {
		jsonError(w, http.StatusBadRequest, "article_url parameter is required")
		return
	}
	comments, err := s.db.GetComments(articleURL)
	if err != nil {
		log.Printf("get comments: %v", err)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "comments": []interface{}{}})
		return
	}

	type commentView struct {
		ID        int64     `json:"id"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
		Username  string    `json:"username"`
		AvatarURL string    `json:"avatar_url"`
	}
	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView{
			ID:        c.ID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			Username:  c.Username,
			AvatarURL: c.AvatarURL,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "comments": views})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	var req struct {
		ArticleURL string `json:"article_url"`
		Content    string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.ArticleURL == "" || req.Content == "" {
		jsonError(w, http.StatusBadRequest, "Comment content is required")
		return
	}

	now := time.Now()
	if _, err := s.db.AddComment(&model.Comment{
		UserID:     user.ID,
		ArticleURL: req.ArticleURL,
		Content:    req.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		log.Printf("add comment: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to add comment")
		return
	}
	jsonOK(w)
}

// handleDeleteComment deletes a comment. Ownership is enforced in the
// store: the delete is keyed on both comment id and user id.
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid comment id")
		return
	}
	deleted, err := s.db.DeleteComment(commentID, user.ID)
	if err != nil {
		log.Printf("delete comment: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	if !deleted {
		jsonError(w, http.StatusForbidden, "You can only delete your own comments")
		return
	}
	jsonOK(w)
}

// --- Reading History ---

func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	var p articlePayload
	if err := decodeBody(r, &p); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg := p.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.db.AddHistory(&model.HistoryEntry{
		UserID:          user.ID,
		ArticleTitle:    p.Title,
		ArticleURL:      p.URL,
		ArticleImageURL: p.ImageURL,
		ArticleSource:   p.Source,
		ArticleCategory: defaultCategory(p.Category),
		ReadAt:          time.Now(),
	}); err != nil {
		log.Printf("add history: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to update reading history")
		return
	}
	jsonOK(w)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := s.db.ClearHistory(user.ID); err != nil {
		log.Printf("clear history: %v", err)
		jsonError(w, http.StatusInternalServerError, "Failed to clear reading history")
		return
	}
	jsonOK(w)
}

// --- Profile ---

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		username = user.Username
	}
	country := r.FormValue("preferred_country")
	if country == "" {
		country = user.PreferredCountry
	}
	category := r.FormValue("preferred_category")
	if category == "" {
		category = user.PreferredCategory
	}

	err := s.db.UpdateProfile(user.ID, username, r.FormValue("avatar_url"), country, category)
	if errors.Is(err, database.ErrDuplicate) {
		http.Redirect(w, r, "/profile?saved=0", http.StatusSeeOther)
		return
	}
	if err != nil {
		log.Printf("update profile: %v", err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}
