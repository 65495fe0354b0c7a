package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/database"
	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/google/uuid"
)

const (
	sessionCookie = "newsdesk_session"
	sessionTTL    = 30 * 24 * time.Hour
)

type contextKey string

const userKey contextKey = "user"

// currentUser returns the signed-in user, or nil.
func currentUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// withSession resolves the session cookie to a user and attaches it to
// the request context. Requests without a valid session pass through
// anonymously.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := s.db.GetSession(cookie.Value)
		if err != nil || time.Now().After(sess.ExpiresAt) {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.db.GetUserByID(sess.UserID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// requireUser guards API endpoints.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) == nil {
			jsonError(w, http.StatusUnauthorized, "You must be logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requirePage guards page handlers, redirecting anonymous visitors to login.
func (s *Server) requirePage(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h(w, r)
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "login.html", s.pageData(r, "login", nil))
}

// handleLogin signs a user in by username and email, creating the
// account on first login. Credentialed auth is delegated to the
// deployment's identity layer; this is the session exchange the app
// itself owns.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	if username == "" || email == "" {
		s.render(w, "login.html", s.pageData(r, "login", map[string]interface{}{
			"Error": "Username and email are required",
		}))
		return
	}

	user, err := s.db.GetUserByUsername(username)
	if errors.Is(err, database.ErrNotFound) {
		user = &model.User{
			ID:                uuid.NewString(),
			Username:          username,
			Email:             email,
			PreferredCountry:  "us",
			PreferredCategory: "general",
			CreatedAt:         time.Now(),
		}
		if err := s.db.CreateUser(user); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				s.render(w, "login.html", s.pageData(r, "login", map[string]interface{}{
					"Error": "That email is already in use",
				}))
				return
			}
			log.Printf("create user: %v", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}
	} else if err != nil {
		log.Printf("lookup user: %v", err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	sess := &model.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := s.db.CreateSession(sess); err != nil {
		log.Printf("create session: %v", err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	// Opportunistic cleanup of stale sessions.
	if n, err := s.db.DeleteExpiredSessions(now); err == nil && n > 0 {
		log.Printf("pruned %d expired sessions", n)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := s.db.DeleteSession(cookie.Value); err != nil {
			log.Printf("delete session: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
