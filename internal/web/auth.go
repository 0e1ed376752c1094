package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/pregled/internal/auth"
	"github.com/erazemk/pregled/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "login.html", &PageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		s.Templates.Render(w, http.StatusBadRequest, "login.html", &PageData{
			Title: "Sign in",
			Error: "Enter your username and password.",
		})
		return
	}

	op, err := auth.Authenticate(r.Context(), s.DB, username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		s.Templates.Render(w, http.StatusUnauthorized, "login.html", &PageData{
			Title: "Sign in",
			Error: "Wrong username or password.",
		})
		return
	}
	if err != nil {
		slog.Error("failed to authenticate", "error", err)
		s.Templates.Render(w, http.StatusInternalServerError, "login.html", &PageData{
			Title: "Sign in",
			Error: "Signing in failed.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, op)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		s.Templates.Render(w, http.StatusInternalServerError, "login.html", &PageData{
			Title: "Sign in",
			Error: "Signing in failed.",
		})
		return
	}

	slog.Info("operator logged in", "operator", op.Username, "role", op.Role, "via", "web")
	setAuthCookie(w, token, s.CookieSecure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout. A valid session token is revoked so a copied
// cookie stops working too.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(tokenCookie); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("failed to revoke token", "error", err)
			}
		}
	}
	clearAuthCookie(w, s.CookieSecure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
