package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/pregled/internal/auth"
	"github.com/erazemk/pregled/internal/model"
)

// SettingsData is the data for the settings page.
type SettingsData struct {
	PageData
	Storage           string
	MinPasswordLength int
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "settings.html", s.settingsData(w, r))
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := s.settingsData(w, r)

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	if current == "" || next == "" {
		data.Error = "Enter your current and new password."
		s.Templates.Render(w, http.StatusBadRequest, "settings.html", data)
		return
	}
	if next != r.FormValue("confirm_password") {
		data.Error = "The new passwords do not match."
		s.Templates.Render(w, http.StatusBadRequest, "settings.html", data)
		return
	}

	err := auth.ChangePassword(r.Context(), s.DB, claims.OperatorID, current, next)
	switch {
	case err == nil:
		slog.Info("password changed", "operator", claims.Username)
		data.Success = "Password changed."
		s.Templates.Render(w, http.StatusOK, "settings.html", data)
	case errors.Is(err, auth.ErrInvalidCredentials):
		data.Error = "The current password is wrong."
		s.Templates.Render(w, http.StatusUnauthorized, "settings.html", data)
	case errors.Is(err, auth.ErrWeakPassword):
		data.Error = "The new password is too short."
		s.Templates.Render(w, http.StatusBadRequest, "settings.html", data)
	default:
		slog.Error("failed to change password", "error", err)
		data.Error = "Saving the password failed."
		s.Templates.Render(w, http.StatusInternalServerError, "settings.html", data)
	}
}

func (s *Server) settingsData(w http.ResponseWriter, r *http.Request) *SettingsData {
	return &SettingsData{
		PageData:          s.page(w, r, "Settings", TabSettings),
		Storage:           s.Storage,
		MinPasswordLength: model.MinPasswordLength,
	}
}
