package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/pregled/internal/dashboard"
	"github.com/erazemk/pregled/internal/form"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/paging"
	"github.com/erazemk/pregled/internal/state"
	"github.com/erazemk/pregled/internal/table"
)

// previewSize is how many rows of each collection the dashboard shows.
const previewSize = 5

// DashboardData is the data for the dashboard page.
type DashboardData struct {
	PageData
	Summary  dashboard.Summary
	Products state.Status
	Users    state.Status

	RecentProducts table.View
	RecentUsers    table.View
}

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := &DashboardData{
		PageData: s.page(w, r, "Dashboard", TabDashboard),
		Summary:  s.App.Summary(),
		Products: s.App.ProductStatus(),
		Users:    s.App.UserStatus(),

		RecentProducts: recentProducts(s.App.Products()),
		RecentUsers:    recentUsers(s.App.Users()),
	}
	s.Templates.Render(w, http.StatusOK, "dashboard.html", data)
}

func recentProducts(products []model.Product) table.View {
	cols := pickColumns(productColumns(), "title", "category", "price", "stock")
	return table.Render(paging.Paginate(products, 1, previewSize), cols, table.Options[model.Product]{
		EmptyMessage: "No products available.",
		RowHref:      func(p model.Product) string { return productURL(p.ID) },
	})
}

func recentUsers(users []model.User) table.View {
	q := listQuery{Path: "/users"}
	cols := pickColumns(userColumns(), "name", "email", "role")
	return table.Render(paging.Paginate(users, 1, previewSize), cols, table.Options[model.User]{
		EmptyMessage: "No users available.",
		RowHref:      func(u model.User) string { return q.ModalURL(form.Viewing, u.ID) },
	})
}

// Refresh handles POST /refresh by reloading both collections.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	err := s.App.Load(r.Context())
	if s.Thumbnails != nil {
		s.Thumbnails.Reset()
	}
	if err != nil {
		slog.Warn("refresh incomplete", "error", err)
		setFlash(w, "error", "Refresh failed: "+err.Error())
	} else {
		setFlash(w, "success", "Data refreshed.")
	}
	http.Redirect(w, r, safeRedirect(r.FormValue("next"), "/"), http.StatusSeeOther)
}

// safeRedirect returns target when it is a local path, otherwise fallback.
func safeRedirect(target, fallback string) string {
	if len(target) < 1 || target[0] != '/' || (len(target) > 1 && (target[1] == '/' || target[1] == '\\')) {
		return fallback
	}
	return target
}
