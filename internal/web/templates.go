package web

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/erazemk/pregled/internal/auth"
	"github.com/erazemk/pregled/internal/imaging"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/state"
	webembed "github.com/erazemk/pregled/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleManager:
				return "Manager"
			case model.RoleUser:
				return "User"
			default:
				return role
			}
		},
		"money": money,
		"number": func(n int) string {
			return humanize.Comma(int64(n))
		},
		"percent": func(f float64) string {
			return fmt.Sprintf("%.0f%%", f)
		},
		"rating": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"stars": stars,
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return humanize.Time(t)
		},
		"availabilityClass": availabilityClass,
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
}

// money formats an amount in dollars with thousands separators.
func money(f float64) string {
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// stars renders a 0-5 rating as filled and empty stars.
func stars(rating float64) string {
	filled := int(math.Round(max(0, min(5, rating))))
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled)
}

func availabilityClass(status string) string {
	switch status {
	case model.AvailabilityInStock:
		return "badge-ok"
	case model.AvailabilityLowStock:
		return "badge-warn"
	default:
		return "badge-bad"
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs, err := webembed.TemplatesFS()
	if err != nil {
		return nil, err
	}

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}
	partialBytes, err := fs.ReadFile(tfs, "partials.html")
	if err != nil {
		return nil, fmt.Errorf("reading partials template: %w", err)
	}

	pages := []string{
		"login.html",
		"dashboard.html",
		"products.html",
		"product_detail.html",
		"users.html",
		"settings.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		for _, src := range []struct {
			name string
			data []byte
		}{
			{"layout", layoutBytes},
			{"partials", partialBytes},
			{page, pageBytes},
		} {
			if _, err := tmpl.Parse(string(src.data)); err != nil {
				return nil, fmt.Errorf("parsing %s for %s: %w", src.name, page, err)
			}
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page template with the given data and status code.
func (ts *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// Tab names for the navigation bar.
const (
	TabDashboard = "dashboard"
	TabProducts  = "products"
	TabUsers     = "users"
	TabSettings  = "settings"
)

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Tab     string
	User    *auth.Claims
	Flash   *Flash
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB         *sql.DB
	Templates  *Templates
	JWTSecret  string
	App        *state.App
	Images     ImageFetcher
	Thumbnails *imaging.Cache

	ProductPageSize int
	UserPageSize    int
	CookieSecure    bool
	Storage         string
}

// page builds the base data for an authenticated page and consumes any
// pending flash message.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title, tab string) PageData {
	return PageData{
		Title: title,
		Tab:   tab,
		User:  GetWebClaims(r.Context()),
		Flash: popFlash(w, r),
	}
}
