package web

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/erazemk/pregled/internal/imaging"
	"github.com/erazemk/pregled/internal/state"
	webembed "github.com/erazemk/pregled/web"
)

// Default page sizes of the list pages.
const (
	DefaultProductPageSize = 10
	DefaultUserPageSize    = 8
)

// Config holds the dependencies of the page router.
type Config struct {
	DB         *sql.DB
	JWTSecret  string
	App        *state.App
	Images     ImageFetcher
	Thumbnails *imaging.Cache

	ProductPageSize int
	UserPageSize    int
	CookieSecure    bool
	Storage         string
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(cfg Config) (http.Handler, error) {
	if cfg.App == nil {
		return nil, errors.New("web router needs application state")
	}

	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	static, err := webembed.StaticFS()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:              cfg.DB,
		Templates:       templates,
		JWTSecret:       cfg.JWTSecret,
		App:             cfg.App,
		Images:          cfg.Images,
		Thumbnails:      cfg.Thumbnails,
		ProductPageSize: cfg.ProductPageSize,
		UserPageSize:    cfg.UserPageSize,
		CookieSecure:    cfg.CookieSecure,
		Storage:         cfg.Storage,
	}
	if s.ProductPageSize < 1 {
		s.ProductPageSize = DefaultProductPageSize
	}
	if s.UserPageSize < 1 {
		s.UserPageSize = DefaultUserPageSize
	}
	if s.Thumbnails == nil {
		s.Thumbnails = imaging.NewCache(imaging.DefaultCacheSize)
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(cfg.JWTSecret, cfg.DB, cfg.CookieSecure)
	editor := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(RequireEditor(h))
	}

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Dashboard)))
	mux.Handle("POST /refresh", cookieAuth(http.HandlerFunc(s.Refresh)))

	mux.Handle("GET /products", cookieAuth(http.HandlerFunc(s.ProductsPage)))
	mux.Handle("GET /products/{id}", cookieAuth(http.HandlerFunc(s.ProductDetailPage)))
	mux.Handle("GET /products/{id}/thumbnail", cookieAuth(http.HandlerFunc(s.ProductThumbnail)))

	mux.Handle("GET /users", cookieAuth(http.HandlerFunc(s.UsersPage)))
	mux.Handle("POST /users", editor(s.UserCreateSubmit))
	mux.Handle("POST /users/{id}", editor(s.UserUpdateSubmit))
	mux.Handle("POST /users/{id}/delete", editor(s.UserDeleteSubmit))

	mux.Handle("GET /settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))

	return mux, nil
}
