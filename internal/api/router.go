package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/state"
	"github.com/erazemk/pregled/internal/store"
)

// Config wires the API to the rest of the application.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	App       *state.App

	// Users is re-exported as a user service. Leave nil when the
	// instance itself is backed by a remote user service.
	Users store.Users
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret}
	operatorsHandler := &OperatorsHandler{DB: cfg.DB}
	catalogHandler := &CatalogHandler{App: cfg.App}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/health", catalogHandler.Health)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Operators (admin only).
	mux.Handle("GET /api/operators", authMW(requireAdmin(http.HandlerFunc(operatorsHandler.List))))
	mux.Handle("POST /api/operators", authMW(requireAdmin(http.HandlerFunc(operatorsHandler.Create))))
	mux.Handle("PUT /api/operators/{id}", authMW(requireAdmin(http.HandlerFunc(operatorsHandler.Update))))
	mux.Handle("PUT /api/operators/{id}/password", authMW(requireAdmin(http.HandlerFunc(operatorsHandler.ResetPassword))))
	mux.Handle("DELETE /api/operators/{id}", authMW(requireAdmin(http.HandlerFunc(operatorsHandler.Delete))))

	// Snapshots: read (all roles), refresh (manager+).
	mux.Handle("GET /api/products", authMW(http.HandlerFunc(catalogHandler.Products)))
	mux.Handle("GET /api/products/{id}", authMW(http.HandlerFunc(catalogHandler.Product)))
	mux.Handle("GET /api/dashboard", authMW(http.HandlerFunc(catalogHandler.Dashboard)))
	mux.Handle("POST /api/refresh", authMW(requireManager(http.HandlerFunc(catalogHandler.Refresh))))

	// User service: read (all roles), write (manager+).
	if cfg.Users != nil {
		usersHandler := &UsersHandler{Users: cfg.Users, Mutator: cfg.App}
		mux.Handle("GET /api/user", authMW(http.HandlerFunc(usersHandler.List)))
		mux.Handle("POST /api/user/register", authMW(requireManager(http.HandlerFunc(usersHandler.Register))))
		mux.Handle("PUT /api/user/{id}", authMW(requireManager(http.HandlerFunc(usersHandler.Update))))
		mux.Handle("DELETE /api/user/{id}", authMW(requireManager(http.HandlerFunc(usersHandler.Delete))))
	}

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})

	return mux
}
