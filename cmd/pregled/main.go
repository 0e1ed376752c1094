package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/pregled/internal/api"
	"github.com/erazemk/pregled/internal/catalog"
	"github.com/erazemk/pregled/internal/config"
	"github.com/erazemk/pregled/internal/db"
	"github.com/erazemk/pregled/internal/imaging"
	"github.com/erazemk/pregled/internal/metrics"
	"github.com/erazemk/pregled/internal/state"
	"github.com/erazemk/pregled/internal/store"
	"github.com/erazemk/pregled/internal/web"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// parseFlags applies command-line overrides on top of cfg.
func parseFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pregled", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.AdminUser, "user", cfg.AdminUser, "")
	fs.StringVar(&cfg.AdminUser, "u", cfg.AdminUser, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "")
	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "")

	fs.StringVar(&cfg.CatalogURL, "catalog-url", cfg.CatalogURL, "")
	fs.StringVar(&cfg.UserServiceURL, "user-service-url", cfg.UserServiceURL, "")
	fs.StringVar(&cfg.UserServiceToken, "user-service-token", cfg.UserServiceToken, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: pregled [flags]

Flags:
  -d, -db <path>                SQLite database path (default: pregled.sqlite3)
  -a, -addr <host:port>         listen address (default: :8080)
  -u, -user <name>              admin username on first run (default: Admin)
  -l, -log <path>               log file path (default: no file, stdout/stderr only)
  -s, -storage <kind>           user storage: memory, local or remote
                                (default: remote with a user service URL, else local)
  -catalog-url <url>            product catalog URL (default: dummyjson.com)
  -user-service-url <url>       base URL of the remote user service
  -user-service-token <token>   bearer token for the user service
  -h, -help                     show this help and exit

Every flag can also be set with a PREGLED_* environment variable or a .env file.
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return nil
}

func main() {
	cfg := config.Load()
	if err := parseFlags(&cfg, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		database, password, err := initDatabase(cfg.DBPath, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(cfg.DBPath, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	ctx := context.Background()

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}
	if n, err := store.PurgeRevokedTokens(ctx, database, time.Now()); err != nil {
		slog.Warn("failed to purge revoked tokens", "error", err)
	} else if n > 0 {
		slog.Info("purged expired revoked tokens", "count", n)
	}

	m := metrics.New()

	users, err := openUsers(ctx, cfg, database, m)
	if err != nil {
		return err
	}
	slog.Info("user storage ready", "kind", cfg.StorageKind())

	products := catalog.New(cfg.CatalogURL, cfg.UpstreamTimeout)
	products.Observer = m

	app := state.New(products, users, m)
	loadCtx, cancel := context.WithTimeout(ctx, 2*cfg.UpstreamTimeout)
	if err := app.Load(loadCtx); err != nil {
		// The dashboard shows the failure; a refresh retries.
		slog.Warn("initial load incomplete", "error", err)
	}
	cancel()

	// A remote-backed instance does not re-export someone else's users.
	apiUsers := users
	if cfg.StorageKind() == store.KindRemote {
		apiUsers = nil
	}

	apiRouter := api.NewRouter(api.Config{
		DB:        database,
		JWTSecret: jwtSecret,
		App:       app,
		Users:     apiUsers,
	})
	webRouter, err := web.NewRouter(web.Config{
		DB:              database,
		JWTSecret:       jwtSecret,
		App:             app,
		Images:          products,
		Thumbnails:      imaging.NewCache(cfg.ThumbnailCache),
		ProductPageSize: cfg.ProductPageSize,
		UserPageSize:    cfg.UserPageSize,
		CookieSecure:    cfg.CookieSecure,
		Storage:         cfg.StorageKind(),
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(m)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
