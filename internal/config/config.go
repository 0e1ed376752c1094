// Package config reads pregled settings from the environment and an optional
// .env file. Command-line flags override what Load returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/pregled/internal/catalog"
	"github.com/erazemk/pregled/internal/store"
)

// Environment variable names.
const (
	EnvAddr             = "PREGLED_ADDR"
	EnvDB               = "PREGLED_DB"
	EnvAdminUser        = "PREGLED_ADMIN_USER"
	EnvLog              = "PREGLED_LOG"
	EnvStorage          = "PREGLED_STORAGE"
	EnvCatalogURL       = "PREGLED_CATALOG_URL"
	EnvUserServiceURL   = "PREGLED_USER_SERVICE_URL"
	EnvUserServiceToken = "PREGLED_USER_SERVICE_TOKEN"
	EnvUpstreamTimeout  = "PREGLED_UPSTREAM_TIMEOUT"
	EnvProductPageSize  = "PREGLED_PRODUCT_PAGE_SIZE"
	EnvUserPageSize     = "PREGLED_USER_PAGE_SIZE"
	EnvCookieSecure     = "PREGLED_COOKIE_SECURE"
	EnvThumbnailCache   = "PREGLED_THUMBNAIL_CACHE"
)

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultDB              = "pregled.sqlite3"
	DefaultAdminUser       = "Admin"
	DefaultProductPageSize = 10
	DefaultUserPageSize    = 8
	DefaultThumbnailCache  = 256
)

// Config holds application configuration.
type Config struct {
	Addr      string
	DBPath    string
	AdminUser string
	LogPath   string

	// Storage selects the user store: memory, local or remote.
	Storage          string
	CatalogURL       string
	UserServiceURL   string
	UserServiceToken string
	UpstreamTimeout  time.Duration

	ProductPageSize int
	UserPageSize    int

	CookieSecure   bool
	ThumbnailCache int
}

// Load loads configuration from a .env file, if present, and environment
// variables. Variables already set in the environment win over .env.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:             getenv(EnvAddr, DefaultAddr),
		DBPath:           getenv(EnvDB, DefaultDB),
		AdminUser:        getenv(EnvAdminUser, DefaultAdminUser),
		LogPath:          getenv(EnvLog, ""),
		Storage:          strings.ToLower(getenv(EnvStorage, "")),
		CatalogURL:       getenv(EnvCatalogURL, catalog.DefaultURL),
		UserServiceURL:   strings.TrimSpace(getenv(EnvUserServiceURL, "")),
		UserServiceToken: strings.TrimSpace(getenv(EnvUserServiceToken, "")),
		UpstreamTimeout:  getenvDuration(EnvUpstreamTimeout, catalog.DefaultTimeout),
		ProductPageSize:  getenvInt(EnvProductPageSize, DefaultProductPageSize),
		UserPageSize:     getenvInt(EnvUserPageSize, DefaultUserPageSize),
		CookieSecure:     getenvBool(EnvCookieSecure, false),
		ThumbnailCache:   getenvInt(EnvThumbnailCache, DefaultThumbnailCache),
	}
	return cfg
}

// StorageKind returns the configured storage strategy. Without an explicit
// choice, a configured user service selects remote and anything else local.
func (c Config) StorageKind() string {
	if c.Storage != "" {
		return c.Storage
	}
	if c.UserServiceURL != "" {
		return store.KindRemote
	}
	return store.KindLocal
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageKind() {
	case store.KindMemory, store.KindLocal:
	case store.KindRemote:
		if c.UserServiceURL == "" {
			errs = append(errs, errors.New("remote storage needs a user service URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q (memory, local or remote)", c.Storage))
	}
	if c.ProductPageSize < 1 {
		errs = append(errs, fmt.Errorf("product page size must be positive, got %d", c.ProductPageSize))
	}
	if c.UserPageSize < 1 {
		errs = append(errs, fmt.Errorf("user page size must be positive, got %d", c.UserPageSize))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
