package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"os"

	"github.com/erazemk/pregled/internal/auth"
	"github.com/erazemk/pregled/internal/config"
	"github.com/erazemk/pregled/internal/db"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/store"
)

// openUsers builds the user store selected by the configuration.
func openUsers(ctx context.Context, cfg config.Config, database *sql.DB, obs store.Observer) (store.Users, error) {
	switch kind := cfg.StorageKind(); kind {
	case store.KindMemory:
		return store.NewMemoryUsers(nil)
	case store.KindLocal:
		return store.NewLocalUsers(ctx, database)
	case store.KindRemote:
		remote := store.NewRemoteUsers(cfg.UserServiceURL, cfg.UserServiceToken, cfg.UpstreamTimeout)
		remote.Observer = obs
		return remote, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", kind)
	}
}

// initDatabase creates a new database, ensures the schema, and creates the
// admin operator.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(format string, err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf(format, err)
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail("ensuring schema: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail("generating password: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail("hashing password: %w", err)
	}

	if _, err := store.CreateOperator(context.Background(), database, adminUsername, hash, model.RoleAdmin); err != nil {
		return fail("creating admin operator: %w", err)
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed on the settings page after signing in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
