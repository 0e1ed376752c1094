package store

import (
	"context"
	"database/sql"
	"fmt"
)

// GetValue returns the blob stored under key and whether it exists.
func GetValue(ctx context.Context, db *sql.DB, key string) ([]byte, bool, error) {
	var value []byte
	err := db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// PutValue replaces the blob stored under key.
func PutValue(ctx context.Context, db *sql.DB, key string, value []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
