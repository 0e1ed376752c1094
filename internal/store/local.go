package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/erazemk/pregled/internal/model"
)

// LocalUsersKey is the kv key holding the serialized user collection.
const LocalUsersKey = "users"

// LocalUsers keeps users in memory and mirrors the whole collection to a
// single kv entry as a JSON array after every change.
//
// The entry is read once on construction; missing or corrupt data starts an
// empty collection. A failed write is logged and the in-memory change is
// kept.
type LocalUsers struct {
	db *sql.DB

	mu  sync.Mutex // serializes mutate-then-persist
	mem *MemoryUsers
}

var _ Users = (*LocalUsers)(nil)

// NewLocalUsers loads the persisted collection from db.
func NewLocalUsers(ctx context.Context, db *sql.DB) (*LocalUsers, error) {
	mem, err := NewMemoryUsers(loadLocalUsers(ctx, db))
	if err != nil {
		return nil, err
	}
	return &LocalUsers{db: db, mem: mem}, nil
}

func loadLocalUsers(ctx context.Context, db *sql.DB) []model.User {
	data, ok, err := GetValue(ctx, db, LocalUsersKey)
	if err != nil {
		slog.Error("failed to read stored users, starting empty", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Error("stored users are corrupt, starting empty", "error", err)
		return nil
	}

	users := make([]model.User, 0, len(raw))
	seen := make(map[model.ID]bool, len(raw))
	for _, r := range raw {
		u, err := model.NormalizeUser(r)
		if err != nil || u.ID == "" || seen[u.ID] {
			slog.Warn("skipping stored user", "error", err, "id", u.ID)
			continue
		}
		seen[u.ID] = true
		users = append(users, u)
	}
	return users
}

// List implements Users.
func (l *LocalUsers) List(ctx context.Context) ([]model.User, error) {
	return l.mem.List(ctx)
}

// Create implements Users.
func (l *LocalUsers) Create(ctx context.Context, u model.User) (model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	created, err := l.mem.Create(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	l.persist(ctx)
	return created, nil
}

// Update implements Users.
func (l *LocalUsers) Update(ctx context.Context, u model.User) (model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated, err := l.mem.Update(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	l.persist(ctx)
	return updated, nil
}

// Delete implements Users.
func (l *LocalUsers) Delete(ctx context.Context, id model.ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.mem.Delete(ctx, id); err != nil {
		return err
	}
	l.persist(ctx)
	return nil
}

func (l *LocalUsers) persist(ctx context.Context) {
	users, _ := l.mem.List(ctx)
	if users == nil {
		users = []model.User{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		slog.Error("failed to encode users", "error", err)
		return
	}
	if err := PutValue(ctx, l.db, LocalUsersKey, data); err != nil {
		slog.Error("failed to persist users", "error", err, "count", len(users))
	}
}
