package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bwmarrin/snowflake"

	"github.com/erazemk/pregled/internal/model"
)

// MemoryUsers keeps users in process memory. New users get time-ordered
// snowflake ids.
type MemoryUsers struct {
	mu    sync.RWMutex
	users []model.User
	node  *snowflake.Node
}

var _ Users = (*MemoryUsers)(nil)

// NewMemoryUsers returns a store seeded with a copy of initial.
func NewMemoryUsers(initial []model.User) (*MemoryUsers, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("creating id generator: %w", err)
	}
	return &MemoryUsers{users: slices.Clone(initial), node: node}, nil
}

// List implements Users.
func (m *MemoryUsers) List(_ context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.users), nil
}

// Create implements Users.
func (m *MemoryUsers) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.ID = m.nextID()
	m.users = append(m.users, u)
	return u, nil
}

// nextID returns an id not yet used in the collection.
func (m *MemoryUsers) nextID() model.ID {
	for {
		id := model.ID(m.node.Generate().String())
		if m.indexOf(id) < 0 {
			return id
		}
	}
}

// Update implements Users.
func (m *MemoryUsers) Update(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(u.ID)
	if i < 0 {
		return model.User{}, fmt.Errorf("updating user %s: %w", u.ID, ErrUserNotFound)
	}
	m.users[i] = u
	return u, nil
}

// Delete implements Users.
func (m *MemoryUsers) Delete(_ context.Context, id model.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("deleting user %s: %w", id, ErrUserNotFound)
	}
	m.users = slices.Delete(m.users, i, i+1)
	return nil
}

func (m *MemoryUsers) indexOf(id model.ID) int {
	return slices.IndexFunc(m.users, func(u model.User) bool { return u.ID == id })
}
