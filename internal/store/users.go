package store

import (
	"context"
	"errors"

	"github.com/erazemk/pregled/internal/model"
)

// ErrUserNotFound is returned when an update or delete names an unknown id.
var ErrUserNotFound = errors.New("user not found")

// Users is a storage strategy for the managed user collection.
type Users interface {
	// List returns every user in insertion order.
	List(ctx context.Context) ([]model.User, error)

	// Create stores a new user. Implementations assign the id.
	Create(ctx context.Context, u model.User) (model.User, error)

	// Update replaces the user with the same id. The id never changes.
	Update(ctx context.Context, u model.User) (model.User, error)

	// Delete removes the user with the given id.
	Delete(ctx context.Context, id model.ID) error
}

// Storage strategy names.
const (
	KindMemory = "memory"
	KindLocal  = "local"
	KindRemote = "remote"
)
