// Package state holds the product and user snapshots shown by the dashboard.
//
// Collections are replaced as a whole by reloads. Every reload takes a ticket
// before it starts; a result is applied only if no later reload of the same
// collection has been applied already, so a slow response can never overwrite
// newer data.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/pregled/internal/dashboard"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/store"
)

// ProductSource loads the product catalog.
type ProductSource interface {
	Products(ctx context.Context) ([]model.Product, error)
}

// SizeRecorder is told the size of every applied collection.
type SizeRecorder interface {
	SetCollectionSize(collection string, n int)
}

// Collection names.
const (
	CollectionProducts = "products"
	CollectionUsers    = "users"
)

// collection is one reloadable snapshot.
type collection[T any] struct {
	items    []T
	err      error
	loaded   bool
	loadedAt time.Time

	issued  uint64
	applied uint64
}

// ticket reserves the next sequence number. Callers must hold the lock.
func (c *collection[T]) ticket() uint64 {
	c.issued++
	return c.issued
}

// apply stores the result of reload seq unless a newer one was applied.
// Errors keep the previous items. Callers must hold the lock.
func (c *collection[T]) apply(seq uint64, items []T, err error, now time.Time) bool {
	if seq <= c.applied {
		return false
	}
	c.applied = seq
	c.err = err
	if err == nil {
		c.items = items
		c.loaded = true
		c.loadedAt = now
	}
	return true
}

// App is the shared application state. It is safe for concurrent use.
type App struct {
	products ProductSource
	users    store.Users
	sizes    SizeRecorder
	now      func() time.Time

	mu          sync.RWMutex
	productData collection[model.Product]
	userData    collection[model.User]
	summary     *dashboard.Summary
}

// New returns an empty App. Call Load to fetch the collections.
func New(products ProductSource, users store.Users, sizes SizeRecorder) *App {
	return &App{products: products, users: users, sizes: sizes, now: time.Now}
}

// Load fetches products and users concurrently and returns once both have
// settled. A failure of one collection leaves the other intact; the returned
// error joins both failures.
func (a *App) Load(ctx context.Context) error {
	var g errgroup.Group
	var productErr, userErr error
	g.Go(func() error {
		productErr = a.ReloadProducts(ctx)
		return nil
	})
	g.Go(func() error {
		userErr = a.ReloadUsers(ctx)
		return nil
	})
	_ = g.Wait()
	return errors.Join(productErr, userErr)
}

// ReloadProducts replaces the product snapshot with a fresh catalog listing.
func (a *App) ReloadProducts(ctx context.Context) error {
	a.mu.Lock()
	seq := a.productData.ticket()
	a.mu.Unlock()

	products, err := a.products.Products(ctx)
	if err != nil {
		err = fmt.Errorf("loading products: %w", err)
	}

	a.mu.Lock()
	applied := a.productData.apply(seq, products, err, a.now())
	if applied && err == nil {
		a.summary = nil
	}
	a.mu.Unlock()

	a.report(CollectionProducts, seq, applied, len(products), err)
	return err
}

// ReloadUsers replaces the user snapshot with the store's current listing.
func (a *App) ReloadUsers(ctx context.Context) error {
	a.mu.Lock()
	seq := a.userData.ticket()
	a.mu.Unlock()

	users, err := a.users.List(ctx)
	if err != nil {
		err = fmt.Errorf("loading users: %w", err)
	}

	a.mu.Lock()
	applied := a.userData.apply(seq, users, err, a.now())
	if applied && err == nil {
		a.summary = nil
	}
	a.mu.Unlock()

	a.report(CollectionUsers, seq, applied, len(users), err)
	return err
}

func (a *App) report(name string, seq uint64, applied bool, n int, err error) {
	switch {
	case !applied:
		slog.Warn("dropping stale response", "collection", name, "seq", seq)
	case err != nil:
		slog.Error("reload failed", "collection", name, "error", err)
	default:
		if a.sizes != nil {
			a.sizes.SetCollectionSize(name, n)
		}
	}
}

// AddUser stores a new user and reloads the collection.
func (a *App) AddUser(ctx context.Context, u model.User) (model.User, error) {
	created, err := a.users.Create(ctx, u)
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}
	slog.Info("user created", "id", created.ID, "name", created.FullName())
	a.reloadAfterMutation(ctx)
	return created, nil
}

// UpdateUser replaces the user with the same id and reloads the collection.
func (a *App) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	updated, err := a.users.Update(ctx, u)
	if err != nil {
		return model.User{}, fmt.Errorf("updating user %s: %w", u.ID, err)
	}
	slog.Info("user updated", "id", updated.ID)
	a.reloadAfterMutation(ctx)
	return updated, nil
}

// DeleteUser removes the user and reloads the collection.
func (a *App) DeleteUser(ctx context.Context, id model.ID) error {
	if err := a.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	slog.Info("user deleted", "id", id)
	a.reloadAfterMutation(ctx)
	return nil
}

// reloadAfterMutation refreshes users after a successful change. A failed
// reload is recorded on the collection, not reported as a failed mutation.
func (a *App) reloadAfterMutation(ctx context.Context) {
	_ = a.ReloadUsers(ctx)
}

// Products returns a copy of the product snapshot.
func (a *App) Products() []model.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.productData.items)
}

// Users returns a copy of the user snapshot.
func (a *App) Users() []model.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.userData.items)
}

// Product looks up a product by id.
func (a *App) Product(id model.ID) (model.Product, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.productData.items {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// User looks up a user by id.
func (a *App) User(id model.ID) (model.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, u := range a.userData.items {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Status describes one collection for banners and the JSON health output.
type Status struct {
	Loaded   bool
	LoadedAt time.Time
	Count    int
	Err      error
}

// ProductStatus reports the state of the product snapshot.
func (a *App) ProductStatus() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return statusOf(&a.productData)
}

// UserStatus reports the state of the user snapshot.
func (a *App) UserStatus() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return statusOf(&a.userData)
}

func statusOf[T any](c *collection[T]) Status {
	return Status{Loaded: c.loaded, LoadedAt: c.loadedAt, Count: len(c.items), Err: c.err}
}

// Summary returns the dashboard figures, computed once per snapshot pair.
func (a *App) Summary() dashboard.Summary {
	a.mu.RLock()
	if a.summary != nil {
		s := cloneSummary(*a.summary)
		a.mu.RUnlock()
		return s
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.summary == nil {
		s := dashboard.Summarize(a.productData.items, a.userData.items)
		a.summary = &s
	}
	return cloneSummary(*a.summary)
}

// cloneSummary detaches s from the cached summary so callers may modify it.
func cloneSummary(s dashboard.Summary) dashboard.Summary {
	s.Categories = slices.Clone(s.Categories)
	s.Roles = maps.Clone(s.Roles)
	return s
}
