package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/store"
)

// UserMutator changes users and refreshes whatever snapshot depends on them.
type UserMutator interface {
	AddUser(ctx context.Context, u model.User) (model.User, error)
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
	DeleteUser(ctx context.Context, id model.ID) error
}

// UsersHandler serves the user service contract that store.RemoteUsers
// speaks, so one instance can back another.
type UsersHandler struct {
	Users   store.Users
	Mutator UserMutator
}

type userEnvelope struct {
	Data any `json:"data"`
}

// List handles GET /api/user.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, userEnvelope{Data: users})
}

// Register handles POST /api/user/register.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	u, ok := readUser(w, r)
	if !ok {
		return
	}
	u.ID = ""

	created, err := h.Mutator.AddUser(r.Context(), u)
	if err != nil {
		slog.Error("failed to create user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user registered", "operator", claims.Username, "id", created.ID, "via", "api")
	jsonResponse(w, http.StatusCreated, userEnvelope{Data: created})
}

// Update handles PUT /api/user/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := model.ID(r.PathValue("id"))
	if id == "" {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, ok := readUser(w, r)
	if !ok {
		return
	}
	u.ID = id

	updated, err := h.Mutator.UpdateUser(r.Context(), u)
	if errors.Is(err, store.ErrUserNotFound) {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		slog.Error("failed to update user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user updated", "operator", claims.Username, "id", id, "via", "api")
	jsonResponse(w, http.StatusOK, userEnvelope{Data: updated})
}

// Delete handles DELETE /api/user/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.ID(r.PathValue("id"))
	if id == "" {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	err := h.Mutator.DeleteUser(r.Context(), id)
	if errors.Is(err, store.ErrUserNotFound) {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user deleted", "operator", claims.Username, "id", id, "via", "api")
	w.WriteHeader(http.StatusNoContent)
}

// readUser decodes and validates a user body. On failure it writes the error
// response and returns false.
func readUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return model.User{}, false
	}

	u, err := model.NormalizeUser(data)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return model.User{}, false
	}
	if err := u.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return model.User{}, false
	}
	return u, true
}
