package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/store"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrWeakPassword is returned when a new password fails model.ValidatePassword.
var ErrWeakPassword = errors.New("weak password")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate looks up an active operator and checks the password.
func Authenticate(ctx context.Context, db *sql.DB, username, password string) (*model.Operator, error) {
	op, err := store.GetOperatorByUsername(ctx, db, username)
	if err != nil {
		return nil, err
	}
	if op == nil || op.DeletedAt != nil || !CheckPassword(op.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return op, nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one.
func ChangePassword(ctx context.Context, db *sql.DB, operatorID int64, current, next string) error {
	op, err := store.GetOperator(ctx, db, operatorID)
	if err != nil {
		return err
	}
	if op == nil || !CheckPassword(op.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if err := model.ValidatePassword(next); err != nil {
		return fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return store.UpdateOperatorPassword(ctx, db, operatorID, hash)
}
