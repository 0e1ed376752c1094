package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/pregled/internal/model"
)

const operatorColumns = `id, username, password_hash, role, created_at, deleted_at`

// CreateOperator creates a new dashboard operator.
func CreateOperator(ctx context.Context, db *sql.DB, username, passwordHash, role string) (*model.Operator, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO operators (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating operator: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting operator id: %w", err)
	}

	return GetOperator(ctx, db, id)
}

// GetOperator returns an operator by ID, or nil if there is none.
func GetOperator(ctx context.Context, db *sql.DB, id int64) (*model.Operator, error) {
	o, err := scanOperator(db.QueryRowContext(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting operator: %w", err)
	}
	return o, nil
}

// GetOperatorByUsername returns the active operator with the given username,
// or nil if there is none.
func GetOperatorByUsername(ctx context.Context, db *sql.DB, username string) (*model.Operator, error) {
	o, err := scanOperator(db.QueryRowContext(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE username = ? AND deleted_at IS NULL`, username,
	))
	if err != nil {
		return nil, fmt.Errorf("getting operator by username: %w", err)
	}
	return o, nil
}

// CountOperators returns the number of active operators.
func CountOperators(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operators WHERE deleted_at IS NULL`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting operators: %w", err)
	}
	return n, nil
}

// UpdateOperatorPassword updates an operator's password hash.
func UpdateOperatorPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE operators SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating operator password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating operator password: operator %d not found", id)
	}
	return nil
}

// ListOperators returns all active operators ordered by username.
func ListOperators(ctx context.Context, db *sql.DB) ([]model.Operator, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE deleted_at IS NULL ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing operators: %w", err)
	}
	defer rows.Close()

	var ops []model.Operator
	for rows.Next() {
		var o model.Operator
		if err := rows.Scan(&o.ID, &o.Username, &o.PasswordHash, &o.Role, &o.CreatedAt, &o.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning operator: %w", err)
		}
		ops = append(ops, o)
	}
	return ops, rows.Err()
}

// UpdateOperatorRole changes an active operator's role.
func UpdateOperatorRole(ctx context.Context, db *sql.DB, id int64, role string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE operators SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating operator role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating operator role: operator %d not found", id)
	}
	return nil
}

// DeleteOperator soft-deletes an operator. The username becomes free again.
func DeleteOperator(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx,
		`UPDATE operators SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting operator: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting operator: operator %d not found", id)
	}
	return nil
}

func scanOperator(row *sql.Row) (*model.Operator, error) {
	o := &model.Operator{}
	err := row.Scan(&o.ID, &o.Username, &o.PasswordHash, &o.Role, &o.CreatedAt, &o.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}
