package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mkamran/campushub/internal/apperr"
	"github.com/mkamran/campushub/internal/model"
)

// CreateUser creates a new account. The email is normalized to lower case so
// it can serve as a stable identity key.
func CreateUser(ctx context.Context, db *sql.DB, email, passwordHash, role string) (*model.User, error) {
	email = NormalizeEmail(email)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, apperr.Validation("email")
	case passwordHash == "":
		return nil, apperr.Validation("password")
	case role != model.RoleAdmin && role != model.RoleUser:
		return nil, apperr.Validation("role")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?)`,
		email, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE id = ?`, id))
}

// GetUserByEmail returns a user by email, or nil when no account exists.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE email = ?`,
		NormalizeEmail(email)))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// UpdateUserPassword replaces a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// IsAdminEmail reports whether the account with this email holds the admin
// role. Unknown emails hold no role.
func IsAdminEmail(ctx context.Context, db *sql.DB, email string) (bool, error) {
	var role string
	err := db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE email = ?`, NormalizeEmail(email)).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up role: %w", err)
	}
	return role == model.RoleAdmin, nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}
