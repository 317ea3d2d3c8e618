package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhub/internal/models"
)

// UserPatch carries a partial update. Nil fields are left untouched; a JSON
// null in the request arrives here as nil too, so null and absent behave
// identically.
type UserPatch struct {
	Email          *string
	HashedPassword *string
	IsAdmin        *bool
}

const userColumns = "id, username, email, hashed_password, is_admin"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.IsAdmin); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. A username collision surfaces as
// ErrUsernameTaken regardless of any pre-check the caller ran.
func (s *Store) CreateUser(ctx context.Context, username, email, hashedPassword string, isAdmin bool) (*models.User, error) {
	u := models.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		IsAdmin:        isAdmin,
	}
	err := s.db.QueryRowContext(ctx,
		s.q("INSERT INTO users (username, email, hashed_password, is_admin) VALUES ($1, $2, $3, $4) RETURNING id"),
		username, email, hashedPassword, isAdmin,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.q("SELECT "+userColumns+" FROM users WHERE id = $1"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user %d: %w", id, err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.q("SELECT "+userColumns+" FROM users WHERE username = $1"), username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user %q: %w", username, err)
	}
	return u, nil
}

// ListUsers returns users in insertion order, offset by skip, at most limit.
// No total count is reported.
func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q("SELECT "+userColumns+" FROM users ORDER BY id LIMIT $1 OFFSET $2"), limit, skip)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of patch and returns the updated
// row. The write and the re-read share one transaction.
func (s *Store) UpdateUser(ctx context.Context, id int, patch UserPatch) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.q(`
        UPDATE users
        SET email = COALESCE($1, email),
            hashed_password = COALESCE($2, hashed_password),
            is_admin = COALESCE($3, is_admin)
        WHERE id = $4`),
		patch.Email, patch.HashedPassword, patch.IsAdmin, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	u, err := scanUser(tx.QueryRowContext(ctx,
		s.q("SELECT "+userColumns+" FROM users WHERE id = $1"), id))
	if err != nil {
		return nil, fmt.Errorf("rereading user %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return u, nil
}

// DeleteUser removes the user and returns the pre-deletion row. Tasks owned
// by the user go with it via the schema's cascade.
func (s *Store) DeleteUser(ctx context.Context, id int) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	u, err := scanUser(tx.QueryRowContext(ctx,
		s.q("SELECT "+userColumns+" FROM users WHERE id = $1"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM users WHERE id = $1"), id); err != nil {
		return nil, fmt.Errorf("deleting user %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delete: %w", err)
	}
	return u, nil
}
