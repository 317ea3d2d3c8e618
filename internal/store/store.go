// Package store is the persistence layer and record service: plain CRUD
// over users and tasks with partial-update semantics. It enforces no
// authorization — ownership policy belongs to the HTTP layer. Absent rows
// come back as ErrNotFound; duplicate usernames as ErrUsernameTaken.
package store

import (
	"database/sql"
	"errors"
	"regexp"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"taskhub/pkg/database"
)

var (
	// ErrNotFound is the miss sentinel for every point lookup, update and
	// delete. Callers map it to 404.
	ErrNotFound = errors.New("record not found")

	// ErrUsernameTaken reports a username uniqueness violation. The insert
	// error is authoritative even when callers pre-check, since two
	// registrations can race between the check and the insert.
	ErrUsernameTaken = errors.New("username already taken")
)

type Store struct {
	db     *sql.DB
	driver string
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// q rewrites $N placeholders to ? for the sqlite driver. Queries keep their
// placeholders in first-use order, so positional binding stays aligned.
func (s *Store) q(query string) string {
	if s.driver == database.DriverSQLite {
		return placeholderRe.ReplaceAllString(query, "?")
	}
	return query
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
