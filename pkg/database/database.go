// Package database opens the relational store behind the service: PostgreSQL
// when a connection string is configured, a local SQLite file otherwise.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Connect opens databaseURL with the postgres driver, or falls back to the
// SQLite file at sqlitePath when databaseURL is empty. It returns the handle
// and the driver name so callers can pick dialect-specific SQL.
func Connect(databaseURL, sqlitePath string) (*sql.DB, string, error) {
	if databaseURL != "" {
		db, err := sql.Open(DriverPostgres, databaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("opening postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, "", fmt.Errorf("pinging postgres: %w", err)
		}
		return db, DriverPostgres, nil
	}

	// _foreign_keys=on so REFERENCES ... ON DELETE CASCADE is enforced.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", sqlitePath)
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("opening sqlite: %w", err)
	}
	// A single writer keeps the file database out of SQLITE_BUSY territory.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("pinging sqlite: %w", err)
	}
	return db, DriverSQLite, nil
}
