// Package db opens the SQL databases backing the durable key-value stores and
// creates their schema.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv (
    name TEXT PRIMARY KEY,
    data TEXT NOT NULL
);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
    name TEXT PRIMARY KEY,
    data TEXT NOT NULL
) WITHOUT ROWID;
`

// InitPostgres connects to the PostgreSQL instance at dsn and creates the kv table.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return initialize(db, "postgres", postgresSchema)
}

// InitSQLite opens (or creates) the SQLite database file at path and creates the kv table.
func InitSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	return initialize(db, "sqlite", sqliteSchema, "PRAGMA busy_timeout = 5000")
}

// initialize pings db, creates the schema and runs the pragmas. db is closed if any step fails.
func initialize(db *sql.DB, name, schema string, pragmas ...string) (*sql.DB, error) {
	fail := func(err error) (*sql.DB, error) {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return fail(fmt.Errorf("ping %s: %w", name, err))
	}
	if err := CreateSchema(db, schema); err != nil {
		return fail(err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fail(fmt.Errorf("%s: %w", p, err))
		}
	}
	return db, nil
}

// CreateSchema runs the schema statement on db.
func CreateSchema(db *sql.DB, schema string) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
