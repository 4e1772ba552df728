package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// Dialect holds the statements a SQLStore runs against its kv table.
type Dialect struct {
	Name   string
	Get    string
	Set    string
	Remove string
}

var (
	// Postgres addresses the kv table created by db.InitPostgres.
	Postgres = Dialect{
		Name:   BackendPostgres,
		Get:    `SELECT data FROM kv WHERE name = $1`,
		Set:    `INSERT INTO kv (name, data) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data`,
		Remove: `DELETE FROM kv WHERE name = $1`,
	}
	// SQLite addresses the kv table created by db.InitSQLite.
	SQLite = Dialect{
		Name:   BackendSQLite,
		Get:    `SELECT data FROM kv WHERE name = ?`,
		Set:    `INSERT INTO kv (name, data) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET data = excluded.data`,
		Remove: `DELETE FROM kv WHERE name = ?`,
	}
)

// SQLStore implements Store on a single two-column table.
type SQLStore struct {
	// DB is the database handle for executing queries.
	DB      *sql.DB
	dialect Dialect
	// writeLock serializes writes; modernc sqlite does not support concurrent writers.
	writeLock sync.Mutex
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a SQLStore over db using the statements of dialect.
// The kv table must already exist.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{DB: db, dialect: dialect}
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, s.dialect.Get, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s get %q: %w", s.dialect.Name, key, err)
	}
	return value, true, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.DB.ExecContext(ctx, s.dialect.Set, key, value); err != nil {
		return fmt.Errorf("%s set %q: %w", s.dialect.Name, key, err)
	}
	return nil
}

// Remove implements Store.
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.DB.ExecContext(ctx, s.dialect.Remove, key); err != nil {
		return fmt.Errorf("%s remove %q: %w", s.dialect.Name, key, err)
	}
	return nil
}
