package kv

import (
	"fmt"
	"io"

	"github.com/atinyakov/DayKeeper/internal/db"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the durable store selected by backend. path is used by the file
// and sqlite backends, dsn by postgres. The returned Closer releases the
// underlying database handle, if any.
func Open(backend, path, dsn string) (Store, io.Closer, error) {
	switch backend {
	case BackendFile, "":
		s, err := NewFileStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case BackendSQLite:
		conn, err := db.InitSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLStore(conn, SQLite), conn, nil
	case BackendPostgres:
		conn, err := db.InitPostgres(dsn)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLStore(conn, Postgres), conn, nil
	case BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
