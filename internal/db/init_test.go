package db_test

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/DayKeeper/internal/db"
)

func TestInitPostgres_ErrorPaths(t *testing.T) {
	cases := []struct {
		name       string
		dsn        string
		wantSubstr string
	}{
		{"invalid DSN", "some=random", "ping postgres"},
		{"empty DSN", "", "ping postgres"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.InitPostgres(tc.dsn)
			if err == nil {
				t.Fatalf("InitPostgres(%q) did not return error", tc.dsn)
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("InitPostgres(%q) error = %q; want substring %q", tc.dsn, err.Error(), tc.wantSubstr)
			}
		})
	}
}

func TestCreateSchema(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := db.CreateSchema(conn, kvSchema); err != nil {
		t.Fatalf("CreateSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (name TEXT PRIMARY KEY, data TEXT NOT NULL)`

func TestCreateSchema_Error(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err = db.CreateSchema(conn, kvSchema)
	if err == nil || !strings.Contains(err.Error(), "create schema") {
		t.Errorf("expected create schema error, got %v", err)
	}
}

func TestInitSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.db")

	conn, err := db.InitSQLite(path)
	if err != nil {
		t.Fatalf("InitSQLite returned error: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(`INSERT INTO kv (name, data) VALUES (?, ?)`, "k", "v"); err != nil {
		t.Fatalf("insert into kv: %v", err)
	}

	// opening again must not fail on the existing table
	again, err := db.InitSQLite(path)
	if err != nil {
		t.Fatalf("second InitSQLite returned error: %v", err)
	}
	defer again.Close()

	var data string
	if err := again.QueryRow(`SELECT data FROM kv WHERE name = ?`, "k").Scan(&data); err != nil {
		t.Fatalf("select: %v", err)
	}
	if data != "v" {
		t.Errorf("data = %q; want %q", data, "v")
	}
}
