package db

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestInitialize_ClosesOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
	}{
		{
			name: "schema fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
			},
		},
		{
			name: "pragma fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta("PRAGMA busy_timeout = 5000")).WillReturnError(errors.New("locked"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to open sqlmock database: %v", err)
			}
			tt.setup(mock)
			mock.ExpectClose()

			got, err := initialize(conn, "sqlite", sqliteSchema, "PRAGMA busy_timeout = 5000")
			if err == nil {
				t.Fatal("expected an error")
			}
			if got != nil {
				t.Error("expected no database on failure")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("database was not closed: %v", err)
			}
		})
	}
}

func TestInitialize_Success(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv")).WillReturnResult(sqlmock.NewResult(0, 0))

	got, err := initialize(conn, "postgres", postgresSchema)
	if err != nil {
		t.Fatalf("initialize returned error: %v", err)
	}
	if got != conn {
		t.Error("expected the same handle back")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
