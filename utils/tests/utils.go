package tests

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"gorm.io/plsql"
	"gorm.io/plsql/logger"
	"gorm.io/plsql/oracle"
)

// Open opens a DB with the oracle dialector over go-sqlmock, queries are matched exactly
func Open(t *testing.T, opts ...plsql.Option) (*plsql.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	opts = append([]plsql.Option{plsql.WithLogger(logger.Discard)}, opts...)
	db, err := plsql.Open(oracle.New(oracle.Config{Conn: conn}), opts...)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	return db, mock
}

// OpenWithCatalog opens a DB resolving callables from NewCatalog
func OpenWithCatalog(t *testing.T, opts ...plsql.Option) (*plsql.DB, sqlmock.Sqlmock) {
	return Open(t, append([]plsql.Option{plsql.WithCatalog(NewCatalog())}, opts...)...)
}
