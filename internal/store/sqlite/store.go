// internal/store/sqlite/store.go
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
	"github.com/shrimpsizemoose/gradebook/migrations"
)

type SQLiteStore struct {
	store.BaseStore
}

// NewSQLiteStore opens (creating if needed) the database file at dsn and applies migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", strings.TrimPrefix(dsn, "sqlite://"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	// single writer; also keeps :memory: databases on one connection
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}

	if err := s.ApplyMigrations(migrations.FS, translateToSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

// Open returns the entity repositories backed by the sqlite database at dsn.
func Open(dsn string, engine *validation.Engine) (*store.Store, error) {
	s, err := NewSQLiteStore(dsn)
	if err != nil {
		return nil, err
	}
	return store.NewSQLStore(&s.BaseStore, engine), nil
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL":        "INTEGER PRIMARY KEY AUTOINCREMENT",
		"DOUBLE PRECISION": "REAL",
		"BIGINT":           "INTEGER",
		"TRUE":             "1",
		"FALSE":            "0",
		"now()":            "CURRENT_TIMESTAMP",
		"::text":           "",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}
