package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
	"github.com/shrimpsizemoose/gradebook/migrations"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB:        db,
		Converter: convertPlaceholders,
	}}

	if err := s.ApplyMigrations(migrations.FS, nil); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

// Open returns the entity repositories backed by the Postgres database at dsn.
func Open(dsn string, engine *validation.Engine) (*store.Store, error) {
	s, err := NewPostgresStore(dsn)
	if err != nil {
		return nil, err
	}
	return store.NewSQLStore(&s.BaseStore, engine), nil
}

// convertPlaceholders rewrites ? placeholders into Postgres $n form
func convertPlaceholders(query string) string {
	out := query
	for i := 1; strings.Contains(out, "?"); i++ {
		out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
	}
	return out
}
