package store

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"
)

// Entity is anything stored under a comparable identity key.
type Entity[K comparable] interface {
	Key() K
}

// Repository is the CRUD contract every entity store honors.
// Absence is reported as a nil entity with a nil error, never as an error.
type Repository[K comparable, E Entity[K]] interface {
	FindOne(key K) (*E, error)
	// FindAll returns entities in insertion order.
	FindAll() ([]E, error)
	// Save validates first, then rejects duplicates with ErrAlreadyExists.
	Save(entity E) error
	// Update validates first, then returns the replaced entity or nil if the key is absent.
	Update(entity E) (*E, error)
	// Delete returns the removed entity or nil if the key is absent.
	Delete(key K) (*E, error)
}

// Table is the raw backing store under a Repository. It does no validation
// and no existence checks; Repository does both before calling it.
type Table[K comparable, E Entity[K]] interface {
	Get(key K) (*E, error)
	List() ([]E, error)
	Insert(entity E) error
	Replace(entity E) error
	Remove(key K) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies the .sql files of fsys in name order, translating dialect if needed
func (s *BaseStore) ApplyMigrations(fsys fs.FS, translateSQL func(string) string) error {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(fsys, file.Name())
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Debug.Printf("Applying migration: %s", file.Name())
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}
