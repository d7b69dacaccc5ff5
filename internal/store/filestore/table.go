// Package filestore keeps each entity kind in its own TOML document.
// Every mutation rewrites the whole document through a temp file and a rename,
// so a file on disk is always either the old or the new version.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/gradebook/internal/models"
	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

type document[E any] struct {
	Entities []E `toml:"entities"`
}

type Table[K comparable, E store.Entity[K]] struct {
	path string
}

func NewTable[K comparable, E store.Entity[K]](path string) *Table[K, E] {
	return &Table[K, E]{path: path}
}

func (t *Table[K, E]) load() ([]E, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []E{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", t.path, err)
	}

	var doc document[E]
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", t.path, err)
	}
	if doc.Entities == nil {
		doc.Entities = []E{}
	}
	return doc.Entities, nil
}

func (t *Table[K, E]) write(entities []E) (err error) {
	data, err := toml.Marshal(document[E]{Entities: entities})
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", t.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file for %s: %w", t.path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("error writing %s: %w", t.path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("error syncing %s: %w", t.path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", t.path, err)
	}
	if err = os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("error replacing %s: %w", t.path, err)
	}
	return nil
}

func (t *Table[K, E]) Get(key K) (*E, error) {
	entities, err := t.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if e.Key() == key {
			return &e, nil
		}
	}
	return nil, nil
}

func (t *Table[K, E]) List() ([]E, error) {
	return t.load()
}

func (t *Table[K, E]) Insert(entity E) error {
	entities, err := t.load()
	if err != nil {
		return err
	}
	return t.write(append(entities, entity))
}

func (t *Table[K, E]) Replace(entity E) error {
	entities, err := t.load()
	if err != nil {
		return err
	}
	for i := range entities {
		if entities[i].Key() == entity.Key() {
			entities[i] = entity
		}
	}
	return t.write(entities)
}

func (t *Table[K, E]) Remove(key K) error {
	entities, err := t.load()
	if err != nil {
		return err
	}
	kept := entities[:0]
	for _, e := range entities {
		if e.Key() != key {
			kept = append(kept, e)
		}
	}
	return t.write(kept)
}

// Open returns repositories stored as students.toml, assignments.toml and grades.toml in dir.
func Open(dir string, engine *validation.Engine) (*store.Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return store.New(
		NewTable[string, models.Student](filepath.Join(dir, "students.toml")),
		NewTable[string, models.Assignment](filepath.Join(dir, "assignments.toml")),
		NewTable[models.GradeKey, models.Grade](filepath.Join(dir, "grades.toml")),
		engine,
		nil,
	), nil
}
