package store

import (
	"errors"
	"fmt"

	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

var ErrAlreadyExists = errors.New("entity already exists")

type repository[K comparable, E Entity[K]] struct {
	table     Table[K, E]
	validator validation.Validator[E]
}

// NewRepository wraps a Table with validation and identity checks.
func NewRepository[K comparable, E Entity[K]](table Table[K, E], validator validation.Validator[E]) Repository[K, E] {
	return &repository[K, E]{table: table, validator: validator}
}

func (r *repository[K, E]) FindOne(key K) (*E, error) {
	return r.table.Get(key)
}

func (r *repository[K, E]) FindAll() ([]E, error) {
	return r.table.List()
}

func (r *repository[K, E]) Save(entity E) error {
	if err := r.validator.Validate(entity); err != nil {
		return err
	}

	existing, err := r.table.Get(entity.Key())
	if err != nil {
		return fmt.Errorf("failed to check %v: %w", entity.Key(), err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, entity.Key())
	}

	return r.table.Insert(entity)
}

func (r *repository[K, E]) Update(entity E) (*E, error) {
	if err := r.validator.Validate(entity); err != nil {
		return nil, err
	}

	previous, err := r.table.Get(entity.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to check %v: %w", entity.Key(), err)
	}
	if previous == nil {
		return nil, nil
	}

	if err := r.table.Replace(entity); err != nil {
		return nil, err
	}
	return previous, nil
}

func (r *repository[K, E]) Delete(key K) (*E, error) {
	existing, err := r.table.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to check %v: %w", key, err)
	}
	if existing == nil {
		return nil, nil
	}

	if err := r.table.Remove(key); err != nil {
		return nil, err
	}
	return existing, nil
}
