package memory

import (
	"sync"

	"github.com/shrimpsizemoose/gradebook/internal/models"
	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

// Table keeps entities in insertion order, indexed by key.
type Table[K comparable, E store.Entity[K]] struct {
	rows  []E
	index map[K]int
	mutex sync.RWMutex
}

func NewTable[K comparable, E store.Entity[K]]() *Table[K, E] {
	return &Table[K, E]{index: make(map[K]int)}
}

func (t *Table[K, E]) Get(key K) (*E, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if i, ok := t.index[key]; ok {
		entity := t.rows[i]
		return &entity, nil
	}
	return nil, nil
}

func (t *Table[K, E]) List() ([]E, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	out := make([]E, len(t.rows))
	copy(out, t.rows)
	return out, nil
}

func (t *Table[K, E]) Insert(entity E) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.index[entity.Key()] = len(t.rows)
	t.rows = append(t.rows, entity)
	return nil
}

func (t *Table[K, E]) Replace(entity E) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if i, ok := t.index[entity.Key()]; ok {
		t.rows[i] = entity
	}
	return nil
}

func (t *Table[K, E]) Remove(key K) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	i, ok := t.index[key]
	if !ok {
		return nil
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	delete(t.index, key)
	for j := i; j < len(t.rows); j++ {
		t.index[t.rows[j].Key()] = j
	}
	return nil
}

// NewStore returns repositories that live only as long as the process.
func NewStore(engine *validation.Engine) *store.Store {
	return store.New(
		NewTable[string, models.Student](),
		NewTable[string, models.Assignment](),
		NewTable[models.GradeKey, models.Grade](),
		engine,
		nil,
	)
}
