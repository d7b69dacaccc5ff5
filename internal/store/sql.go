package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Schema describes how an entity maps onto a SQL table. Columns must match the
// entity's db tags; every table carries an extra seq column for insertion order.
type Schema[K comparable] struct {
	Table      string
	Columns    []string
	KeyColumns []string
	KeyArgs    func(K) []interface{}
}

// SQLTable is a Table over any sqlx-backed BaseStore.
type SQLTable[K comparable, E Entity[K]] struct {
	base   *BaseStore
	schema Schema[K]
}

func NewSQLTable[K comparable, E Entity[K]](base *BaseStore, schema Schema[K]) *SQLTable[K, E] {
	return &SQLTable[K, E]{base: base, schema: schema}
}

func (t *SQLTable[K, E]) keyFilter() string {
	conds := make([]string, 0, len(t.schema.KeyColumns))
	for _, col := range t.schema.KeyColumns {
		conds = append(conds, col+" = ?")
	}
	return strings.Join(conds, " AND ")
}

func (t *SQLTable[K, E]) Get(key K) (*E, error) {
	var entity E
	query := t.base.Converter(fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s",
		strings.Join(t.schema.Columns, ", "),
		t.schema.Table,
		t.keyFilter(),
	))

	err := t.base.DB.Get(&entity, query, t.schema.KeyArgs(key)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from %s: %w", t.schema.Table, err)
	}
	return &entity, nil
}

func (t *SQLTable[K, E]) List() ([]E, error) {
	entities := []E{}
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY seq ASC",
		strings.Join(t.schema.Columns, ", "),
		t.schema.Table,
	)

	if err := t.base.DB.Select(&entities, query); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.schema.Table, err)
	}
	return entities, nil
}

func (t *SQLTable[K, E]) Insert(entity E) error {
	params := make([]string, 0, len(t.schema.Columns))
	for _, col := range t.schema.Columns {
		params = append(params, ":"+col)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		t.schema.Table,
		strings.Join(t.schema.Columns, ", "),
		strings.Join(params, ", "),
	)

	if _, err := t.base.DB.NamedExec(query, entity); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.schema.Table, err)
	}
	return nil
}

func (t *SQLTable[K, E]) Replace(entity E) error {
	sets := make([]string, 0, len(t.schema.Columns))
	for _, col := range t.schema.Columns {
		if t.isKey(col) {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
	}
	conds := make([]string, 0, len(t.schema.KeyColumns))
	for _, col := range t.schema.KeyColumns {
		conds = append(conds, fmt.Sprintf("%s = :%s", col, col))
	}
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		t.schema.Table,
		strings.Join(sets, ", "),
		strings.Join(conds, " AND "),
	)

	if _, err := t.base.DB.NamedExec(query, entity); err != nil {
		return fmt.Errorf("failed to update %s: %w", t.schema.Table, err)
	}
	return nil
}

func (t *SQLTable[K, E]) Remove(key K) error {
	query := t.base.Converter(fmt.Sprintf("DELETE FROM %s WHERE %s", t.schema.Table, t.keyFilter()))
	if _, err := t.base.DB.Exec(query, t.schema.KeyArgs(key)...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.schema.Table, err)
	}
	return nil
}

func (t *SQLTable[K, E]) isKey(col string) bool {
	for _, k := range t.schema.KeyColumns {
		if k == col {
			return true
		}
	}
	return false
}
