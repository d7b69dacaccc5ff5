package models

type Student struct {
	ID    string `db:"id" json:"id" toml:"id" validate:"notblank"`
	Name  string `db:"name" json:"name" toml:"name" validate:"notblank"`
	Group int    `db:"group_number" json:"group" toml:"group" validate:"group"`
}

func (s Student) Key() string {
	return s.ID
}
