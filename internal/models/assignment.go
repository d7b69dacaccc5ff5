package models

// Assignment is a homework with deadline and startline expressed in course weeks.
// Startline is expected to be <= Deadline but nothing enforces it.
type Assignment struct {
	ID          string `db:"id" json:"id" toml:"id" validate:"notblank"`
	Description string `db:"description" json:"description" toml:"description" validate:"notblank"`
	Deadline    int    `db:"deadline" json:"deadline" toml:"deadline" validate:"week"`
	Startline   int    `db:"startline" json:"startline" toml:"startline" validate:"week"`
}

func (a Assignment) Key() string {
	return a.ID
}
