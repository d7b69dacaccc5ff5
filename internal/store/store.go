package store

import (
	"github.com/shrimpsizemoose/gradebook/internal/models"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

// Store bundles one repository per entity kind over a single backend.
type Store struct {
	Students    Repository[string, models.Student]
	Assignments Repository[string, models.Assignment]
	Grades      Repository[models.GradeKey, models.Grade]

	closer func() error
}

func New(
	students Table[string, models.Student],
	assignments Table[string, models.Assignment],
	grades Table[models.GradeKey, models.Grade],
	engine *validation.Engine,
	closer func() error,
) *Store {
	return &Store{
		Students:    NewRepository(students, validation.StudentValidator(engine)),
		Assignments: NewRepository(assignments, validation.AssignmentValidator(engine)),
		Grades:      NewRepository(grades, validation.GradeValidator(engine)),
		closer:      closer,
	}
}

// NewSQLStore builds the repositories on top of a migrated sqlx database.
func NewSQLStore(base *BaseStore, engine *validation.Engine) *Store {
	return New(
		NewSQLTable[string, models.Student](base, StudentSchema),
		NewSQLTable[string, models.Assignment](base, AssignmentSchema),
		NewSQLTable[models.GradeKey, models.Grade](base, GradeSchema),
		engine,
		base.Close,
	)
}

func (s *Store) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
