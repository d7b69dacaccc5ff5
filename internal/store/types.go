package store

import (
	"github.com/shrimpsizemoose/gradebook/internal/models"
)

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
	DBTypeFile     DatabaseType = "file"
	DBTypeMemory   DatabaseType = "memory"
)

var (
	StudentSchema = Schema[string]{
		Table:      "students",
		Columns:    []string{"id", "name", "group_number"},
		KeyColumns: []string{"id"},
		KeyArgs:    func(id string) []interface{} { return []interface{}{id} },
	}

	AssignmentSchema = Schema[string]{
		Table:      "assignments",
		Columns:    []string{"id", "description", "deadline", "startline"},
		KeyColumns: []string{"id"},
		KeyArgs:    func(id string) []interface{} { return []interface{}{id} },
	}

	GradeSchema = Schema[models.GradeKey]{
		Table:      "grades",
		Columns:    []string{"student_id", "assignment_id", "value", "submitted_week", "feedback"},
		KeyColumns: []string{"student_id", "assignment_id"},
		KeyArgs: func(k models.GradeKey) []interface{} {
			return []interface{}{k.StudentID, k.AssignmentID}
		},
	}
)
