package models

import (
	"cmp"
	"fmt"
)

// GradeKey identifies a grade. At most one grade exists per (student, assignment).
type GradeKey struct {
	StudentID    string `db:"student_id" json:"student_id" toml:"student_id" validate:"notblank"`
	AssignmentID string `db:"assignment_id" json:"assignment_id" toml:"assignment_id" validate:"notblank"`
}

func NewGradeKey(studentID, assignmentID string) GradeKey {
	return GradeKey{StudentID: studentID, AssignmentID: assignmentID}
}

// Compare orders keys by student first, then assignment.
func (k GradeKey) Compare(other GradeKey) int {
	if c := cmp.Compare(k.StudentID, other.StudentID); c != 0 {
		return c
	}
	return cmp.Compare(k.AssignmentID, other.AssignmentID)
}

func (k GradeKey) String() string {
	return fmt.Sprintf("%s/%s", k.StudentID, k.AssignmentID)
}

type Grade struct {
	GradeKey
	Value         float64 `db:"value" json:"value" toml:"value" validate:"grade"`
	SubmittedWeek int     `db:"submitted_week" json:"submitted_week" toml:"submitted_week" validate:"week"`
	Feedback      string  `db:"feedback" json:"feedback" toml:"feedback"`
}

func (g Grade) Key() GradeKey {
	return g.GradeKey
}
