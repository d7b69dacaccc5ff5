package scoring

import (
	"errors"

	"github.com/shrimpsizemoose/gradebook/internal/models"
)

// ErrUnknownAssignment is returned when a submission names an assignment that does not exist.
var ErrUnknownAssignment = errors.New("unknown assignment")

// AssignmentFinder is the part of the assignment repository the grader needs.
type AssignmentFinder interface {
	FindOne(id string) (*models.Assignment, error)
}

type Grader struct {
	PenaltyPerWeek float64 `toml:"penalty_per_week"`
	GraceWeeks     int     `toml:"grace_weeks"`
	FloorGrade     float64 `toml:"floor_grade"`
}

func DefaultGrader() Grader {
	return Grader{
		PenaltyPerWeek: 2.5,
		GraceWeeks:     2,
		FloorGrade:     1,
	}
}

// CalculateGrade applies the late penalty. Submitting early raises the grade
// by the same amount per week, and nothing caps the result.
func (g Grader) CalculateGrade(raw float64, submitted, deadline int) float64 {
	lateness := submitted - deadline

	if lateness > g.GraceWeeks {
		return g.FloorGrade
	}

	return raw - g.PenaltyPerWeek*float64(lateness)
}

// GradeSubmission looks up the assignment deadline and returns the penalized grade.
func (g Grader) GradeSubmission(assignments AssignmentFinder, assignmentID string, raw float64, submitted int) (float64, error) {
	assignment, err := assignments.FindOne(assignmentID)
	if err != nil {
		return 0, err
	}
	if assignment == nil {
		return 0, ErrUnknownAssignment
	}

	return g.CalculateGrade(raw, submitted, assignment.Deadline), nil
}
