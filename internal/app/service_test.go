package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/gradebook/internal/models"
	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

// 2024-10-16 falls in ISO week 42, which is course week 3
var testNow = time.Date(2024, 10, 16, 12, 0, 0, 0, time.UTC)

func setupTestService(t *testing.T, dsn string, bounds validation.Bounds) *Service {
	config := DefaultConfig()
	config.Database.DSN = dsn
	config.Validation = bounds
	config.Reports.Dir = filepath.Join(t.TempDir(), "reports")

	st, err := NewStore(dsn, validation.NewEngine(bounds))
	require.NoError(t, err, "Failed to create store")

	s := New(config, st, nil, WithClock(func() time.Time { return testNow }))
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func backends(t *testing.T) map[string]string {
	return map[string]string{
		"memory": "memory://",
		"sqlite": ":memory:",
		"file":   "file://" + t.TempDir(),
	}
}

func TestSaveStudent_RejectsDuplicates(t *testing.T) {
	for name, dsn := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := setupTestService(t, dsn, validation.DefaultBounds())

			require.NoError(t, s.SaveStudent("s1", "Ana", 221))
			err := s.SaveStudent("s1", "Ana", 221)
			assert.ErrorIs(t, err, store.ErrAlreadyExists)

			students, err := s.FindAllStudents()
			require.NoError(t, err)
			assert.Equal(t, []models.Student{{ID: "s1", Name: "Ana", Group: 221}}, students)
		})
	}
}

func TestSaveStudent_GroupBounds(t *testing.T) {
	testCases := []struct {
		group int
		valid bool
	}{
		{group: 110, valid: false},
		{group: 111, valid: true},
		{group: 937, valid: true},
		{group: 938, valid: false},
	}

	s := setupTestService(t, "memory://", validation.DefaultBounds())

	for _, tc := range testCases {
		id := fmt.Sprintf("s%d", tc.group)
		err := s.SaveStudent(id, "Ana", tc.group)
		if tc.valid {
			assert.NoError(t, err, "group %d", tc.group)
		} else {
			assert.ErrorIs(t, err, validation.ErrValidation, "group %d", tc.group)
		}
	}
}

func TestSaveStudent_ReportsEveryViolation(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())

	err := s.SaveStudent("", " ", 5)
	require.Error(t, err)

	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, "id must not be blank\nname must not be blank\ngroup must be between 111 and 937", err.Error())
}

func TestValidationPrecedesMutation(t *testing.T) {
	for name, dsn := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := setupTestService(t, dsn, validation.DefaultBounds())
			require.NoError(t, s.SaveStudent("s1", "Ana", 221))
			require.NoError(t, s.SaveAssignment("t1", "Linked lists", 5, 3))

			assert.ErrorIs(t, s.SaveStudent("s2", "", 221), validation.ErrValidation)
			assert.ErrorIs(t, s.SaveAssignment("t2", "Trees", 0, 3), validation.ErrValidation)

			code, err := s.UpdateStudent("s1", "Ana", 1000)
			assert.ErrorIs(t, err, validation.ErrValidation)
			assert.Equal(t, 0, code)

			code, err = s.UpdateAssignment("t1", "", 5, 3)
			assert.ErrorIs(t, err, validation.ErrValidation)
			assert.Equal(t, 0, code)

			students, err := s.FindAllStudents()
			require.NoError(t, err)
			assert.Equal(t, []models.Student{{ID: "s1", Name: "Ana", Group: 221}}, students)

			assignments, err := s.FindAllAssignments()
			require.NoError(t, err)
			assert.Equal(t, []models.Assignment{{ID: "t1", Description: "Linked lists", Deadline: 5, Startline: 3}}, assignments)
		})
	}
}

func TestSaveGrade_Penalty(t *testing.T) {
	// widen the grade range so the early submission bonus is storable
	bounds := validation.DefaultBounds()
	bounds.GradeMax = 20

	testCases := []struct {
		name      string
		raw       float64
		submitted int
		expected  float64
	}{
		{name: "early submission raises the grade", raw: 8.5, submitted: 11, expected: 11.0},
		{name: "early submission from the lab sheet", raw: 6, submitted: 11, expected: 8.5},
		{name: "on time", raw: 7, submitted: 12, expected: 7},
		{name: "two weeks late", raw: 9, submitted: 14, expected: 4},
		{name: "three weeks late gets the floor", raw: 9, submitted: 15, expected: 1},
	}

	for name, dsn := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := setupTestService(t, dsn, bounds)
			require.NoError(t, s.SaveStudent("s1", "Ana", 221))
			require.NoError(t, s.SaveAssignment("t1", "Linked lists", 12, 10))

			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					_, err := s.Store.Grades.Delete(models.NewGradeKey("s1", "t1"))
					require.NoError(t, err)

					require.NoError(t, s.SaveGrade("s1", "t1", tc.raw, tc.submitted, "ok"))

					grade, err := s.FindGrade("s1", "t1")
					require.NoError(t, err)
					require.NotNil(t, grade)
					assert.Equal(t, tc.expected, grade.Value)
					assert.Equal(t, tc.submitted, grade.SubmittedWeek)
					assert.Equal(t, "ok", grade.Feedback)
				})
			}
		})
	}
}

func TestSaveGrade_EarlyBonusAboveRangeIsRejected(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())
	require.NoError(t, s.SaveStudent("s1", "Ana", 221))
	require.NoError(t, s.SaveAssignment("t1", "Linked lists", 12, 10))

	err := s.SaveGrade("s1", "t1", 8.5, 11, "ok")
	assert.ErrorIs(t, err, validation.ErrValidation)

	grades, err := s.FindAllGrades()
	require.NoError(t, err)
	assert.Empty(t, grades)
}

func TestSaveGrade_MissingReference(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())
	require.NoError(t, s.SaveStudent("s1", "Ana", 221))
	require.NoError(t, s.SaveAssignment("t1", "Linked lists", 12, 10))

	assert.ErrorIs(t, s.SaveGrade("nope", "t1", 8, 12, "ok"), ErrGradeReferenceNotFound)
	assert.ErrorIs(t, s.SaveGrade("s1", "nope", 8, 12, "ok"), ErrGradeReferenceNotFound)
	assert.ErrorIs(t, s.SaveGrade("nope", "nope", 8, 12, "ok"), ErrGradeReferenceNotFound)

	grades, err := s.FindAllGrades()
	require.NoError(t, err)
	assert.Empty(t, grades)
}

func TestSaveGrade_Duplicate(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())
	require.NoError(t, s.SaveStudent("s1", "Ana", 221))
	require.NoError(t, s.SaveAssignment("t1", "Linked lists", 12, 10))

	require.NoError(t, s.SaveGrade("s1", "t1", 8, 12, "ok"))
	assert.ErrorIs(t, s.SaveGrade("s1", "t1", 9, 12, "again"), store.ErrAlreadyExists)

	grades, err := s.FindAllGrades()
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 8.0, grades[0].Value)
}

func TestAbsenceIsAResultCode(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())
	require.NoError(t, s.SaveStudent("s1", "Ana", 221))

	code, err := s.DeleteStudent("nope")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = s.DeleteAssignment("nope")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = s.UpdateStudent("nope", "Ana", 221)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = s.UpdateAssignment("nope", "Trees", 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	students, err := s.FindAllStudents()
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestUpdateAndDelete(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())
	require.NoError(t, s.SaveStudent("s1", "Ana", 221))
	require.NoError(t, s.SaveAssignment("t1", "Linked lists", 5, 3))

	code, err := s.UpdateStudent("s1", "Ana Maria", 222)
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	student, err := s.FindStudent("s1")
	require.NoError(t, err)
	assert.Equal(t, &models.Student{ID: "s1", Name: "Ana Maria", Group: 222}, student)

	code, err = s.UpdateAssignment("t1", "Doubly linked lists", 6, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	code, err = s.DeleteStudent("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	student, err = s.FindStudent("s1")
	require.NoError(t, err)
	assert.Nil(t, student)

	code, err = s.DeleteAssignment("t1")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestDeleteStudent_KeepsGrades(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())
	require.NoError(t, s.SaveStudent("s1", "Ana", 221))
	require.NoError(t, s.SaveAssignment("t1", "Linked lists", 12, 10))
	require.NoError(t, s.SaveGrade("s1", "t1", 8, 12, "ok"))

	code, err := s.DeleteStudent("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	grade, err := s.FindGrade("s1", "t1")
	require.NoError(t, err)
	assert.NotNil(t, grade)
}

func TestExtendDeadline(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())
	require.Equal(t, 3, s.CurrentWeek())

	require.NoError(t, s.SaveAssignment("passed", "Arrays", 2, 1))
	require.NoError(t, s.SaveAssignment("current", "Lists", 3, 1))
	require.NoError(t, s.SaveAssignment("future", "Trees", 7, 4))

	t.Run("deadline already passed", func(t *testing.T) {
		code, err := s.ExtendDeadline("passed", 2)
		require.NoError(t, err)
		assert.Equal(t, 0, code)

		a, err := s.FindAssignment("passed")
		require.NoError(t, err)
		assert.Equal(t, 2, a.Deadline)
	})

	t.Run("deadline is this week", func(t *testing.T) {
		code, err := s.ExtendDeadline("current", 2)
		require.NoError(t, err)
		assert.Equal(t, 1, code)

		a, err := s.FindAssignment("current")
		require.NoError(t, err)
		assert.Equal(t, 5, a.Deadline)
		assert.Equal(t, 1, a.Startline)
		assert.Equal(t, "Lists", a.Description)
	})

	t.Run("deadline in the future", func(t *testing.T) {
		code, err := s.ExtendDeadline("future", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, code)

		a, err := s.FindAssignment("future")
		require.NoError(t, err)
		assert.Equal(t, 8, a.Deadline)
	})

	t.Run("missing assignment", func(t *testing.T) {
		code, err := s.ExtendDeadline("nope", 1)
		require.NoError(t, err)
		assert.Equal(t, 0, code)
	})

	t.Run("extension past the last week fails validation", func(t *testing.T) {
		code, err := s.ExtendDeadline("future", 100)
		assert.ErrorIs(t, err, validation.ErrValidation)
		assert.Equal(t, 0, code)

		a, err := s.FindAssignment("future")
		require.NoError(t, err)
		assert.Equal(t, 8, a.Deadline)
	})
}

func TestRoundTrip(t *testing.T) {
	for name, dsn := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := setupTestService(t, dsn, validation.DefaultBounds())

			require.NoError(t, s.SaveStudent("s1", "Ana", 221))
			require.NoError(t, s.SaveAssignment("t1", "Linked lists", 12, 10))
			require.NoError(t, s.SaveGrade("s1", "t1", 7.5, 12, ""))

			student, err := s.FindStudent("s1")
			require.NoError(t, err)
			assert.Equal(t, &models.Student{ID: "s1", Name: "Ana", Group: 221}, student)

			assignment, err := s.FindAssignment("t1")
			require.NoError(t, err)
			assert.Equal(t, &models.Assignment{ID: "t1", Description: "Linked lists", Deadline: 12, Startline: 10}, assignment)

			grade, err := s.FindGrade("s1", "t1")
			require.NoError(t, err)
			assert.Equal(t, &models.Grade{
				GradeKey:      models.NewGradeKey("s1", "t1"),
				Value:         7.5,
				SubmittedWeek: 12,
				Feedback:      "",
			}, grade)

			missing, err := s.FindStudent("nope")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestWriteGradeReport(t *testing.T) {
	s := setupTestService(t, "memory://", validation.DefaultBounds())
	require.NoError(t, s.SaveStudent("s1", "Ana", 221))
	require.NoError(t, s.SaveAssignment("t1", "Linked lists", 12, 10))
	require.NoError(t, s.SaveAssignment("t2", "Trees", 13, 11))
	require.NoError(t, s.SaveGrade("s1", "t1", 6, 11, "good"))
	require.NoError(t, s.SaveGrade("s1", "t2", 9, 13, "great"))

	path, err := s.WriteGradeReport("s1", "t1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Config.Reports.Dir, "s1.txt"), path)

	_, err = s.WriteGradeReport("s1", "t2")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Assignment: t1\n"+
		"Grade: 8.5\n"+
		"Submitted in week: 11\n"+
		"Deadline: 12\n"+
		"Feedback: good\n"+
		"\n"+
		"Assignment: t2\n"+
		"Grade: 9\n"+
		"Submitted in week: 13\n"+
		"Deadline: 13\n"+
		"Feedback: great\n"+
		"\n", string(content))

	_, err = s.WriteGradeReport("s1", "nope")
	assert.ErrorIs(t, err, ErrGradeReferenceNotFound)
}

func TestReportWriter_DistinctIDsDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewReportWriter(dir)

	ids := []string{"a/b", "a_b", `a\b`, "a%2Fb", "..", "a b"}
	seen := make(map[string]string)
	for _, id := range ids {
		path := w.Path(id)
		assert.Equal(t, dir, filepath.Dir(path), "report of %q escapes the report dir", id)
		if other, ok := seen[path]; ok {
			t.Fatalf("ids %q and %q share report %s", other, id, path)
		}
		seen[path] = id
	}

	_, err := w.Append(models.Grade{GradeKey: models.NewGradeKey("a/b", "t1"), Value: 5, SubmittedWeek: 3}, nil)
	require.NoError(t, err)
	_, err = w.Append(models.Grade{GradeKey: models.NewGradeKey("a_b", "t1"), Value: 7, SubmittedWeek: 3}, nil)
	require.NoError(t, err)

	content, err := os.ReadFile(w.Path("a/b"))
	require.NoError(t, err)
	assert.Equal(t, "Assignment: t1\nGrade: 5\nSubmitted in week: 3\nFeedback: \n\n", string(content))
}
