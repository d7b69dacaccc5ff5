package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/gradebook/internal/models"
	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

func TestTable_KeepsOrderAcrossRemoval(t *testing.T) {
	table := NewTable[string, models.Student]()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, table.Insert(models.Student{ID: id, Name: id, Group: 111}))
	}
	require.NoError(t, table.Remove("b"))
	require.NoError(t, table.Replace(models.Student{ID: "d", Name: "dd", Group: 112}))

	rows, err := table.List()
	require.NoError(t, err)
	assert.Equal(t, []models.Student{
		{ID: "a", Name: "a", Group: 111},
		{ID: "c", Name: "c", Group: 111},
		{ID: "d", Name: "dd", Group: 112},
	}, rows)

	got, err := table.Get("d")
	require.NoError(t, err)
	assert.Equal(t, "dd", got.Name)

	missing, err := table.Get("b")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTable_ListIsACopy(t *testing.T) {
	table := NewTable[string, models.Student]()
	require.NoError(t, table.Insert(models.Student{ID: "a", Name: "a", Group: 111}))

	rows, err := table.List()
	require.NoError(t, err)
	rows[0].Name = "changed"

	got, err := table.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestNewStore(t *testing.T) {
	s := NewStore(validation.NewEngine(validation.DefaultBounds()))
	defer s.Close()

	key := models.NewGradeKey("s1", "t1")
	require.NoError(t, s.Grades.Save(models.Grade{GradeKey: key, Value: 5, SubmittedWeek: 3}))
	assert.ErrorIs(t, s.Grades.Save(models.Grade{GradeKey: key, Value: 6, SubmittedWeek: 3}), store.ErrAlreadyExists)

	grade, err := s.Grades.FindOne(key)
	require.NoError(t, err)
	assert.Equal(t, 5.0, grade.Value)
}
