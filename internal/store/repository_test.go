package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/gradebook/internal/models"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

type MockTable struct {
	mock.Mock
}

func (m *MockTable) Get(key string) (*models.Student, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockTable) List() ([]models.Student, error) {
	args := m.Called()
	return args.Get(0).([]models.Student), args.Error(1)
}

func (m *MockTable) Insert(entity models.Student) error {
	return m.Called(entity).Error(0)
}

func (m *MockTable) Replace(entity models.Student) error {
	return m.Called(entity).Error(0)
}

func (m *MockTable) Remove(key string) error {
	return m.Called(key).Error(0)
}

func newTestRepository(table *MockTable) Repository[string, models.Student] {
	engine := validation.NewEngine(validation.DefaultBounds())
	return NewRepository[string, models.Student](table, validation.StudentValidator(engine))
}

func TestRepository_Save(t *testing.T) {
	ana := models.Student{ID: "s1", Name: "Ana", Group: 221}

	t.Run("invalid entity never reaches the table", func(t *testing.T) {
		table := new(MockTable)
		repo := newTestRepository(table)

		err := repo.Save(models.Student{ID: "s1", Name: "", Group: 221})
		assert.ErrorIs(t, err, validation.ErrValidation)
		table.AssertNotCalled(t, "Get", mock.Anything)
		table.AssertNotCalled(t, "Insert", mock.Anything)
	})

	t.Run("duplicate is rejected before insert", func(t *testing.T) {
		table := new(MockTable)
		table.On("Get", "s1").Return(&ana, nil).Once()
		repo := newTestRepository(table)

		err := repo.Save(ana)
		assert.ErrorIs(t, err, ErrAlreadyExists)
		table.AssertNotCalled(t, "Insert", mock.Anything)
		table.AssertExpectations(t)
	})

	t.Run("new entity is inserted", func(t *testing.T) {
		table := new(MockTable)
		table.On("Get", "s1").Return(nil, nil).Once()
		table.On("Insert", ana).Return(nil).Once()
		repo := newTestRepository(table)

		require.NoError(t, repo.Save(ana))
		table.AssertExpectations(t)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		boom := errors.New("disk on fire")
		table := new(MockTable)
		table.On("Get", "s1").Return(nil, boom).Once()
		repo := newTestRepository(table)

		assert.ErrorIs(t, repo.Save(ana), boom)
		table.AssertNotCalled(t, "Insert", mock.Anything)
	})
}

func TestRepository_Update(t *testing.T) {
	ana := models.Student{ID: "s1", Name: "Ana", Group: 221}
	renamed := models.Student{ID: "s1", Name: "Ana Maria", Group: 221}

	t.Run("invalid entity never reaches the table", func(t *testing.T) {
		table := new(MockTable)
		repo := newTestRepository(table)

		previous, err := repo.Update(models.Student{ID: "s1", Name: "Ana", Group: 1})
		assert.ErrorIs(t, err, validation.ErrValidation)
		assert.Nil(t, previous)
		table.AssertNotCalled(t, "Replace", mock.Anything)
	})

	t.Run("absent key", func(t *testing.T) {
		table := new(MockTable)
		table.On("Get", "s1").Return(nil, nil).Once()
		repo := newTestRepository(table)

		previous, err := repo.Update(renamed)
		require.NoError(t, err)
		assert.Nil(t, previous)
		table.AssertNotCalled(t, "Replace", mock.Anything)
	})

	t.Run("present key", func(t *testing.T) {
		table := new(MockTable)
		table.On("Get", "s1").Return(&ana, nil).Once()
		table.On("Replace", renamed).Return(nil).Once()
		repo := newTestRepository(table)

		previous, err := repo.Update(renamed)
		require.NoError(t, err)
		assert.Equal(t, &ana, previous)
		table.AssertExpectations(t)
	})
}

func TestRepository_Delete(t *testing.T) {
	ana := models.Student{ID: "s1", Name: "Ana", Group: 221}

	table := new(MockTable)
	table.On("Get", "s1").Return(&ana, nil).Once()
	table.On("Remove", "s1").Return(nil).Once()
	table.On("Get", "s2").Return(nil, nil).Once()
	repo := newTestRepository(table)

	removed, err := repo.Delete("s1")
	require.NoError(t, err)
	assert.Equal(t, &ana, removed)

	removed, err = repo.Delete("s2")
	require.NoError(t, err)
	assert.Nil(t, removed)

	table.AssertExpectations(t)
	table.AssertNotCalled(t, "Remove", "s2")
}

func TestRepository_FindAll(t *testing.T) {
	rows := []models.Student{{ID: "s2", Name: "Ion", Group: 222}, {ID: "s1", Name: "Ana", Group: 221}}

	table := new(MockTable)
	table.On("List").Return(rows, nil).Once()
	repo := newTestRepository(table)

	got, err := repo.FindAll()
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}
