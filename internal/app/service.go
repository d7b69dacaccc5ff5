package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/calendar"
	"github.com/shrimpsizemoose/gradebook/internal/metrics"
	"github.com/shrimpsizemoose/gradebook/internal/models"
	"github.com/shrimpsizemoose/gradebook/internal/scoring"
	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

// ErrGradeReferenceNotFound means a grade names a student or assignment that does not exist.
var ErrGradeReferenceNotFound = errors.New("inexistent student or assignment")

type Service struct {
	Config *Config
	Store  *store.Store
	Auth   *Auth

	grader   scoring.Grader
	calendar *calendar.Calendar
	reports  *ReportWriter
}

type Option func(*Service)

// WithClock replaces the wall clock used to compute the current course week.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.calendar = calendar.New(now)
	}
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	engine := validation.NewEngine(config.Validation)

	store, err := NewStore(config.Database.DSN, engine)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return New(config, store, auth), nil
}

// New wires a service from already opened dependencies. A nil auth disables token checks.
func New(config *Config, store *store.Store, auth *Auth, opts ...Option) *Service {
	if auth == nil {
		auth = &Auth{enabled: false, tokenHeader: config.Auth.TokenHeader}
	}

	s := &Service{
		Config:   config,
		Store:    store,
		Auth:     auth,
		grader:   config.Scoring,
		calendar: calendar.New(nil),
		reports:  NewReportWriter(config.Reports.Dir),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

// ValidateAuth checks the caller named in the user header against its stored token.
func (s *Service) ValidateAuth(r *http.Request) error {
	if !s.Auth.Enabled() {
		return nil
	}

	user := r.Header.Get(s.Config.API.UserHeader)
	if user == "" {
		return fmt.Errorf("%w: missing %s header", ErrUnauthorized, s.Config.API.UserHeader)
	}
	return s.Auth.ValidateRequest(r, user)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, validation.ErrValidation):
		return metrics.ResultInvalid
	case errors.Is(err, store.ErrAlreadyExists):
		return metrics.ResultConflict
	case errors.Is(err, ErrGradeReferenceNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}

func record(entity, op string, err error) {
	metrics.OperationsTotal.WithLabelValues(entity, op, resultOf(err)).Inc()
	if err != nil {
		logger.Debug.Printf("%s %s failed: %v", op, entity, err)
	}
}

// recordCode is record for the operations that report absence as result code 0.
func recordCode(entity, op string, code int, err error) {
	if err == nil && code == 0 {
		metrics.OperationsTotal.WithLabelValues(entity, op, metrics.ResultNotFound).Inc()
		return
	}
	record(entity, op, err)
}

func (s *Service) SaveStudent(id, name string, group int) error {
	err := s.Store.Students.Save(models.Student{ID: id, Name: name, Group: group})
	record("student", "save", err)
	return err
}

func (s *Service) SaveAssignment(id, description string, deadline, startline int) error {
	err := s.Store.Assignments.Save(models.Assignment{
		ID:          id,
		Description: description,
		Deadline:    deadline,
		Startline:   startline,
	})
	record("assignment", "save", err)
	return err
}

// SaveGrade penalizes raw against the assignment deadline and stores the result.
// Both references are checked before anything is written.
func (s *Service) SaveGrade(studentID, assignmentID string, raw float64, submittedWeek int, feedback string) error {
	err := s.saveGrade(studentID, assignmentID, raw, submittedWeek, feedback)
	record("grade", "save", err)
	return err
}

func (s *Service) saveGrade(studentID, assignmentID string, raw float64, submittedWeek int, feedback string) error {
	student, err := s.Store.Students.FindOne(studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return fmt.Errorf("%w: student %q", ErrGradeReferenceNotFound, studentID)
	}

	value, err := s.grader.GradeSubmission(s.Store.Assignments, assignmentID, raw, submittedWeek)
	if errors.Is(err, scoring.ErrUnknownAssignment) {
		return fmt.Errorf("%w: assignment %q", ErrGradeReferenceNotFound, assignmentID)
	}
	if err != nil {
		return err
	}

	grade := models.Grade{
		GradeKey:      models.NewGradeKey(studentID, assignmentID),
		Value:         value,
		SubmittedWeek: submittedWeek,
		Feedback:      feedback,
	}
	if err := s.Store.Grades.Save(grade); err != nil {
		return err
	}

	metrics.GradeValueHistogram.WithLabelValues(assignmentID).Observe(value)
	logger.Info.Printf("Graded %s: raw %g submitted in week %d stored as %g", grade.GradeKey, raw, submittedWeek, value)
	return nil
}

func presence[E any](entity *E, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	if entity == nil {
		return 0, nil
	}
	return 1, nil
}

// DeleteStudent returns 1 when the student was removed and 0 when there was none.
// Grades of the student are kept.
func (s *Service) DeleteStudent(id string) (int, error) {
	removed, err := s.Store.Students.Delete(id)
	code, err := presence(removed, err)
	recordCode("student", "delete", code, err)
	return code, err
}

// DeleteAssignment returns 1 when the assignment was removed and 0 when there was none.
func (s *Service) DeleteAssignment(id string) (int, error) {
	removed, err := s.Store.Assignments.Delete(id)
	code, err := presence(removed, err)
	recordCode("assignment", "delete", code, err)
	return code, err
}

func (s *Service) UpdateStudent(id, name string, group int) (int, error) {
	previous, err := s.Store.Students.Update(models.Student{ID: id, Name: name, Group: group})
	code, err := presence(previous, err)
	recordCode("student", "update", code, err)
	return code, err
}

func (s *Service) UpdateAssignment(id, description string, deadline, startline int) (int, error) {
	previous, err := s.Store.Assignments.Update(models.Assignment{
		ID:          id,
		Description: description,
		Deadline:    deadline,
		Startline:   startline,
	})
	code, err := presence(previous, err)
	recordCode("assignment", "update", code, err)
	return code, err
}

// ExtendDeadline moves the deadline by weeks, but only while the current
// course week has not passed it. It returns 0 for a missing or closed assignment.
func (s *Service) ExtendDeadline(id string, weeks int) (int, error) {
	assignment, err := s.Store.Assignments.FindOne(id)
	if err != nil {
		record("assignment", "extend", err)
		return 0, err
	}
	if assignment == nil {
		recordCode("assignment", "extend", 0, nil)
		return 0, nil
	}

	currentWeek := s.calendar.CurrentWeek()
	if currentWeek > assignment.Deadline {
		logger.Debug.Printf("Deadline of %s (week %d) already passed, current week is %d", id, assignment.Deadline, currentWeek)
		recordCode("assignment", "extend", 0, nil)
		return 0, nil
	}

	code, err := s.UpdateAssignment(assignment.ID, assignment.Description, assignment.Deadline+weeks, assignment.Startline)
	recordCode("assignment", "extend", code, err)
	if code == 1 {
		logger.Info.Printf("Extended deadline of %s from week %d to %d", id, assignment.Deadline, assignment.Deadline+weeks)
	}
	return code, err
}

// CurrentWeek is the course week used by ExtendDeadline.
func (s *Service) CurrentWeek() int {
	return s.calendar.CurrentWeek()
}

func (s *Service) FindStudent(id string) (*models.Student, error) {
	return s.Store.Students.FindOne(id)
}

func (s *Service) FindAssignment(id string) (*models.Assignment, error) {
	return s.Store.Assignments.FindOne(id)
}

func (s *Service) FindGrade(studentID, assignmentID string) (*models.Grade, error) {
	return s.Store.Grades.FindOne(models.NewGradeKey(studentID, assignmentID))
}

func (s *Service) FindAllStudents() ([]models.Student, error) {
	return s.Store.Students.FindAll()
}

func (s *Service) FindAllAssignments() ([]models.Assignment, error) {
	return s.Store.Assignments.FindAll()
}

func (s *Service) FindAllGrades() ([]models.Grade, error) {
	return s.Store.Grades.FindAll()
}

// WriteGradeReport appends one grade to the plain text report of its student.
func (s *Service) WriteGradeReport(studentID, assignmentID string) (string, error) {
	grade, err := s.FindGrade(studentID, assignmentID)
	if err != nil {
		return "", err
	}
	if grade == nil {
		err := fmt.Errorf("%w: no grade for %s/%s", ErrGradeReferenceNotFound, studentID, assignmentID)
		record("report", "write", err)
		return "", err
	}

	var deadline *int
	assignment, err := s.FindAssignment(assignmentID)
	if err != nil {
		return "", err
	}
	if assignment != nil {
		deadline = &assignment.Deadline
	}

	path, err := s.reports.Append(*grade, deadline)
	record("report", "write", err)
	if err != nil {
		return "", err
	}
	logger.Info.Printf("Appended %s to %s", grade.GradeKey, path)
	return path, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
