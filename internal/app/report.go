package app

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"text/template"

	"github.com/shrimpsizemoose/gradebook/internal/models"
)

var reportEntry = template.Must(template.New("report").Parse(
	`Assignment: {{.AssignmentID}}
Grade: {{printf "%g" .Value}}
Submitted in week: {{.SubmittedWeek}}
{{- if .HasDeadline}}
Deadline: {{.Deadline}}
{{- end}}
Feedback: {{.Feedback}}

`))

// ReportWriter appends grades to one plain text file per student.
type ReportWriter struct {
	dir string
}

func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

// Path escapes studentID so that distinct ids never share a report file.
func (w *ReportWriter) Path(studentID string) string {
	return filepath.Join(w.dir, url.PathEscape(studentID)+".txt")
}

// Append writes grade to the student's report and returns the report path.
// deadline is omitted from the entry when nil.
func (w *ReportWriter) Append(grade models.Grade, deadline *int) (path string, err error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", w.dir, err)
	}

	path = w.Path(grade.StudentID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report %s: %w", path, cerr)
		}
	}()

	data := struct {
		models.Grade
		HasDeadline bool
		Deadline    int
	}{Grade: grade}
	if deadline != nil {
		data.HasDeadline = true
		data.Deadline = *deadline
	}

	if err := reportEntry.Execute(f, data); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}
