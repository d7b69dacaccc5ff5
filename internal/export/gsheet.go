package export

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shrimpsizemoose/trekker/logger"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/gradebook/internal/app"
	"github.com/shrimpsizemoose/gradebook/internal/models"
)

// GradeLister is the read side of the service the exporter needs.
type GradeLister interface {
	FindAllGrades() ([]models.Grade, error)
}

type GSheetExporter struct {
	config    *app.Config
	grades    GradeLister
	scheduler *gocron.Scheduler
}

// NewGSheetExporter schedules one export job per configured sheet and starts the scheduler.
func NewGSheetExporter(config *app.Config, grades GradeLister) (*GSheetExporter, error) {
	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.UTC)

	exporter := &GSheetExporter{
		config:    config,
		grades:    grades,
		scheduler: scheduler,
	}

	for i := range config.GSheet {
		cfg := config.GSheet[i]

		svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service: %w", err)
		}

		_, err = scheduler.Cron(cfg.Schedule).Do(func() {
			if err := exporter.Export(svc, &cfg); err != nil {
				logger.Error.Printf("Export to %s failed: %v", cfg.SheetName, err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
		logger.Info.Printf("Scheduled export of %d assignments to %s (%s)", len(cfg.Assignments), cfg.SheetName, cfg.Schedule)
	}

	scheduler.StartAsync()
	return exporter, nil
}

func (e *GSheetExporter) Stop() {
	e.scheduler.Stop()
}

// Export writes the grade table of cfg.Assignments next to the student ids found in the sheet.
func (e *GSheetExporter) Export(svc *sheets.Service, cfg *app.GSheetConfig) error {
	readRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.StudentsRange)
	resp, err := svc.Spreadsheets.Values.Get(cfg.SheetID, readRange).Do()
	if err != nil {
		return fmt.Errorf("failed to read students: %w", err)
	}

	students := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		id := ""
		if len(row) > 0 {
			id, _ = row[0].(string)
		}
		students = append(students, strings.TrimSpace(id))
	}

	grades, err := e.grades.FindAllGrades()
	if err != nil {
		return fmt.Errorf("failed to list grades: %w", err)
	}

	rows := GradeRows(students, cfg.Assignments, grades)
	if len(rows) > 0 && len(cfg.Assignments) > 0 {
		lastRow := cfg.FirstStudentRow + len(rows) - 1
		lastColumn, err := ShiftColumn(cfg.GradesColumn, len(cfg.Assignments)-1)
		if err != nil {
			return err
		}
		updateRange := fmt.Sprintf("%s!%s%d:%s%d", cfg.SheetName, cfg.GradesColumn, cfg.FirstStudentRow, lastColumn, lastRow)

		_, err = svc.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
			&sheets.ValueRange{Values: rows}).ValueInputOption("RAW").Do()
		if err != nil {
			return fmt.Errorf("failed to update grades: %w", err)
		}
	}

	if cfg.TimestampRange == "" {
		return nil
	}

	emoji := ""
	if len(e.config.EmojiVariants) > 0 {
		emoji = e.config.EmojiVariants[rand.Intn(len(e.config.EmojiVariants))]
	}
	timestamp := fmt.Sprintf("UPD: %s %s", time.Now().Format("2 January 15:04"), emoji)

	updateRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.TimestampRange)
	_, err = svc.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
		&sheets.ValueRange{Values: [][]interface{}{{timestamp}}}).ValueInputOption("RAW").Do()

	return err
}

// GradeRows lays grades out as one row per student and one column per assignment.
// Missing grades and blank student cells become empty strings.
func GradeRows(students, assignments []string, grades []models.Grade) [][]interface{} {
	byKey := make(map[models.GradeKey]float64, len(grades))
	for _, g := range grades {
		byKey[g.GradeKey] = g.Value
	}

	rows := make([][]interface{}, 0, len(students))
	for _, student := range students {
		row := make([]interface{}, 0, len(assignments))
		for _, assignment := range assignments {
			value, ok := byKey[models.NewGradeKey(student, assignment)]
			if student == "" || !ok {
				row = append(row, "")
				continue
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}
	return rows
}

// ShiftColumn moves a spreadsheet column name (A, Z, AA...) right by offset.
func ShiftColumn(column string, offset int) (string, error) {
	n := 0
	for _, r := range strings.ToUpper(column) {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("invalid column name %q", column)
		}
		n = n*26 + int(r-'A'+1)
	}
	if n == 0 {
		return "", fmt.Errorf("invalid column name %q", column)
	}

	n += offset
	var sb []byte
	for n > 0 {
		n--
		sb = append([]byte{byte('A' + n%26)}, sb...)
		n /= 26
	}
	return string(sb), nil
}
