package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Ashu12122005/ppp-management/internal/attendance"
	"github.com/Ashu12122005/ppp-management/internal/fees"
	"github.com/Ashu12122005/ppp-management/internal/students"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("allowed formats: .xlsx, .xls, .csv, .numbers")
	ErrFileRead          = errors.New("error reading file")
)

// MissingColumnsError reports required columns absent from an upload after
// header normalization.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// StudentDirectory is the slice of the student service the importer needs.
type StudentDirectory interface {
	FindByExamRoll(ctx context.Context, examRoll string) (students.Student, error)
	FindByClassRollDept(ctx context.Context, classRoll, department string) (students.Student, error)
	FindByClassRoll(ctx context.Context, classRoll string) (students.Student, error)
	Create(ctx context.Context, actorAccountID string, in students.CreateInput) (students.Student, error)
}

type AttendanceMarker interface {
	Mark(ctx context.Context, in attendance.MarkInput) (attendance.Record, error)
}

type FeeRecorder interface {
	Create(ctx context.Context, in fees.CreateInput) (fees.Payment, error)
}

// Importer turns uploaded spreadsheets into student, attendance, and fee
// records. Each run is best effort: bad rows are reported, good rows land.
type Importer struct {
	students   StudentDirectory
	attendance AttendanceMarker
	fees       FeeRecorder
	numbersCLI string
}

func New(studentDir StudentDirectory, marker AttendanceMarker, recorder FeeRecorder, numbersCLI string) *Importer {
	return &Importer{
		students:   studentDir,
		attendance: marker,
		fees:       recorder,
		numbersCLI: numbersCLI,
	}
}

// StudentImportSummary reports one student upload run. ErrorRows carries one
// human-readable diagnostic per rejected or skipped row, in sheet order.
type StudentImportSummary struct {
	RunID      string   `json:"runId"`
	FileName   string   `json:"fileName"`
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Errors     int      `json:"errors"`
	ErrorRows  []string `json:"errorRows"`
}

// RegisterImportSummary reports an attendance or fee upload run.
type RegisterImportSummary struct {
	RunID    string   `json:"runId"`
	FileName string   `json:"fileName"`
	Saved    int      `json:"saved"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

func newRunID() string {
	return uuid.NewString()
}
