package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ashu12122005/ppp-management/internal/metrics"
	"github.com/Ashu12122005/ppp-management/internal/students"
)

// studentHeaderRow is the zero-based header position on the admission
// register workbooks; the rows above it are letterhead.
const studentHeaderRow = 4

var studentRequiredColumns = []string{"admission_name", "class_roll_no", "exam_roll_no"}

// ImportStudents loads an admission register and creates one student per
// usable row. Existing exam roll numbers are skipped, not updated, so the
// same sheet can be uploaded twice without damage.
func (im *Importer) ImportStudents(ctx context.Context, actorAccountID, filename string, data []byte) (StudentImportSummary, error) {
	summary := StudentImportSummary{
		RunID:     newRunID(),
		FileName:  filename,
		ErrorRows: []string{},
	}

	sheet, err := im.loadTable(ctx, filename, data, studentHeaderRow)
	if err != nil {
		return StudentImportSummary{}, err
	}

	index := indexHeaders(sheet.headers, normalizeStudentHeader)
	if missing := missingColumns(index, studentRequiredColumns); len(missing) > 0 {
		return StudentImportSummary{}, &MissingColumnsError{Columns: missing}
	}

	metrics.ImportRunsTotal.WithLabelValues("students").Inc()

	for i, row := range sheet.rows {
		if emptyRow(row) {
			continue
		}
		rowNumber := sheet.rowNumber(i)

		examRoll := cellAt(row, index, "exam_roll_no")
		if examRoll == "" {
			summary.Errors++
			summary.ErrorRows = append(summary.ErrorRows, fmt.Sprintf("Row %d: Missing Exam Roll No", rowNumber))
			metrics.ImportRowsTotal.WithLabelValues("students", "error").Inc()
			continue
		}

		if _, err := im.students.FindByExamRoll(ctx, examRoll); err == nil {
			summary.Duplicates++
			summary.ErrorRows = append(summary.ErrorRows,
				fmt.Sprintf("Row %d: Student with Exam Roll No '%s' already exists", rowNumber, examRoll))
			metrics.ImportRowsTotal.WithLabelValues("students", "duplicate").Inc()
			continue
		} else if !errors.Is(err, students.ErrNotFound) {
			summary.Errors++
			summary.ErrorRows = append(summary.ErrorRows, fmt.Sprintf("Row %d: %v", rowNumber, err))
			metrics.ImportRowsTotal.WithLabelValues("students", "error").Inc()
			continue
		}

		var dateOfJoining *time.Time
		if raw := cellAt(row, index, "date_of_joining"); raw != "" && !isNullCell(raw) {
			parsed, err := parseDayFirstDate(raw)
			if err != nil {
				summary.Errors++
				summary.ErrorRows = append(summary.ErrorRows, fmt.Sprintf("Row %d: Invalid date '%s'", rowNumber, raw))
				metrics.ImportRowsTotal.WithLabelValues("students", "error").Inc()
				continue
			}
			dateOfJoining = &parsed
		}

		input := students.CreateInput{
			Slno:             parseOptionalInt(cellAt(row, index, "slno")),
			AdmissionName:    cellAt(row, index, "admission_name"),
			DateOfJoining:    dateOfJoining,
			ClassRollNo:      cellAt(row, index, "class_roll_no"),
			ExamRollNo:       examRoll,
			Department:       cellAt(row, index, "department"),
			Mobile:           cellAt(row, index, "mobile"),
			Email:            cleanEmailCell(cellAt(row, index, "email")),
			ProvisionAccount: true,
		}

		if _, err := im.students.Create(ctx, actorAccountID, input); err != nil {
			summary.Errors++
			summary.ErrorRows = append(summary.ErrorRows, fmt.Sprintf("Row %d: %v", rowNumber, err))
			metrics.ImportRowsTotal.WithLabelValues("students", "error").Inc()
			continue
		}

		summary.Imported++
		metrics.ImportRowsTotal.WithLabelValues("students", "imported").Inc()
	}

	return summary, nil
}

// isNullCell matches the stringified missing values spreadsheet exports
// leave behind.
func isNullCell(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "nan", "none", "nat", "null":
		return true
	}
	return false
}

func cleanEmailCell(value string) string {
	if isNullCell(value) {
		return ""
	}
	return strings.TrimSpace(value)
}

func parseOptionalInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	// Serial columns exported from Excel often read "1.0".
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}
