package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Ashu12122005/ppp-management/internal/attendance"
	"github.com/Ashu12122005/ppp-management/internal/metrics"
	"github.com/Ashu12122005/ppp-management/internal/students"
)

var attendanceRequiredColumns = []string{"department", "class_roll_no", "date", "status"}

// ImportAttendance loads a daily attendance sheet. Rows with an unknown
// status or an unmatched student are silently skipped; re-uploading a sheet
// overwrites the day's marks rather than duplicating them.
func (im *Importer) ImportAttendance(ctx context.Context, actorAccountID, filename string, data []byte) (RegisterImportSummary, error) {
	summary := RegisterImportSummary{
		RunID:    newRunID(),
		FileName: filename,
		Errors:   []string{},
	}

	sheet, err := im.loadTable(ctx, filename, data, 0)
	if err != nil {
		return RegisterImportSummary{}, err
	}

	index := indexHeaders(sheet.headers, normalizeSnakeHeader)
	if missing := missingColumns(index, attendanceRequiredColumns); len(missing) > 0 {
		return RegisterImportSummary{}, &MissingColumnsError{Columns: missing}
	}

	metrics.ImportRunsTotal.WithLabelValues("attendance").Inc()

	for i, row := range sheet.rows {
		if emptyRow(row) {
			continue
		}
		rowNumber := sheet.rowNumber(i)

		date, err := parseDate(cellAt(row, index, "date"))
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %v", rowNumber, err))
			metrics.ImportRowsTotal.WithLabelValues("attendance", "error").Inc()
			continue
		}

		status := strings.ToLower(cellAt(row, index, "status"))
		if !attendance.ValidStatus(status) {
			summary.Skipped++
			metrics.ImportRowsTotal.WithLabelValues("attendance", "skipped").Inc()
			continue
		}

		student, err := im.students.FindByClassRollDept(ctx,
			cellAt(row, index, "class_roll_no"),
			cellAt(row, index, "department"))
		if err != nil {
			if errors.Is(err, students.ErrNotFound) {
				summary.Skipped++
				metrics.ImportRowsTotal.WithLabelValues("attendance", "skipped").Inc()
				continue
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %v", rowNumber, err))
			metrics.ImportRowsTotal.WithLabelValues("attendance", "error").Inc()
			continue
		}

		_, err = im.attendance.Mark(ctx, attendance.MarkInput{
			StudentID: student.ID,
			Date:      date,
			Status:    status,
			Remarks:   cellAt(row, index, "remarks"),
			MarkedBy:  actorAccountID,
		})
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %v", rowNumber, err))
			metrics.ImportRowsTotal.WithLabelValues("attendance", "error").Inc()
			continue
		}

		summary.Saved++
		metrics.ImportRowsTotal.WithLabelValues("attendance", "saved").Inc()
	}

	return summary, nil
}
