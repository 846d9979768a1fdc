package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Ashu12122005/ppp-management/internal/fees"
	"github.com/Ashu12122005/ppp-management/internal/metrics"
	"github.com/Ashu12122005/ppp-management/internal/students"
)

var feeRequiredColumns = []string{"date", "class_roll_no", "amount"}

// ImportFees loads a fee collection sheet. Every matched row appends a new
// payment; the ledger keeps one row per receipt, so the same sheet uploaded
// twice records the payments twice. Unmatched students and bad rows both
// count as skipped, bad rows additionally carrying a diagnostic.
func (im *Importer) ImportFees(ctx context.Context, actorAccountID, filename string, data []byte) (RegisterImportSummary, error) {
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
	if missing := missingColumns(index, feeRequiredColumns); len(missing) > 0 {
		return RegisterImportSummary{}, &MissingColumnsError{Columns: missing}
	}

	metrics.ImportRunsTotal.WithLabelValues("fees").Inc()

	for i, row := range sheet.rows {
		if emptyRow(row) {
			continue
		}
		rowNumber := sheet.rowNumber(i)

		student, err := im.students.FindByClassRoll(ctx, cellAt(row, index, "class_roll_no"))
		if err != nil {
			if errors.Is(err, students.ErrNotFound) {
				summary.Skipped++
				metrics.ImportRowsTotal.WithLabelValues("fees", "skipped").Inc()
				continue
			}
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %v", rowNumber, err))
			metrics.ImportRowsTotal.WithLabelValues("fees", "error").Inc()
			continue
		}

		date, err := parseDate(cellAt(row, index, "date"))
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %v", rowNumber, err))
			metrics.ImportRowsTotal.WithLabelValues("fees", "error").Inc()
			continue
		}

		amount, err := strconv.ParseFloat(cellAt(row, index, "amount"), 64)
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: invalid amount %q", rowNumber, cellAt(row, index, "amount")))
			metrics.ImportRowsTotal.WithLabelValues("fees", "error").Inc()
			continue
		}

		_, err = im.fees.Create(ctx, fees.CreateInput{
			StudentID:   student.ID,
			Date:        date,
			Amount:      amount,
			PaymentMode: cellAt(row, index, "payment_mode"),
			Status:      cellAt(row, index, "status"),
			Remarks:     cellAt(row, index, "remarks"),
			ReceivedBy:  actorAccountID,
		})
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %v", rowNumber, err))
			metrics.ImportRowsTotal.WithLabelValues("fees", "error").Inc()
			continue
		}

		summary.Saved++
		metrics.ImportRowsTotal.WithLabelValues("fees", "saved").Inc()
	}

	return summary, nil
}
