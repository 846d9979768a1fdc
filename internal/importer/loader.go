package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// table is a spreadsheet reduced to a header row and the data rows after it.
// firstDataRow is the 1-based sheet position of the first data row; row N of
// the data maps to sheet row firstDataRow+N for diagnostics.
type table struct {
	headers      []string
	rows         [][]string
	firstDataRow int
}

func (t table) rowNumber(dataIndex int) int {
	return t.firstDataRow + dataIndex
}

// loadTable reads an upload into a table. Excel files honor headerRow, the
// zero-based index of the header inside the sheet; CSV and Numbers exports
// always carry the header on their first line, so headerRow is ignored for
// them.
func (im *Importer) loadTable(ctx context.Context, filename string, data []byte, headerRow int) (table, error) {
	if len(data) == 0 {
		return table{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}

	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(filename)))
	var (
		records [][]string
		err     error
	)
	switch ext {
	case ".xlsx":
		records, err = readXLSX(data)
	case ".xls":
		records, err = readXLS(data)
	case ".csv":
		records, err = readCSV(data)
		headerRow = 0
	case ".numbers":
		records, err = im.readNumbers(ctx, data)
		headerRow = 0
	default:
		return table{}, ErrUnsupportedFormat
	}
	if err != nil {
		return table{}, fmt.Errorf("%w: %v", ErrFileRead, err)
	}

	if headerRow >= len(records) {
		return table{}, fmt.Errorf("%w: sheet has no header row", ErrFileRead)
	}

	headers := make([]string, len(records[headerRow]))
	copy(headers, records[headerRow])
	rows := make([][]string, 0, len(records)-headerRow-1)
	for i := headerRow + 1; i < len(records); i++ {
		rows = append(rows, records[i])
	}

	return table{
		headers:      headers,
		rows:         rows,
		firstDataRow: headerRow + 2,
	}, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls has no sheets")
	}

	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		records = append(records, cells)
	}
	return records, nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

// readNumbers shells out to the Numbers export CLI, which prints the first
// sheet as CSV on stdout. The upload is staged in a temp file because the
// tool only reads from disk.
func (im *Importer) readNumbers(ctx context.Context, data []byte) ([][]string, error) {
	cli := strings.TrimSpace(im.numbersCLI)
	if cli == "" {
		cli = "cat-numbers"
	}
	if _, err := exec.LookPath(cli); err != nil {
		return nil, fmt.Errorf("%s not found; install numbers-parser on the API host", cli)
	}

	tmp, err := os.CreateTemp("", "ppp-import-*.numbers")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, cli, tmpPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("convert numbers file: %s", msg)
	}
	return readCSV(out)
}
