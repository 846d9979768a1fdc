package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadTableCSV(t *testing.T) {
	im := New(nil, nil, nil, "")
	data := []byte("date,class_roll_no,amount\n2024-07-05,12,5000\n2024-07-06,13,4500\n")

	sheet, err := im.loadTable(context.Background(), "fees.csv", data, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "class_roll_no", "amount"}, sheet.headers)
	assert.Len(t, sheet.rows, 2)
	assert.Equal(t, 2, sheet.rowNumber(0))
	assert.Equal(t, 3, sheet.rowNumber(1))
}

func TestLoadTableCSVIgnoresHeaderRowOffset(t *testing.T) {
	im := New(nil, nil, nil, "")
	data := []byte("a,b\n1,2\n")

	// CSV exports carry the header on line one even when the Excel original
	// had letterhead above it.
	sheet, err := im.loadTable(context.Background(), "students.csv", data, studentHeaderRow)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, sheet.headers)
	assert.Len(t, sheet.rows, 1)
}

func TestLoadTableXLSXHeaderOffset(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Admission Register 2024"}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{"Sl No", "Name of Student", "Exam Roll No"}))
	require.NoError(t, f.SetSheetRow(sheet, "A6", &[]any{"1", "Ravi Kumar", "24BCA101"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	im := New(nil, nil, nil, "")
	table, err := im.loadTable(context.Background(), "students.xlsx", buf.Bytes(), studentHeaderRow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sl No", "Name of Student", "Exam Roll No"}, table.headers)
	require.Len(t, table.rows, 1)
	assert.Equal(t, "Ravi Kumar", table.rows[0][1])
	assert.Equal(t, 6, table.rowNumber(0))
}

func TestLoadTableRejectsUnknownExtension(t *testing.T) {
	im := New(nil, nil, nil, "")
	_, err := im.loadTable(context.Background(), "students.pdf", []byte("x"), 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadTableRejectsEmptyFile(t *testing.T) {
	im := New(nil, nil, nil, "")
	_, err := im.loadTable(context.Background(), "students.csv", nil, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoadTableRejectsShortSheet(t *testing.T) {
	im := New(nil, nil, nil, "")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"only one row"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = im.loadTable(context.Background(), "students.xlsx", buf.Bytes(), studentHeaderRow)
	assert.ErrorIs(t, err, ErrFileRead)
}
