package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStudentHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Sl. No", "slno"},
		{"SL NO.", "slno"},
		{"Name of Student", "admission_name"},
		{"STUDENT NAME", "admission_name"},
		{"D.O.J", "date_of_joining"},
		{"Date of Joining", "date_of_joining"},
		{"Class Roll No", "class_roll_no"},
		{"Class Roll_No.", "class_roll_no"},
		{"Exam Roll No", "exam_roll_no"},
		{"EXAM ROLL", "exam_roll_no"},
		{"Email ID", "email"},
		{"Mobile No", "mobile"},
		{"Phone", "mobile"},
		{"Dept", "department"},
		{"Department", "department"},
		{"Father's Name", ""},
		{"Remarks", ""},
	}
	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeStudentHeader(tc.header))
		})
	}
}

func TestNormalizeSnakeHeader(t *testing.T) {
	assert.Equal(t, "class_roll_no", normalizeSnakeHeader("  Class Roll No "))
	assert.Equal(t, "payment_mode", normalizeSnakeHeader("Payment Mode"))
	assert.Equal(t, "date", normalizeSnakeHeader("DATE"))
}

func TestIndexHeadersFirstColumnWins(t *testing.T) {
	index := indexHeaders([]string{"Email", "Personal Email"}, normalizeStudentHeader)
	assert.Equal(t, map[string]int{"email": 0}, index)
}

func TestMissingColumns(t *testing.T) {
	index := indexHeaders([]string{"Name of Student", "Exam Roll No"}, normalizeStudentHeader)
	missing := missingColumns(index, studentRequiredColumns)
	assert.Equal(t, []string{"class_roll_no"}, missing)
}

func TestEmptyRow(t *testing.T) {
	assert.True(t, emptyRow(nil))
	assert.True(t, emptyRow([]string{"", "  ", ""}))
	assert.False(t, emptyRow([]string{"", "x"}))
}
