package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayFirstDate(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"05-07-2024", time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)},
		{"5/7/2024", time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-07-05", time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)},
		{"31/12/2023", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			got, err := parseDayFirstDate(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDateMonthFirst(t *testing.T) {
	got, err := parseDate("07/05/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDate("2024-07-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateExcelSerial(t *testing.T) {
	// 45478 days after 1899-12-30 is 2024-07-05.
	got, err := parseDate("45478")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "  ", "yesterday", "32/13/2024"} {
		_, err := parseDayFirstDate(value)
		assert.Error(t, err, "value %q", value)
	}
}
