package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Excel stores dates as day counts from an 1899 epoch; serials show up when
// a date column was exported as numbers instead of text.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dayFirstFormats = []string{
	"02-01-2006",
	"02/01/2006",
	"2-1-2006",
	"2/1/2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var monthFirstFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDayFirstDate reads dates the way Indian registers write them, day
// before month. ISO dates still parse, and Excel serials are accepted.
func parseDayFirstDate(value string) (time.Time, error) {
	return parseDateWith(value, dayFirstFormats)
}

// parseDate reads dates with month-first preference for ambiguous slashed
// values, matching how the attendance and fee sheets have historically been
// filled in.
func parseDate(value string) (time.Time, error) {
	return parseDateWith(value, monthFirstFormats)
}

func parseDateWith(value string, formats []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, format := range formats {
		if parsed, err := time.Parse(format, value); err == nil {
			return dateOnly(parsed), nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 && serial < 200000 {
		return excelEpoch.AddDate(0, 0, int(serial)), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
