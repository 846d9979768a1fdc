package importer

import "strings"

// normalizeStudentHeader collapses the messy header variants seen on
// admission registers onto canonical field names. Matching is first rule
// wins; headers that match nothing are dropped from the import entirely.
func normalizeStudentHeader(header string) string {
	c := squashHeader(header)

	switch {
	case strings.HasPrefix(c, "sl"):
		return "slno"
	case strings.Contains(c, "name") && strings.Contains(c, "student"):
		return "admission_name"
	case strings.Contains(c, "doj") || strings.Contains(c, "dateofjoining"):
		return "date_of_joining"
	case strings.Contains(c, "classrollno") || strings.Contains(c, "classroll"):
		return "class_roll_no"
	case strings.Contains(c, "examrollno") || strings.Contains(c, "examroll"):
		return "exam_roll_no"
	case strings.Contains(c, "email"):
		return "email"
	case strings.Contains(c, "mobile") || strings.Contains(c, "phone"):
		return "mobile"
	case strings.Contains(c, "dept") || strings.Contains(c, "department"):
		return "department"
	}
	return ""
}

// squashHeader lowercases a header and strips spaces, dots, and underscores
// so "Class Roll_No." and "classrollno" compare equal.
func squashHeader(header string) string {
	c := strings.ToLower(strings.TrimSpace(header))
	for _, cut := range []string{" ", ".", "_"} {
		c = strings.ReplaceAll(c, cut, "")
	}
	return c
}

// normalizeSnakeHeader is the gentler normalization used by the fee sheets:
// lowercase with spaces turned into underscores, no fuzzy matching.
func normalizeSnakeHeader(header string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
}

// indexHeaders maps canonical names to column positions. When a sheet
// repeats a canonical name the first column wins.
func indexHeaders(headers []string, normalize func(string) string) map[string]int {
	index := map[string]int{}
	for i, header := range headers {
		canonical := normalize(header)
		if canonical == "" {
			continue
		}
		if _, exists := index[canonical]; !exists {
			index[canonical] = i
		}
	}
	return index
}

func missingColumns(index map[string]int, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func cellAt(row []string, index map[string]int, canonical string) string {
	col, ok := index[canonical]
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// emptyRow reports whether every cell in a row is blank; trailing empty rows
// in exported sheets are commonplace and never worth a diagnostic.
func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
