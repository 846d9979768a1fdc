package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "ravi@example.com", usernameFromEmail("ravi@example.com", 0))
	assert.Equal(t, "ravi1@example.com", usernameFromEmail("ravi@example.com", 1))
	assert.Equal(t, "ravi7@example.com", usernameFromEmail("ravi@example.com", 7))

	// Degenerate address without an "@" still produces distinct candidates.
	assert.Equal(t, "ravi", usernameFromEmail("ravi", 0))
	assert.Equal(t, "ravi2", usernameFromEmail("ravi", 2))
}

func TestUsernameFromName(t *testing.T) {
	tests := []struct {
		name      string
		admission string
		examRoll  string
		classRoll string
		fallback  string
		attempt   int
		want      string
	}{
		{"first word plus exam roll", "Ravi Kumar", "24BCA101", "12", "sid", 0, "ravi24BCA101"},
		{"class roll when exam roll empty", "Ravi Kumar", "", "12", "sid", 0, "ravi12"},
		{"fallback when no rolls", "Ravi Kumar", "", "", "sid", 0, "ravisid"},
		{"default base when name empty", "", "24BCA101", "", "sid", 0, "student24BCA101"},
		{"collision suffix", "Ravi Kumar", "24BCA101", "", "sid", 3, "ravi24BCA1013"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := usernameFromName(tc.admission, tc.examRoll, tc.classRoll, tc.fallback, tc.attempt)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCleanEmail(t *testing.T) {
	assert.Equal(t, "ravi@example.com", cleanEmail("  Ravi@Example.com "))
	assert.Equal(t, "", cleanEmail(""))
	assert.Equal(t, "", cleanEmail("nan"))
	assert.Equal(t, "", cleanEmail("None"))
}
