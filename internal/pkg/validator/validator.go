package validator

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar-date format accepted by query filters.
const DateLayout = "2006-01-02"

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keys messages by field. A later message for the same field wins.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsMaxLength reports whether s has at most n characters.
func IsMaxLength(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}

// IsValidDateIn parses a DateLayout date as local midnight in loc.
func IsValidDateIn(dateStr string, loc *time.Location) (time.Time, bool) {
	date, err := time.ParseInLocation(DateLayout, dateStr, loc)
	return date, err == nil
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp with an offset,
// e.g. "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00.5+07:00".
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	// RFC3339 parsing also accepts fractional seconds
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
