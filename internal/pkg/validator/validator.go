package validator

import (
	"regexp"
	"strings"
	"time"
)

// ValidationError is one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects field errors from a DTO's Validate method.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// ToMap keys messages by field, as sent in error details.
func (v ValidationErrors) ToMap() map[string]string {
	m := make(map[string]string, len(v))
	for _, e := range v {
		m[e.Field] = e.Message
	}
	return m
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns nil when no error was collected, so callers can `return errs.Err()`.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhoneNumber accepts an optional leading + and 8-15 digits. Spaces and
// dashes are ignored.
func IsValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(strings.NewReplacer(" ", "", "-", "").Replace(phone))
}

func parseLayout(layout, s string) (time.Time, bool) {
	t, err := time.Parse(layout, s)
	return t, err == nil
}

// IsValidDate accepts "YYYY-MM-DD".
func IsValidDate(s string) (time.Time, bool) { return parseLayout(time.DateOnly, s) }

// IsValidMonth accepts "YYYY-MM".
func IsValidMonth(s string) (time.Time, bool) { return parseLayout("2006-01", s) }

// IsValidClock accepts a wall-clock time in "HH:MM" (24h).
func IsValidClock(s string) (time.Time, bool) { return parseLayout("15:04", s) }

func IsValidLatitude(lat float64) bool  { return lat >= -90 && lat <= 90 }
func IsValidLongitude(lon float64) bool { return lon >= -180 && lon <= 180 }
