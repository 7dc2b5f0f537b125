package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO calendar date used for deadlines
const DateLayout = "2006-01-02"

// CreatedLayout is the display format of Task.CreatedAt
const CreatedLayout = "02.01.2006"

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in local time
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// GenerateID returns a random opaque task identifier
func GenerateID() string {
	return uuid.NewString()
}

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD deadline as midnight in loc
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FormatCreated renders a creation date for Task.CreatedAt
func FormatCreated(t time.Time) string {
	return t.Format(CreatedLayout)
}

// Stamp converts a clock reading to the stored timestamp form
func Stamp(t time.Time) time.Time {
	return t.UTC()
}
