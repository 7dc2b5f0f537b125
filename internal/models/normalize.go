package models

import (
	"strconv"
	"strings"
	"time"
)

// UntitledTask replaces a missing title on normalized records
const UntitledTask = "Untitled task"

// Normalize builds a structurally valid Task from an arbitrary, possibly partial record
// (imported files, older storage layouts). It never fails: missing identifiers are generated,
// missing titles get a placeholder, missing or unknown priorities become medium and missing
// timestamps become now. Optional timestamps that cannot be parsed are dropped.
func Normalize(raw map[string]any, now time.Time, newID func() string) Task {
	if newID == nil {
		newID = GenerateID
	}

	task := Task{
		ID:          stringField(raw, "id"),
		Title:       stringField(raw, "title"),
		Description: stringField(raw, "description"),
		Label:       stringField(raw, "label"),
		CreatedAt:   stringField(raw, "createdAt"),
	}

	if task.ID == "" {
		task.ID = newID()
	}
	if task.Title == "" {
		task.Title = UntitledTask
	}
	if p, ok := ParsePriority(stringField(raw, "priority")); ok {
		task.Priority = p
	} else {
		task.Priority = PriorityMedium
	}
	if d, ok := normalizeDeadline(stringField(raw, "deadline")); ok {
		task.Deadline = d
	}
	if task.CreatedAt == "" {
		task.CreatedAt = FormatCreated(now)
	}

	if ts, ok := timeField(raw, "updatedAt"); ok {
		task.UpdatedAt = ts
	} else {
		task.UpdatedAt = Stamp(now)
	}
	if ts, ok := timeField(raw, "doneAt"); ok {
		task.DoneAt = &ts
	}
	if ts, ok := timeField(raw, "archivedAt"); ok {
		task.ArchivedAt = &ts
	}

	return task
}

// NormalizeDeadline validates a deadline and returns it in YYYY-MM-DD form.
// Full timestamps are cut down to their date part.
func NormalizeDeadline(value string) (string, bool) {
	return normalizeDeadline(value)
}

func normalizeDeadline(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if len(value) > len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return "", false
	}
	return value, true
}

// stringField reads a text value, coercing numbers and booleans
func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func timeField(raw map[string]any, key string) (time.Time, bool) {
	return ParseTimeValue(raw[key])
}

// ParseTimeValue reads a timestamp stored as RFC 3339 text or as epoch milliseconds
func ParseTimeValue(value any) (time.Time, bool) {
	switch v := value.(type) {
	case string:
		return ParseTimestamp(v)
	case float64:
		if v <= 0 {
			return time.Time{}, false
		}
		return Stamp(time.UnixMilli(int64(v))), true
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return Stamp(v), true
	default:
		return time.Time{}, false
	}
}

// ParseTimestamp accepts RFC 3339 timestamps and bare dates
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return Stamp(ts), true
	}
	if ts, err := time.Parse(DateLayout, value); err == nil {
		return Stamp(ts), true
	}
	return time.Time{}, false
}
