package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/kanban/internal/filter"
	"github.com/balkashynov/kanban/internal/models"
)

var (
	isoDateRegex  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dmyDateRegex  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s*(day|days|week|weeks)$`)
	shortRegex    = regexp.MustCompile(`^\+(\d+)([dw])$`)
)

// ParseDeadline turns user input into a YYYY-MM-DD deadline relative to now.
// Supported formats:
// - yyyy-mm-dd (e.g., "2026-12-15")
// - dd/mm/yyyy (e.g., "15/12/2026")
// - today, tomorrow
// - X days, X weeks (e.g., "3 days", "1week")
// - +Xd, +Xw (e.g., "+3d", "+2w")
// Empty input means no deadline.
func ParseDeadline(input string, now time.Time) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", nil
	}

	today := models.DateOnly(now)
	switch input {
	case "today":
		return today.Format(models.DateLayout), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(models.DateLayout), nil
	}

	if m := isoDateRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := dmyDateRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[3], m[2], m[1])
	}
	if days, err := parseRelative(input); err == nil {
		return today.AddDate(0, 0, days).Format(models.DateLayout), nil
	} else if !errors.Is(err, errNotRelative) {
		return "", err
	}

	return "", fmt.Errorf("invalid date format. Use: yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days, X weeks, +Xd or +Xw")
}

var errNotRelative = errors.New("not a relative date")

// parseRelative returns the number of days described by "3 days", "2 weeks", "+3d" or "+1w"
func parseRelative(input string) (int, error) {
	var amountText, unit string
	if m := relativeRegex.FindStringSubmatch(input); m != nil {
		amountText, unit = m[1], m[2]
	} else if m := shortRegex.FindStringSubmatch(input); m != nil {
		amountText, unit = m[1], m[2]
	} else {
		return 0, errNotRelative
	}

	amount, err := strconv.Atoi(amountText)
	if err != nil {
		return 0, fmt.Errorf("invalid number")
	}

	switch unit {
	case "d", "day", "days":
		if amount < 1 || amount > 365 { // Max 1 year in days
			return 0, fmt.Errorf("days must be between 1 and 365")
		}
		return amount, nil
	case "w", "week", "weeks":
		if amount < 1 || amount > 52 {
			return 0, fmt.Errorf("weeks must be between 1 and 52")
		}
		return amount * 7, nil
	}
	return 0, fmt.Errorf("unsupported time unit")
}

func buildDate(yearText, monthText, dayText string) (string, error) {
	year, _ := strconv.Atoi(yearText)
	month, _ := strconv.Atoi(monthText)
	day, _ := strconv.Atoi(dayText)

	if month < 1 || month > 12 {
		return "", fmt.Errorf("month must be between 1 and 12")
	}
	if day < 1 || day > 31 {
		return "", fmt.Errorf("day must be between 1 and 31")
	}
	if year < 2000 || year > 2100 {
		return "", fmt.Errorf("year must be between 2000 and 2100")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Check if date is valid (handles leap years, etc.)
	if date.Day() != day || date.Month() != time.Month(month) {
		return "", fmt.Errorf("invalid date")
	}
	return date.Format(models.DateLayout), nil
}

// FormatDeadline describes a deadline for display. Tasks in done are never shown as overdue.
func FormatDeadline(deadline string, column models.Column, now time.Time) string {
	due, ok := models.ParseDate(deadline, now.Location())
	if !ok {
		return ""
	}

	daysDiff := daysBetween(models.DateOnly(now), due)
	// Always show the actual date to avoid confusion
	dateStr := due.Format("02/01/2006")

	switch {
	case filter.IsOverdue(models.Task{Deadline: deadline}, column, now):
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff < 0:
		return fmt.Sprintf("📅 Was due %s", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= filter.DueSoonDays:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}

// daysBetween counts calendar days, ignoring daylight saving shifts
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
