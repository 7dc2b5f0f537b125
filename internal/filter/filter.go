// Package filter selects the tasks that are visible on a board for a query.
// Every function is pure: the current time is always passed in.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/kanban/internal/models"
)

// Wildcard matches every priority or status
const Wildcard = "all"

// DeadlineFilter narrows tasks by their deadline
type DeadlineFilter string

const (
	DeadlineAll     DeadlineFilter = "all"
	DeadlineNone    DeadlineFilter = "none"
	DeadlineOverdue DeadlineFilter = "overdue"
	DeadlineToday   DeadlineFilter = "today"
	DeadlineWeek    DeadlineFilter = "week"
)

// DueSoonDays is the look-ahead of the "week" filter and of due-soon reminders
const DueSoonDays = 7

// ParseDeadlineFilter validates a deadline filter name. Empty means all.
func ParseDeadlineFilter(value string) (DeadlineFilter, error) {
	switch f := DeadlineFilter(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return DeadlineAll, nil
	case DeadlineAll, DeadlineNone, DeadlineOverdue, DeadlineToday, DeadlineWeek:
		return f, nil
	}
	return "", fmt.Errorf("unknown deadline filter %q (use all, none, overdue, today or week)", value)
}

// Query describes what the presentation layer wants to see
type Query struct {
	Search   string
	Label    string
	Priority string // priority name or "all"
	Status   string // column name or "all"; only meaningful for merged views
	Deadline DeadlineFilter
}

// IsVisible reports whether task, sitting in column, passes every predicate of q
func IsVisible(task models.Task, column models.Column, q Query, now time.Time) bool {
	return matchSearch(task, q.Search) &&
		matchLabel(task, q.Label) &&
		matchPriority(task, q.Priority) &&
		matchStatus(column, q.Status) &&
		MatchDeadline(task, q.Deadline, now)
}

func matchSearch(task models.Task, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	haystack := strings.ToLower(task.Title + " " + task.Description + " " + task.Label)
	return strings.Contains(haystack, search)
}

func matchLabel(task models.Task, label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.Label), label)
}

func matchPriority(task models.Task, priority string) bool {
	if isWildcard(priority) {
		return true
	}
	p, ok := models.ParsePriority(priority)
	return ok && task.Priority == p
}

func matchStatus(column models.Column, status string) bool {
	if isWildcard(status) {
		return true
	}
	return strings.EqualFold(string(column), strings.TrimSpace(status))
}

func isWildcard(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, Wildcard)
}

// MatchDeadline is the pure deadline predicate. Dates are compared without time of day,
// in the location of now.
func MatchDeadline(task models.Task, f DeadlineFilter, now time.Time) bool {
	switch f {
	case "", DeadlineAll:
		return true
	case DeadlineNone:
		return !task.HasDeadline()
	}

	deadline, ok := models.ParseDate(task.Deadline, now.Location())
	if !ok {
		return false
	}
	today := models.DateOnly(now)

	switch f {
	case DeadlineOverdue:
		return deadline.Before(today)
	case DeadlineToday:
		return deadline.Equal(today)
	case DeadlineWeek:
		return !deadline.Before(today) && !deadline.After(today.AddDate(0, 0, DueSoonDays))
	}
	return false
}

// DueWithin reports whether the deadline falls in [today, today+days]
func DueWithin(task models.Task, days int, now time.Time) bool {
	deadline, ok := models.ParseDate(task.Deadline, now.Location())
	if !ok {
		return false
	}
	today := models.DateOnly(now)
	return !deadline.Before(today) && !deadline.After(today.AddDate(0, 0, days))
}

// IsOverdue applies the presentation rule on top of the deadline predicate:
// finished tasks are never overdue.
func IsOverdue(task models.Task, column models.Column, now time.Time) bool {
	if column.Terminal() {
		return false
	}
	return MatchDeadline(task, DeadlineOverdue, now)
}

// Apply returns the visible tasks per column, keeping column order
func Apply(b models.Board, q Query, now time.Time, columns ...models.Column) map[models.Column][]models.Task {
	if len(columns) == 0 {
		columns = models.BoardColumns
	}
	out := make(map[models.Column][]models.Task, len(columns))
	for _, c := range columns {
		visible := []models.Task{}
		for _, t := range b.Column(c) {
			if IsVisible(t, c, q, now) {
				visible = append(visible, t)
			}
		}
		out[c] = visible
	}
	return out
}
