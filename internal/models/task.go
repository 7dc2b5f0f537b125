package models

import (
	"fmt"
	"strings"
	"time"
)

// Column identifies one of the four task buckets on a board
type Column string

const (
	ColumnTodo    Column = "todo"
	ColumnDoing   Column = "doing"
	ColumnDone    Column = "done"
	ColumnArchive Column = "archive"
)

// BoardColumns are the columns shown on the board, in display order
var BoardColumns = []Column{ColumnTodo, ColumnDoing, ColumnDone}

// AllColumns includes the archive
var AllColumns = []Column{ColumnTodo, ColumnDoing, ColumnDone, ColumnArchive}

// ParseColumn converts a user supplied column name
func ParseColumn(name string) (Column, error) {
	switch Column(strings.ToLower(strings.TrimSpace(name))) {
	case ColumnTodo:
		return ColumnTodo, nil
	case ColumnDoing:
		return ColumnDoing, nil
	case ColumnDone:
		return ColumnDone, nil
	case ColumnArchive:
		return ColumnArchive, nil
	}
	return "", fmt.Errorf("unknown column %q (use todo, doing, done or archive)", name)
}

// Terminal reports whether tasks entering this column count as finished
func (c Column) Terminal() bool {
	return c == ColumnDone
}

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts priority text to a Priority.
// Accepts low/medium/high, med, and 1/2/3.
func ParsePriority(priority string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "low", "1":
		return PriorityLow, true
	case "medium", "med", "2":
		return PriorityMedium, true
	case "high", "3":
		return PriorityHigh, true
	default:
		return "", false
	}
}

// Rank orders priorities for sorting, high first
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task represents a card on the board
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Label       string   `json:"label"`
	Priority    Priority `json:"priority"`
	Deadline    string   `json:"deadline,omitempty"` // YYYY-MM-DD, empty when unset
	CreatedAt   string   `json:"createdAt"`          // display date, DD.MM.YYYY

	UpdatedAt  time.Time  `json:"updatedAt"`
	DoneAt     *time.Time `json:"doneAt,omitempty"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// HasDeadline reports whether a deadline is set
func (t Task) HasDeadline() bool {
	return t.Deadline != ""
}

// Clone returns a copy that shares no pointers with t
func (t Task) Clone() Task {
	c := t
	c.DoneAt = cloneTime(t.DoneAt)
	c.ArchivedAt = cloneTime(t.ArchivedAt)
	return c
}

// History actions
const (
	ActionCreated  = "created"
	ActionEdited   = "edited"
	ActionArchived = "archived"
	ActionRestored = "restored"
)

// MoveAction builds the history tag for a move between two columns
func MoveAction(from, to Column) string {
	return string(from) + "->" + string(to)
}

// HistoryEntry records one mutation of a task
type HistoryEntry struct {
	At       time.Time `json:"at"`
	Action   string    `json:"action"`
	Column   Column    `json:"column"`
	Snapshot Task      `json:"snapshot"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
