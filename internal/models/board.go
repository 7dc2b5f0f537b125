package models

import (
	"fmt"
	"time"
)

// Meta holds board level bookkeeping
type Meta struct {
	LastReminderCheckAt *time.Time           `json:"lastReminderCheckAt"`
	NotifiedDeadlines   map[string]time.Time `json:"notifiedDeadlines"`
	LastWriteAt         time.Time            `json:"lastWriteAt"`
}

// Board is the full persisted state: the four columns, per-task history and metadata.
// Column slices are ordered newest first.
type Board struct {
	Meta    Meta                      `json:"meta"`
	Todo    []Task                    `json:"todo"`
	Doing   []Task                    `json:"doing"`
	Done    []Task                    `json:"done"`
	Archive []Task                    `json:"archive"`
	History map[string][]HistoryEntry `json:"history"`
}

// NewBoard returns an empty board with every list and map allocated
func NewBoard() Board {
	return Board{
		Meta:    Meta{NotifiedDeadlines: map[string]time.Time{}},
		Todo:    []Task{},
		Doing:   []Task{},
		Done:    []Task{},
		Archive: []Task{},
		History: map[string][]HistoryEntry{},
	}
}

// Column returns the tasks of a column. Unknown columns yield nil.
func (b *Board) Column(c Column) []Task {
	switch c {
	case ColumnTodo:
		return b.Todo
	case ColumnDoing:
		return b.Doing
	case ColumnDone:
		return b.Done
	case ColumnArchive:
		return b.Archive
	}
	return nil
}

// SetColumn replaces the tasks of a column
func (b *Board) SetColumn(c Column, tasks []Task) {
	if tasks == nil {
		tasks = []Task{}
	}
	switch c {
	case ColumnTodo:
		b.Todo = tasks
	case ColumnDoing:
		b.Doing = tasks
	case ColumnDone:
		b.Done = tasks
	case ColumnArchive:
		b.Archive = tasks
	}
}

// Find returns the position of a task inside the given column
func (b *Board) Find(c Column, id string) (int, bool) {
	for i, t := range b.Column(c) {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Locate finds which column holds the task
func (b *Board) Locate(id string) (Column, Task, bool) {
	for _, c := range AllColumns {
		if i, ok := b.Find(c, id); ok {
			return c, b.Column(c)[i], true
		}
	}
	return "", Task{}, false
}

// Count returns the number of tasks across all columns including the archive
func (b *Board) Count() int {
	return len(b.Todo) + len(b.Doing) + len(b.Done) + len(b.Archive)
}

// CheckIntegrity verifies that every task id appears exactly once across all columns
func (b *Board) CheckIntegrity() error {
	seen := make(map[string]Column, b.Count())
	for _, c := range AllColumns {
		for _, t := range b.Column(c) {
			if t.ID == "" {
				return fmt.Errorf("task with empty id in %s", c)
			}
			if prev, ok := seen[t.ID]; ok {
				return fmt.Errorf("task %s appears in both %s and %s", t.ID, prev, c)
			}
			seen[t.ID] = c
		}
	}
	return nil
}

// Clone returns a deep copy of the board
func (b Board) Clone() Board {
	out := Board{
		Meta: Meta{
			LastReminderCheckAt: cloneTime(b.Meta.LastReminderCheckAt),
			NotifiedDeadlines:   make(map[string]time.Time, len(b.Meta.NotifiedDeadlines)),
			LastWriteAt:         b.Meta.LastWriteAt,
		},
		History: make(map[string][]HistoryEntry, len(b.History)),
	}
	for id, at := range b.Meta.NotifiedDeadlines {
		out.Meta.NotifiedDeadlines[id] = at
	}
	for _, c := range AllColumns {
		src := b.Column(c)
		dst := make([]Task, len(src))
		for i, t := range src {
			dst[i] = t.Clone()
		}
		out.SetColumn(c, dst)
	}
	for id, entries := range b.History {
		cp := make([]HistoryEntry, len(entries))
		for i, e := range entries {
			cp[i] = e
			cp[i].Snapshot = e.Snapshot.Clone()
		}
		out.History[id] = cp
	}
	return out
}

// Ensure allocates any nil list or map so the board encodes with empty values instead of null
func (b *Board) Ensure() {
	for _, c := range AllColumns {
		if b.Column(c) == nil {
			b.SetColumn(c, []Task{})
		}
	}
	if b.History == nil {
		b.History = map[string][]HistoryEntry{}
	}
	if b.Meta.NotifiedDeadlines == nil {
		b.Meta.NotifiedDeadlines = map[string]time.Time{}
	}
}
