package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/balkashynov/kanban/internal/models"
	"github.com/balkashynov/kanban/internal/parser"
)

// shortID is the id prefix shown in listings; any unique prefix is accepted back
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// printColumns writes a table per column in the given order
func printColumns(out io.Writer, columns []models.Column, tasks map[models.Column][]models.Task, now time.Time) {
	for i, c := range columns {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d)\n", strings.ToUpper(string(c)), len(tasks[c]))
		if len(tasks[c]) == 0 {
			fmt.Fprintln(out, "  -")
			continue
		}
		for _, t := range tasks[c] {
			printTaskLine(out, c, t, now)
		}
	}
}

func printTaskLine(out io.Writer, column models.Column, t models.Task, now time.Time) {
	label := t.Label
	if label != "" {
		label = "#" + label
	}
	fmt.Fprintf(out, "  %-8s %-40s %-6s %-14s %s\n",
		shortID(t.ID),
		truncate(t.Title, 40),
		t.Priority,
		truncate(label, 14),
		parser.FormatDeadline(t.Deadline, column, now))
}

// printTask writes every field of a task
func printTask(out io.Writer, column models.Column, t models.Task, now time.Time) {
	fmt.Fprintf(out, "📋 %s\n", t.Title)
	fmt.Fprintf(out, "  ID: %s\n", t.ID)
	fmt.Fprintf(out, "  Column: %s\n", column)
	fmt.Fprintf(out, "  Priority: %s\n", t.Priority)
	if t.Label != "" {
		fmt.Fprintf(out, "  Label: %s\n", t.Label)
	}
	if due := parser.FormatDeadline(t.Deadline, column, now); due != "" {
		fmt.Fprintf(out, "  %s\n", due)
	}
	if t.Description != "" {
		fmt.Fprintf(out, "  Description: %s\n", t.Description)
	}
	fmt.Fprintf(out, "  Created: %s\n", t.CreatedAt)
	if t.DoneAt != nil {
		fmt.Fprintf(out, "  Done: %s\n", t.DoneAt.Local().Format("02/01/2006 15:04"))
	}
	if t.ArchivedAt != nil {
		fmt.Fprintf(out, "  Archived: %s\n", t.ArchivedAt.Local().Format("02/01/2006 15:04"))
	}
}

// writeJSON prints v with the board codec
func writeJSON(out io.Writer, v any) error {
	data, err := models.MarshalIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// byColumnName re-keys a column map so it encodes with plain string keys
func byColumnName(columns []models.Column, tasks map[models.Column][]models.Task) map[string][]models.Task {
	out := make(map[string][]models.Task, len(columns))
	for _, c := range columns {
		list := tasks[c]
		if list == nil {
			list = []models.Task{}
		}
		out[string(c)] = list
	}
	return out
}
