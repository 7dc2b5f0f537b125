package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/balkashynov/kanban/internal/models"
)

var now = time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)

func TestParseDeadline(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"2026-12-15", "2026-12-15", false},
		{"2026-2-3", "2026-02-03", false},
		{"15/12/2026", "2026-12-15", false},
		{"today", "2026-10-17", false},
		{"Tomorrow", "2026-10-18", false},
		{"3 days", "2026-10-20", false},
		{"1 day", "2026-10-18", false},
		{"2weeks", "2026-10-31", false},
		{"+3d", "2026-10-20", false},
		{"+1w", "2026-10-24", false},
		{"0 days", "", true},
		{"400 days", "", true},
		{"31/02/2026", "", true},
		{"2026-13-01", "", true},
		{"next friday", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDeadline(tt.input, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseDeadline(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDeadline(t *testing.T) {
	tests := []struct {
		name     string
		deadline string
		column   models.Column
		contains string
	}{
		{"none", "", models.ColumnTodo, ""},
		{"overdue", "2026-10-01", models.ColumnTodo, "OVERDUE"},
		{"finished late", "2026-10-01", models.ColumnDone, "Was due"},
		{"today", "2026-10-17", models.ColumnDoing, "Due today"},
		{"tomorrow", "2026-10-18", models.ColumnTodo, "Due tomorrow"},
		{"this week", "2026-10-21", models.ColumnTodo, "in 4 days"},
		{"later", "2026-12-24", models.ColumnTodo, "Due 24/12/2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDeadline(tt.deadline, tt.column, now)
			if tt.contains == "" {
				if got != "" {
					t.Fatalf("expected empty label, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.contains) {
				t.Fatalf("FormatDeadline(%q) = %q, want it to contain %q", tt.deadline, got, tt.contains)
			}
		})
	}
}

func TestParseTitle(t *testing.T) {
	got := ParseTitle("Fix login bug #backend,auth +high due:tomorrow", now)
	if len(got.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", got.Errors)
	}
	if got.Title != "Fix login bug" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if got.Label != "backend, auth" || got.Priority != "high" || got.Deadline != "2026-10-18" {
		t.Fatalf("unexpected metadata: %#v", got)
	}
}

func TestParseTitleShortcuts(t *testing.T) {
	got := ParseTitle("+2 Water plants due:+3d", now)
	if got.Title != "Water plants" || got.Priority != "medium" || got.Deadline != "2026-10-20" {
		t.Fatalf("unexpected parse: %#v", got)
	}

	plain := ParseTitle("C++ is fun", now)
	if plain.Title != "C++ is fun" || plain.Priority != "" {
		t.Fatalf("plus signs inside words are not priorities: %#v", plain)
	}
}

func TestParseTitleCollectsErrors(t *testing.T) {
	got := ParseTitle("Ship it +urgent due:someday", now)
	if len(got.Errors) != 2 {
		t.Fatalf("expected two errors, got %v", got.Errors)
	}
	if got.Title != "Ship it" || got.Priority != "" || got.Deadline != "" {
		t.Fatalf("invalid metadata should be dropped from the task: %#v", got)
	}
}
