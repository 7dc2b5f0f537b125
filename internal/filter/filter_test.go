package filter

import (
	"testing"
	"time"

	"github.com/balkashynov/kanban/internal/models"
)

var now = time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC)

func TestDeadlineFilters(t *testing.T) {
	tests := []struct {
		name     string
		deadline string
		filter   DeadlineFilter
		want     bool
	}{
		{"overdue old date", "2000-01-01", DeadlineOverdue, true},
		{"overdue without deadline", "", DeadlineOverdue, false},
		{"none without deadline", "", DeadlineNone, true},
		{"none with deadline", "2000-01-01", DeadlineNone, false},
		{"today is not overdue", "2026-10-17", DeadlineOverdue, false},
		{"today", "2026-10-17", DeadlineToday, true},
		{"tomorrow is not today", "2026-10-18", DeadlineToday, false},
		{"week includes today", "2026-10-17", DeadlineWeek, true},
		{"week includes day seven", "2026-10-24", DeadlineWeek, true},
		{"week excludes day eight", "2026-10-25", DeadlineWeek, false},
		{"week excludes yesterday", "2026-10-16", DeadlineWeek, false},
		{"all", "", DeadlineAll, true},
		{"empty filter", "2026-10-16", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := models.Task{Title: "t", Deadline: tt.deadline}
			if got := MatchDeadline(task, tt.filter, now); got != tt.want {
				t.Fatalf("MatchDeadline(%q, %q) = %v, want %v", tt.deadline, tt.filter, got, tt.want)
			}
		})
	}
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	q := Query{Search: "foo"}
	if !IsVisible(models.Task{Title: "Foobar"}, models.ColumnTodo, q, now) {
		t.Fatalf("expected Foobar to match foo")
	}
	if IsVisible(models.Task{Title: "bar"}, models.ColumnTodo, q, now) {
		t.Fatalf("expected bar not to match foo")
	}
	if !IsVisible(models.Task{Title: "bar", Description: "about FOO"}, models.ColumnTodo, q, now) {
		t.Fatalf("expected description to be searched")
	}
	if !IsVisible(models.Task{Title: "bar", Label: "food"}, models.ColumnTodo, q, now) {
		t.Fatalf("expected label to be searched")
	}
}

func TestLabelPriorityStatusPredicates(t *testing.T) {
	task := models.Task{Title: "Deploy", Label: "Backend", Priority: models.PriorityHigh}

	tests := []struct {
		name   string
		column models.Column
		q      Query
		want   bool
	}{
		{"empty query", models.ColumnDoing, Query{}, true},
		{"label substring", models.ColumnDoing, Query{Label: "back"}, true},
		{"label mismatch", models.ColumnDoing, Query{Label: "front"}, false},
		{"priority match", models.ColumnDoing, Query{Priority: "high"}, true},
		{"priority numeric", models.ColumnDoing, Query{Priority: "3"}, true},
		{"priority mismatch", models.ColumnDoing, Query{Priority: "low"}, false},
		{"priority wildcard", models.ColumnDoing, Query{Priority: "all"}, true},
		{"status match", models.ColumnDoing, Query{Status: "doing"}, true},
		{"status mismatch", models.ColumnDoing, Query{Status: "todo"}, false},
		{"status wildcard", models.ColumnDone, Query{Status: "ALL"}, true},
		{"conjunction fails on one", models.ColumnDoing, Query{Label: "back", Priority: "low"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(task, tt.column, tt.q, now); got != tt.want {
				t.Fatalf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOverdueIgnoresDoneColumn(t *testing.T) {
	task := models.Task{Title: "late", Deadline: "2000-01-01"}
	if !IsOverdue(task, models.ColumnDoing, now) {
		t.Fatalf("expected doing task to be overdue")
	}
	if IsOverdue(task, models.ColumnDone, now) {
		t.Fatalf("finished task must never be overdue")
	}
}

func TestApplyKeepsOrder(t *testing.T) {
	b := models.NewBoard()
	b.Todo = []models.Task{
		{ID: "1", Title: "alpha"},
		{ID: "2", Title: "beta"},
		{ID: "3", Title: "alphabet"},
	}
	b.Done = []models.Task{{ID: "4", Title: "alpha done"}}

	got := Apply(b, Query{Search: "alpha"}, now)
	if len(got[models.ColumnTodo]) != 2 || got[models.ColumnTodo][0].ID != "1" || got[models.ColumnTodo][1].ID != "3" {
		t.Fatalf("unexpected todo result: %#v", got[models.ColumnTodo])
	}
	if len(got[models.ColumnDone]) != 1 {
		t.Fatalf("unexpected done result: %#v", got[models.ColumnDone])
	}
	if got[models.ColumnDoing] == nil {
		t.Fatalf("expected empty, non-nil doing result")
	}
	if _, ok := got[models.ColumnArchive]; ok {
		t.Fatalf("archive should only be included on request")
	}
}

func TestParseDeadlineFilter(t *testing.T) {
	if f, err := ParseDeadlineFilter(""); err != nil || f != DeadlineAll {
		t.Fatalf("empty filter = %q, %v", f, err)
	}
	if f, err := ParseDeadlineFilter("Overdue"); err != nil || f != DeadlineOverdue {
		t.Fatalf("Overdue filter = %q, %v", f, err)
	}
	if _, err := ParseDeadlineFilter("month"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}
