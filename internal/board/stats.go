package board

import (
	"fmt"
	"time"

	"github.com/balkashynov/kanban/internal/filter"
	"github.com/balkashynov/kanban/internal/models"
)

// WIPLimits caps the number of tasks per column. Zero or missing means no limit.
type WIPLimits map[models.Column]int

// Summary is a read-only overview of a board
type Summary struct {
	Counts            map[models.Column]int
	Overdue           int
	DueSoon           int
	CompletedLastWeek int
	AverageLeadTime   time.Duration
	LeadTimeSamples   int
	Warnings          []string
}

// Stats summarizes b at now. WIP limits only produce warnings.
func Stats(b models.Board, now time.Time, limits WIPLimits) Summary {
	sum := Summary{Counts: make(map[models.Column]int, len(models.AllColumns))}
	for _, c := range models.AllColumns {
		sum.Counts[c] = len(b.Column(c))
	}

	for _, c := range []models.Column{models.ColumnTodo, models.ColumnDoing} {
		if limit := limits[c]; limit > 0 && sum.Counts[c] > limit {
			sum.Warnings = append(sum.Warnings,
				fmt.Sprintf("%s has %d tasks, over the limit of %d", c, sum.Counts[c], limit))
		}
		for _, t := range b.Column(c) {
			if filter.IsOverdue(t, c, now) {
				sum.Overdue++
			} else if filter.DueWithin(t, filter.DueSoonDays, now) {
				sum.DueSoon++
			}
		}
	}

	weekAgo := now.AddDate(0, 0, -7)
	var total time.Duration
	for _, c := range []models.Column{models.ColumnDone, models.ColumnArchive} {
		for _, t := range b.Column(c) {
			if t.DoneAt == nil {
				continue
			}
			if !t.DoneAt.Before(weekAgo) && !t.DoneAt.After(now) {
				sum.CompletedLastWeek++
			}
			if lead, ok := leadTime(b.History[t.ID], *t.DoneAt); ok {
				total += lead
				sum.LeadTimeSamples++
			}
		}
	}
	if sum.LeadTimeSamples > 0 {
		sum.AverageLeadTime = total / time.Duration(sum.LeadTimeSamples)
	}
	return sum
}

// leadTime measures from the last update before the task entered done to its completion
func leadTime(history []models.HistoryEntry, doneAt time.Time) (time.Duration, bool) {
	for _, e := range history {
		for _, from := range []models.Column{models.ColumnTodo, models.ColumnDoing} {
			if e.Action != models.MoveAction(from, models.ColumnDone) {
				continue
			}
			lead := doneAt.Sub(e.Snapshot.UpdatedAt)
			if lead < 0 {
				return 0, false
			}
			return lead, true
		}
	}
	return 0, false
}
