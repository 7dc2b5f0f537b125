package board

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/balkashynov/kanban/internal/filter"
	"github.com/balkashynov/kanban/internal/models"
)

// SweepDueSoon marks open tasks whose deadline falls within the reminder horizon and returns
// the ones that were not reported before. Each task is reported at most once per deadline.
// The check time is recorded even when nothing is due.
func (s *Store) SweepDueSoon(ctx context.Context) (due []models.Task, err error) {
	ctx, span := s.startSpan(ctx, "board.sweep")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refresh(ctx); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	checked := models.Stamp(now)
	next := s.board.Clone()

	due = []models.Task{}
	for _, c := range []models.Column{models.ColumnTodo, models.ColumnDoing} {
		for _, t := range next.Column(c) {
			if !t.HasDeadline() {
				continue
			}
			if _, notified := next.Meta.NotifiedDeadlines[t.ID]; notified {
				continue
			}
			if !filter.DueWithin(t, s.horizonDays, now) {
				continue
			}
			next.Meta.NotifiedDeadlines[t.ID] = checked
			due = append(due, t.Clone())
		}
	}
	next.Meta.LastReminderCheckAt = &checked

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("tasks.due", len(due)))
	if len(due) > 0 {
		s.logger.WithField("count", len(due)).Debug("tasks due soon")
	}
	return due, nil
}
