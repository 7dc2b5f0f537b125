package board

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/balkashynov/kanban/internal/models"
)

// Import replaces the whole board with the payload. The payload must be a JSON object with
// todo, doing and done arrays; archive, history and meta are optional so older exports load.
func (s *Store) Import(ctx context.Context, raw []byte) (err error) {
	ctx, span := s.startSpan(ctx, "board.import")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.decodeLax(raw)
	if err != nil {
		return err
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.WithField("tasks", next.Count()).Info("board imported")
	return nil
}

// Export returns the full board, indented for humans
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.EncodeBoard(s.board, true)
}

// decodeLax builds a board from any of the known layouts, normalizing every task.
// Unreadable history entries and meta fields are logged and dropped one by one.
func (s *Store) decodeLax(data []byte) (models.Board, error) {
	now, newID := s.clock.Now(), s.newID
	var raw map[string]any
	if err := models.Unmarshal(data, &raw); err != nil {
		return models.Board{}, fmt.Errorf("%w: %v", ErrImport, err)
	}
	if raw == nil {
		return models.Board{}, fmt.Errorf("%w: payload is not an object", ErrImport)
	}

	b := models.NewBoard()
	for _, c := range models.AllColumns {
		value, present := raw[string(c)]
		if !present {
			if c == models.ColumnArchive {
				continue
			}
			return models.Board{}, fmt.Errorf("%w: missing %q column", ErrImport, c)
		}
		items, ok := value.([]any)
		if !ok {
			if value == nil && c == models.ColumnArchive {
				continue
			}
			return models.Board{}, fmt.Errorf("%w: %q is not a list", ErrImport, c)
		}
		tasks := make([]models.Task, 0, len(items))
		for i, item := range items {
			record, ok := item.(map[string]any)
			if !ok {
				return models.Board{}, fmt.Errorf("%w: %s[%d] is not a task", ErrImport, c, i)
			}
			tasks = append(tasks, models.Normalize(record, now, newID))
		}
		b.SetColumn(c, tasks)
	}

	if value, ok := raw["history"]; ok && value != nil {
		history, ok := value.(map[string]any)
		if !ok {
			s.logger.Warn("dropping imported history: not an object")
		}
		for id, entries := range history {
			b.History[id] = s.decodeHistory(id, entries)
		}
	}
	if value, ok := raw["meta"]; ok && value != nil {
		meta, ok := value.(map[string]any)
		if !ok {
			s.logger.Warn("dropping imported meta: not an object")
		}
		b.Meta = s.decodeMeta(meta)
	}

	// NormalizeBoard renames ids repeated across columns and drops history for unknown tasks
	models.NormalizeBoard(&b, newID)
	for id, entries := range b.History {
		if len(entries) > s.historyLimit {
			b.History[id] = entries[:s.historyLimit]
		}
	}
	return b, nil
}

func (s *Store) decodeHistory(id string, value any) []models.HistoryEntry {
	items, ok := value.([]any)
	if !ok {
		s.logger.WithField("task", id).Warn("dropping imported history: not a list")
		return nil
	}
	entries := make([]models.HistoryEntry, 0, len(items))
	for i, item := range items {
		var entry models.HistoryEntry
		if err := reencode(item, &entry); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{"task": id, "entry": i}).Warn("dropping unreadable history entry")
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *Store) decodeMeta(raw map[string]any) models.Meta {
	meta := models.Meta{NotifiedDeadlines: map[string]time.Time{}}
	if v, ok := raw["lastWriteAt"]; ok && v != nil {
		if ts, ok := models.ParseTimeValue(v); ok {
			meta.LastWriteAt = ts
		} else {
			s.logger.WithField("value", v).Warn("dropping unreadable meta.lastWriteAt")
		}
	}
	if v, ok := raw["lastReminderCheckAt"]; ok && v != nil {
		if ts, ok := models.ParseTimeValue(v); ok {
			meta.LastReminderCheckAt = &ts
		} else {
			s.logger.WithField("value", v).Warn("dropping unreadable meta.lastReminderCheckAt")
		}
	}
	notified, _ := raw["notifiedDeadlines"].(map[string]any)
	for id, v := range notified {
		ts, ok := models.ParseTimeValue(v)
		if !ok {
			s.logger.WithFields(log.Fields{"task": id, "value": v}).Warn("dropping unreadable reminder record")
			continue
		}
		meta.NotifiedDeadlines[id] = ts
	}
	return meta
}

func reencode(value any, out any) error {
	data, err := models.Marshal(value)
	if err != nil {
		return err
	}
	return models.Unmarshal(data, out)
}

// starter tasks for a brand new board
var seedTasks = []struct {
	title, description, label string
	priority                  models.Priority
	dueInDays                 int
}{
	{"Welcome to your board", "Move cards between columns with < and > in the board view.", "intro", models.PriorityLow, -1},
	{"Plan the week", "Pick the three tasks that matter most.", "planning", models.PriorityHigh, 2},
	{"Clean up the inbox", "", "chores", models.PriorityMedium, -1},
	{"Book a dentist appointment", "", "personal", models.PriorityMedium, 7},
	{"Archive finished tasks", "Archived tasks can be restored later.", "intro", models.PriorityLow, -1},
}

func (s *Store) seedBoard(now time.Time) models.Board {
	b := models.NewBoard()
	for i := len(seedTasks) - 1; i >= 0; i-- {
		seed := seedTasks[i]
		task := models.Task{
			ID:          s.newID(),
			Title:       seed.title,
			Description: seed.description,
			Label:       seed.label,
			Priority:    seed.priority,
			CreatedAt:   models.FormatCreated(now),
			UpdatedAt:   models.Stamp(now),
		}
		if seed.dueInDays >= 0 {
			task.Deadline = models.DateOnly(now).AddDate(0, 0, seed.dueInDays).Format(models.DateLayout)
		}
		b.Todo = prepend(b.Todo, task)
		s.appendHistory(&b, task.ID, models.ActionCreated, models.ColumnTodo, task)
	}
	s.logger.WithFields(log.Fields{"tasks": len(seedTasks)}).Debug("seed tasks prepared")
	return b
}
