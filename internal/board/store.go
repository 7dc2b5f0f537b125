// Package board owns the kanban board state. Every operation runs under one lock, works on a
// copy of the board and only replaces the live board after the copy was persisted, so a failed
// call never leaves a partial change behind. Mutations start by adopting whatever another
// process persisted since this store last looked.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/balkashynov/kanban/internal/broadcast"
	"github.com/balkashynov/kanban/internal/db"
	"github.com/balkashynov/kanban/internal/models"
)

const (
	// DefaultKey is the storage key of the current board layout
	DefaultKey = "kanban-board-v3"
	// DefaultHistoryLimit caps the history kept per task
	DefaultHistoryLimit = 20
	// DefaultHorizonDays is how far ahead the reminder sweep looks
	DefaultHorizonDays = 7

	tracerName = "github.com/balkashynov/kanban/internal/board"
)

// DefaultLegacyKeys are read when the current key is empty, newest first
var DefaultLegacyKeys = []string{"kanban-board-v2", "kanban-board-v1"}

// Option configures a Store
type Option func(*Store)

func WithKey(key string) Option { return func(s *Store) { s.key = key } }

func WithLegacyKeys(keys ...string) Option {
	return func(s *Store) { s.legacyKeys = append([]string(nil), keys...) }
}

// WithSource names this process in change signals so it can ignore its own writes
func WithSource(source string) Option { return func(s *Store) { s.source = source } }

func WithClock(clock models.Clock) Option { return func(s *Store) { s.clock = clock } }

func WithIDGenerator(newID func() string) Option { return func(s *Store) { s.newID = newID } }

func WithHistoryLimit(limit int) Option { return func(s *Store) { s.historyLimit = limit } }

func WithHorizonDays(days int) Option { return func(s *Store) { s.horizonDays = days } }

func WithLogger(logger log.FieldLogger) Option { return func(s *Store) { s.logger = logger } }

func WithBroadcaster(b broadcast.Broadcaster) Option { return func(s *Store) { s.broadcaster = b } }

// WithSeed fills an empty store with starter tasks on Load
func WithSeed(seed bool) Option { return func(s *Store) { s.seed = seed } }

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) { s.tracer = tp.Tracer(tracerName) }
}

// Store serializes all board operations and persists each change through a KV backend
type Store struct {
	mu    sync.Mutex
	kv    db.KV
	board models.Board

	// adoptions counts boards written elsewhere that replaced the live one
	adoptions uint64

	key          string
	legacyKeys   []string
	source       string
	clock        models.Clock
	newID        func() string
	historyLimit int
	horizonDays  int
	seed         bool
	logger       log.FieldLogger
	broadcaster  broadcast.Broadcaster
	tracer       trace.Tracer
}

// New creates a store over kv. The board starts empty until Load is called.
func New(kv db.KV, opts ...Option) *Store {
	s := &Store{
		kv:           kv,
		board:        models.NewBoard(),
		key:          DefaultKey,
		legacyKeys:   DefaultLegacyKeys,
		clock:        models.SystemClock{},
		newID:        models.GenerateID,
		historyLimit: DefaultHistoryLimit,
		horizonDays:  DefaultHorizonDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == "" {
		s.source = models.GenerateID()
	}
	if s.historyLimit <= 0 {
		s.historyLimit = DefaultHistoryLimit
	}
	if s.horizonDays < 0 {
		s.horizonDays = DefaultHorizonDays
	}
	if s.logger == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		s.logger = discard
	}
	if s.broadcaster == nil {
		s.broadcaster = broadcast.Nop{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Source identifies this store in change signals
func (s *Store) Source() string { return s.source }

// Adoptions reports how many times a board written by another process replaced the live one
func (s *Store) Adoptions() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adoptions
}

// Now reads the store clock
func (s *Store) Now() time.Time { return s.clock.Now() }

// CreateRequest holds the fields of a new task. Empty priority means medium.
type CreateRequest struct {
	Title       string
	Description string
	Label       string
	Priority    string
	Deadline    string
}

// Changes lists the fields an edit touches. Nil fields are left alone.
type Changes struct {
	Title       *string
	Description *string
	Label       *string
	Priority    *string
	Deadline    *string
}

// Empty reports whether no field is set
func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Label == nil && c.Priority == nil && c.Deadline == nil
}

// Create adds a task to the front of todo and returns its id
func (s *Store) Create(ctx context.Context, req CreateRequest) (id string, err error) {
	ctx, span := s.startSpan(ctx, "board.create")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refresh(ctx); err != nil {
		return "", err
	}

	task, err := s.newTask(req, s.clock.Now())
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("task.id", task.ID))

	next := s.board.Clone()
	next.Todo = prepend(next.Todo, task)
	s.appendHistory(&next, task.ID, models.ActionCreated, models.ColumnTodo, task)

	if err := s.commit(ctx, next); err != nil {
		return "", err
	}
	s.logger.WithFields(log.Fields{"task": task.ID, "title": task.Title}).Debug("task created")
	return task.ID, nil
}

func (s *Store) newTask(req CreateRequest, now time.Time) (models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	priority := models.PriorityMedium
	if p := strings.TrimSpace(req.Priority); p != "" {
		parsed, ok := models.ParsePriority(p)
		if !ok {
			return models.Task{}, fmt.Errorf("%w: invalid priority %q (use low, medium or high)", ErrValidation, req.Priority)
		}
		priority = parsed
	}

	var deadline string
	if d := strings.TrimSpace(req.Deadline); d != "" {
		parsed, ok := models.NormalizeDeadline(d)
		if !ok {
			return models.Task{}, fmt.Errorf("%w: invalid deadline %q (use YYYY-MM-DD)", ErrValidation, req.Deadline)
		}
		deadline = parsed
	}

	return models.Task{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Label:       strings.TrimSpace(req.Label),
		Priority:    priority,
		Deadline:    deadline,
		CreatedAt:   models.FormatCreated(now),
		UpdatedAt:   models.Stamp(now),
	}, nil
}

// Move takes a task out of from and puts it at the front of to.
// Moving into done records the completion time; moving out of done keeps it.
func (s *Store) Move(ctx context.Context, id string, from, to models.Column) (err error) {
	ctx, span := s.startSpan(ctx, "board.move",
		attribute.String("task.id", id),
		attribute.String("column.from", string(from)),
		attribute.String("column.to", string(to)))
	defer func() { endSpan(span, err) }()

	if !onBoard(from) || !onBoard(to) {
		return fmt.Errorf("%w: cannot move between %q and %q, use archive and restore", ErrValidation, from, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refresh(ctx); err != nil {
		return err
	}

	next := s.board.Clone()
	task, err := take(&next, from, id)
	if err != nil {
		return err
	}
	before := task.Clone()

	now := models.Stamp(s.clock.Now())
	task.UpdatedAt = now
	if to.Terminal() && from != to {
		task.DoneAt = &now
	}
	next.SetColumn(to, prepend(next.Column(to), task))
	s.appendHistory(&next, id, models.MoveAction(from, to), from, before)

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{"task": id, "from": from, "to": to}).Debug("task moved")
	return nil
}

// Edit applies changes to a task in place. Text is trimmed; an empty title, an unknown
// priority or a malformed deadline keep the previous value. An empty deadline clears it.
func (s *Store) Edit(ctx context.Context, id string, column models.Column, changes Changes) (err error) {
	ctx, span := s.startSpan(ctx, "board.edit",
		attribute.String("task.id", id),
		attribute.String("column.from", string(column)))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refresh(ctx); err != nil {
		return err
	}

	next := s.board.Clone()
	i, ok := next.Find(column, id)
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrNotFound, id, column)
	}
	tasks := next.Column(column)
	before := tasks[i].Clone()
	task := &tasks[i]

	if changes.Title != nil {
		if title := strings.TrimSpace(*changes.Title); title != "" {
			task.Title = title
		}
	}
	if changes.Description != nil {
		task.Description = strings.TrimSpace(*changes.Description)
	}
	if changes.Label != nil {
		task.Label = strings.TrimSpace(*changes.Label)
	}
	if changes.Priority != nil {
		if p, ok := models.ParsePriority(*changes.Priority); ok {
			task.Priority = p
		}
	}
	if changes.Deadline != nil {
		if d := strings.TrimSpace(*changes.Deadline); d == "" {
			task.Deadline = ""
		} else if parsed, ok := models.NormalizeDeadline(d); ok {
			task.Deadline = parsed
		}
	}
	if task.Deadline != before.Deadline {
		delete(next.Meta.NotifiedDeadlines, id)
	}
	task.UpdatedAt = models.Stamp(s.clock.Now())
	s.appendHistory(&next, id, models.ActionEdited, column, before)

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.WithField("task", id).Debug("task edited")
	return nil
}

// Archive moves a task from a board column to the front of the archive
func (s *Store) Archive(ctx context.Context, id string, column models.Column) (err error) {
	ctx, span := s.startSpan(ctx, "board.archive",
		attribute.String("task.id", id),
		attribute.String("column.from", string(column)),
		attribute.String("column.to", string(models.ColumnArchive)))
	defer func() { endSpan(span, err) }()

	if !onBoard(column) {
		return fmt.Errorf("%w: cannot archive from %q", ErrValidation, column)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refresh(ctx); err != nil {
		return err
	}

	next := s.board.Clone()
	task, err := take(&next, column, id)
	if err != nil {
		return err
	}
	before := task.Clone()

	now := models.Stamp(s.clock.Now())
	task.ArchivedAt = &now
	next.Archive = prepend(next.Archive, task)
	s.appendHistory(&next, id, models.ActionArchived, column, before)

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{"task": id, "from": column}).Debug("task archived")
	return nil
}

// Restore brings an archived task back to the front of todo
func (s *Store) Restore(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "board.restore",
		attribute.String("task.id", id),
		attribute.String("column.from", string(models.ColumnArchive)),
		attribute.String("column.to", string(models.ColumnTodo)))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refresh(ctx); err != nil {
		return err
	}

	next := s.board.Clone()
	task, err := take(&next, models.ColumnArchive, id)
	if err != nil {
		return err
	}
	before := task.Clone()

	task.ArchivedAt = nil
	task.UpdatedAt = models.Stamp(s.clock.Now())
	next.Todo = prepend(next.Todo, task)
	s.appendHistory(&next, id, models.ActionRestored, models.ColumnArchive, before)

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.WithField("task", id).Debug("task restored")
	return nil
}

// Delete removes a task for good together with its history and reminder record
func (s *Store) Delete(ctx context.Context, id string, column models.Column) (err error) {
	ctx, span := s.startSpan(ctx, "board.delete",
		attribute.String("task.id", id),
		attribute.String("column.from", string(column)))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refresh(ctx); err != nil {
		return err
	}

	next := s.board.Clone()
	if _, err := take(&next, column, id); err != nil {
		return err
	}
	delete(next.History, id)
	delete(next.Meta.NotifiedDeadlines, id)

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{"task": id, "from": column}).Debug("task deleted")
	return nil
}

// Snapshot returns a deep copy of the current board
func (s *Store) Snapshot() models.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Locate finds the column and current state of a task
func (s *Store) Locate(id string) (models.Column, models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	column, task, ok := s.board.Locate(id)
	if !ok {
		return "", models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return column, task.Clone(), nil
}

// Task returns the current state of a task wherever it is
func (s *Store) Task(id string) (models.Task, error) {
	_, task, err := s.Locate(id)
	return task, err
}

// Resolve finds a task by its full id or by an unambiguous id prefix
func (s *Store) Resolve(ref string) (models.Column, models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", models.Task{}, fmt.Errorf("%w: task id is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if column, task, ok := s.board.Locate(ref); ok {
		return column, task.Clone(), nil
	}

	var (
		found  models.Task
		column models.Column
		hits   int
	)
	for _, c := range models.AllColumns {
		for _, t := range s.board.Column(c) {
			if strings.HasPrefix(t.ID, ref) {
				found, column = t, c
				hits++
			}
		}
	}
	switch hits {
	case 0:
		return "", models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return column, found.Clone(), nil
	}
	return "", models.Task{}, fmt.Errorf("%w: id prefix %q matches %d tasks", ErrValidation, ref, hits)
}

// History returns the log of a task, newest first
func (s *Store) History(id string) []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.board.History[id]
	out := make([]models.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		out[i].Snapshot = e.Snapshot.Clone()
	}
	return out
}

// Load reads the persisted board. When the current key is empty the legacy keys are tried
// and a hit is migrated to the current key. With nothing stored the board is seeded if enabled.
func (s *Store) Load(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "board.load")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(ctx, s.key)
	switch {
	case err == nil:
		b, err := s.decode(data)
		if err != nil {
			return fmt.Errorf("decode board %s: %w", s.key, err)
		}
		s.board = b
		s.logger.WithFields(log.Fields{"key": s.key, "tasks": b.Count()}).Debug("board loaded")
		return nil
	case !errors.Is(err, db.ErrKeyNotFound):
		return fmt.Errorf("read board %s: %w", s.key, err)
	}

	for _, key := range s.legacyKeys {
		data, err := s.kv.Get(ctx, key)
		if errors.Is(err, db.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read board %s: %w", key, err)
		}
		b, err := s.decodeLax(data)
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("skipping unreadable legacy board")
			continue
		}
		if err := s.commit(ctx, b); err != nil {
			return err
		}
		s.logger.WithFields(log.Fields{"from": key, "to": s.key, "tasks": b.Count()}).Info("migrated legacy board")
		return nil
	}

	if !s.seed {
		s.board = models.NewBoard()
		return nil
	}
	seeded := s.seedBoard(s.clock.Now())
	if err := s.commit(ctx, seeded); err != nil {
		return err
	}
	s.logger.WithField("tasks", seeded.Count()).Info("seeded new board")
	return nil
}

// Reconcile re-reads the persisted board and adopts it when it was written by someone else
// since the last time this store saw it. It reports whether the board was replaced.
func (s *Store) Reconcile(ctx context.Context) (replaced bool, err error) {
	ctx, span := s.startSpan(ctx, "board.reconcile")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced, err = s.refresh(ctx)
	if replaced {
		span.SetAttributes(attribute.Bool("board.replaced", true))
	}
	return replaced, err
}

// refresh adopts the persisted board when its last write differs from the live one, so
// every mutation starts from what another process may have saved meanwhile. Callers hold s.mu.
func (s *Store) refresh(ctx context.Context) (bool, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read board %s: %w", s.key, err)
	}
	b, err := s.decode(data)
	if err != nil {
		return false, fmt.Errorf("decode board %s: %w", s.key, err)
	}
	if b.Meta.LastWriteAt.Equal(s.board.Meta.LastWriteAt) {
		return false, nil
	}
	s.board = b
	s.adoptions++
	s.logger.WithField("lastWriteAt", b.Meta.LastWriteAt).Debug("board replaced from store")
	return true, nil
}

// decode reads the current layout and falls back to the lax path for older payloads
func (s *Store) decode(data []byte) (models.Board, error) {
	b, err := models.DecodeBoard(data, s.newID)
	if err == nil {
		return b, nil
	}
	lax, laxErr := s.decodeLax(data)
	if laxErr != nil {
		return models.Board{}, err
	}
	return lax, nil
}

// commit persists next and makes it the live board. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next models.Board) error {
	next.Ensure()
	next.Meta.LastWriteAt = models.Stamp(s.clock.Now())
	if err := next.CheckIntegrity(); err != nil {
		return fmt.Errorf("refusing to persist board: %w", err)
	}

	data, err := models.EncodeBoard(next, false)
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("persist board: %w", err)
	}
	s.board = next

	sig := broadcast.Signal{Source: s.source, At: next.Meta.LastWriteAt}
	if err := s.broadcaster.Publish(ctx, sig); err != nil {
		s.logger.WithError(err).Warn("unable to publish board change")
	}
	return nil
}

func (s *Store) appendHistory(b *models.Board, id, action string, column models.Column, snapshot models.Task) {
	entry := models.HistoryEntry{
		At:       models.Stamp(s.clock.Now()),
		Action:   action,
		Column:   column,
		Snapshot: snapshot.Clone(),
	}
	entries := append([]models.HistoryEntry{entry}, b.History[id]...)
	if len(entries) > s.historyLimit {
		entries = entries[:s.historyLimit]
	}
	b.History[id] = entries
}

func (s *Store) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// take removes a task from a column of b and returns it
func take(b *models.Board, column models.Column, id string) (models.Task, error) {
	i, ok := b.Find(column, id)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s in %s", ErrNotFound, id, column)
	}
	tasks := b.Column(column)
	task := tasks[i]
	rest := make([]models.Task, 0, len(tasks)-1)
	rest = append(rest, tasks[:i]...)
	rest = append(rest, tasks[i+1:]...)
	b.SetColumn(column, rest)
	return task, nil
}

func prepend(tasks []models.Task, task models.Task) []models.Task {
	return append([]models.Task{task}, tasks...)
}

func onBoard(c models.Column) bool {
	for _, bc := range models.BoardColumns {
		if c == bc {
			return true
		}
	}
	return false
}
