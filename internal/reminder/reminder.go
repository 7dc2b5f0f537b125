// Package reminder periodically checks the board for tasks that are due soon.
package reminder

import (
	"context"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/balkashynov/kanban/internal/models"
)

// DefaultInterval is how often the board is checked
const DefaultInterval = time.Minute

// Sweeper finds due-soon tasks and marks them as reported
type Sweeper interface {
	SweepDueSoon(ctx context.Context) ([]models.Task, error)
}

// Alerter tells the user about a task
type Alerter interface {
	Alert(task models.Task)
}

// AlertFunc adapts a function to Alerter
type AlertFunc func(models.Task)

func (f AlertFunc) Alert(task models.Task) { f(task) }

// LogAlerter writes alerts to a logger
type LogAlerter struct {
	Logger log.FieldLogger
}

func (a LogAlerter) Alert(task models.Task) {
	a.Logger.WithFields(log.Fields{
		"task":     task.ID,
		"deadline": task.Deadline,
	}).Infof("task %q is due soon", task.Title)
}

// Scheduler runs sweeps on a fixed interval
type Scheduler struct {
	Interval time.Duration
	Sweeper  Sweeper
	Alerter  Alerter
	Logger   log.FieldLogger
}

// New creates a scheduler. A non-positive interval uses DefaultInterval.
func New(sweeper Sweeper, alerter Alerter, interval time.Duration, logger log.FieldLogger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Scheduler{Interval: interval, Sweeper: sweeper, Alerter: alerter, Logger: logger}
}

// Run sweeps right away and then on every tick until ctx is done.
// Failed sweeps are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
		s.Logger.WithError(err).Warn("reminder sweep failed")
	}
}

// Tick runs one sweep and alerts for every task it returns
func (s *Scheduler) Tick(ctx context.Context) ([]models.Task, error) {
	due, err := s.Sweeper.SweepDueSoon(ctx)
	if err != nil {
		return nil, err
	}
	for _, task := range due {
		if s.Alerter != nil {
			s.Alerter.Alert(task)
		}
	}
	if len(due) > 0 {
		s.Logger.WithField("count", len(due)).Debug("reminders sent")
	}
	return due, nil
}
