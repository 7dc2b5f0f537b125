package board

import (
	"context"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/balkashynov/kanban/internal/broadcast"
	"github.com/balkashynov/kanban/internal/models"
)

// Coordinator keeps a store in step with writes made by other processes.
// Signals only say that something changed; the board itself is always re-read from storage.
type Coordinator struct {
	store       *Store
	broadcaster broadcast.Broadcaster
	logger      log.FieldLogger

	// OnReplace is called with a copy of the new board after it was swapped in
	OnReplace func(models.Board)

	// Interval, when positive, also reconciles on a timer. Backends without a shared
	// signal channel (sqlite with the local bus) only notice other processes this way.
	Interval time.Duration

	seen uint64
}

// NewCoordinator wires a store to a broadcaster
func NewCoordinator(store *Store, b broadcast.Broadcaster, logger log.FieldLogger) *Coordinator {
	if b == nil {
		b = broadcast.Nop{}
	}
	if logger == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Coordinator{store: store, broadcaster: b, logger: logger, seen: store.Adoptions()}
}

// Run processes change signals until ctx is cancelled
func (c *Coordinator) Run(ctx context.Context) error {
	signals, cancel, err := c.broadcaster.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	return c.loop(ctx, signals)
}

// Start subscribes before returning and handles signals in the background.
// The returned channel yields the result once processing stops.
func (c *Coordinator) Start(ctx context.Context) (<-chan error, error) {
	signals, cancel, err := c.broadcaster.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() {
		defer cancel()
		done <- c.loop(ctx, signals)
	}()
	return done, nil
}

func (c *Coordinator) loop(ctx context.Context, signals <-chan broadcast.Signal) error {
	var tick <-chan time.Time
	if c.Interval > 0 {
		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if _, err := c.Sync(ctx); err != nil {
				c.logger.WithError(err).Warn("unable to poll board")
			}
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			if sig.Source == c.store.Source() {
				continue
			}
			if _, err := c.Sync(ctx); err != nil {
				c.logger.WithError(err).WithField("source", sig.Source).Warn("unable to reload board")
			}
		}
	}
}

// Sync reconciles the store once and notifies OnReplace when a board written elsewhere was
// adopted since the last notification, including adoptions made by the store's own mutations.
func (c *Coordinator) Sync(ctx context.Context) (bool, error) {
	if _, err := c.store.Reconcile(ctx); err != nil {
		return false, err
	}
	adoptions := c.store.Adoptions()
	if adoptions == c.seen {
		return false, nil
	}
	c.seen = adoptions
	if c.OnReplace != nil {
		c.OnReplace(c.store.Snapshot())
	}
	return true, nil
}
