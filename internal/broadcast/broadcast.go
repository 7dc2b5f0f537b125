// Package broadcast carries the advisory "board changed" signal between
// processes that share one persisted board.
package broadcast

import (
	"context"
	"sync"
	"time"
)

// Signal announces that the persisted board was written. Receivers re-read the
// store instead of trusting the payload.
type Signal struct {
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

// Broadcaster publishes and subscribes to change signals. Delivery is best effort.
type Broadcaster interface {
	Publish(ctx context.Context, sig Signal) error
	// Subscribe returns a channel of signals and a function that ends the subscription
	Subscribe(ctx context.Context) (<-chan Signal, func(), error)
}

// Nop is used when no signalling channel is available
type Nop struct{}

func (Nop) Publish(context.Context, Signal) error { return nil }

func (Nop) Subscribe(context.Context) (<-chan Signal, func(), error) {
	ch := make(chan Signal)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }, nil
}

// Bus fans signals out to subscribers inside one process
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Signal]struct{}
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Signal]struct{})}
}

// Publish delivers sig to every subscriber without blocking
func (b *Bus) Publish(_ context.Context, sig Signal) error {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- sig:
		default:
			// subscriber is behind; it will re-read the store on the next signal anyway
		}
	}
	b.mu.RUnlock()
	return nil
}

// Subscribe returns a buffered channel that receives all new signals
func (b *Bus) Subscribe(context.Context) (<-chan Signal, func(), error) {
	ch := make(chan Signal, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
