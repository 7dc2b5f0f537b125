package broadcast

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Redis sends signals over a Redis pub/sub channel
type Redis struct {
	client  *redis.Client
	channel string
	logger  log.FieldLogger
}

// NewRedis creates a Redis broadcaster on the given channel
func NewRedis(client *redis.Client, channel string, logger log.FieldLogger) *Redis {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Redis{client: client, channel: channel, logger: logger}
}

func (r *Redis) Publish(ctx context.Context, sig Signal) error {
	payload, err := sonic.ConfigStd.Marshal(sig)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Subscribe listens on the channel until ctx ends or the returned cancel is called.
// Malformed payloads are logged and skipped.
func (r *Redis) Subscribe(ctx context.Context) (<-chan Signal, func(), error) {
	sub := r.client.Subscribe(ctx, r.channel)
	// Wait for the subscription confirmation so publishes right after Subscribe are seen
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Signal, 16)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var sig Signal
				if err := sonic.ConfigStd.UnmarshalFromString(msg.Payload, &sig); err != nil {
					r.logger.WithError(err).WithField("channel", r.channel).Warn("unable to parse board signal")
					continue
				}
				select {
				case out <- sig:
				case <-done:
					return
				case <-ctx.Done():
					cancel()
					return
				}
			}
		}
	}()

	return out, cancel, nil
}
