package db

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries as plain string keys on a Redis server
type Redis struct {
	client *redis.Client
	owned  bool
}

// NewRedis wraps an existing client. The caller keeps ownership of the client.
func NewRedis(client *redis.Client) *Redis {
	if client == nil {
		panic("db.NewRedis: client is nil")
	}
	return &Redis{client: client}
}

// DialRedis creates a client from options and checks the connection
func DialRedis(ctx context.Context, opts *redis.Options) (*Redis, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, owned: true}, nil
}

// Client exposes the underlying client so pub/sub can share the connection pool
func (r *Redis) Client() *redis.Client {
	return r.client
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
