package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned by Get when nothing is stored under the key
var ErrKeyNotFound = errors.New("key not found")

// KV is the persistent key-value store the board is saved into
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Memory is an in-process KV. Several stores may share one Memory to simulate
// two sessions on the same persisted state.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error { return nil }

// Backends accepted by Open
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend for Open
type Options struct {
	Backend string
	Path    string         // sqlite file
	Redis   *redis.Options // redis connection
}

// Open creates the KV backend named in opts
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		s, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis backend needs connection options")
		}
		r, err := DialRedis(ctx, opts.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", opts.Redis.Addr, err)
		}
		return r, nil
	case BackendMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
}
