package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "board"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for missing key, got %v", err)
	}
	if err := kv.Set(ctx, "board", []byte(`{"todo":[]}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "board", []byte(`{"todo":[1]}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := kv.Get(ctx, "board")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"todo":[1]}` {
		t.Fatalf("unexpected value: %s", got)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemoryKVReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	if err := m.Set(ctx, "k", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'x'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %s", got)
	}
}

func TestSQLiteKV(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "kanban.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	exerciseKV(t, store)
}

func TestSQLiteKVPersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kanban.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := first.Set(ctx, "board", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	got, err := second.Get(ctx, "board")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("unexpected value after reopen: %s", got)
	}
}

func TestRedisKV(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	kv := NewRedis(client)
	exerciseKV(t, kv)

	if ttl := mr.TTL("board"); ttl != 0 {
		t.Fatalf("board key should not expire, ttl=%v", ttl)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close of borrowed client: %v", err)
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("borrowed client should stay open: %v", err)
	}
}

func TestDialRedisFailsWithoutServer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := DialRedis(context.Background(), &redis.Options{Addr: addr, MaxRetries: -1}); err == nil {
		t.Fatalf("expected dial error for closed server")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, Options{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := mem.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", mem)
	}

	lite, err := Open(ctx, Options{Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "kanban.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = lite.Close() })
	exerciseKV(t, lite)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rkv, err := Open(ctx, Options{Backend: BackendRedis, Redis: &redis.Options{Addr: mr.Addr()}})
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	t.Cleanup(func() { _ = rkv.Close() })
	exerciseKV(t, rkv)

	if _, err := Open(ctx, Options{Backend: "etcd"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := Open(ctx, Options{Backend: BackendRedis}); err == nil {
		t.Fatalf("expected error without redis options")
	}
}
