package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.Key != "kanban-board-v3" {
		t.Fatalf("unexpected storage defaults: %#v", cfg.Storage)
	}
	if cfg.Reminders.Interval != time.Minute || cfg.Reminders.HorizonDays != 7 {
		t.Fatalf("unexpected reminder defaults: %#v", cfg.Reminders)
	}
	if cfg.Sync.Broadcast != BroadcastLocal || cfg.Sync.Interval != 2*time.Second {
		t.Fatalf("unexpected sync defaults: %#v", cfg.Sync)
	}
	if cfg.Board.HistoryLimit != 20 || !cfg.Board.Seed {
		t.Fatalf("unexpected board defaults: %#v", cfg.Board)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := strings.TrimSpace(`
storage:
  backend: Redis
  key: team-board
redis:
  addr: cache:6379
  db: 2
  channel: team:board
sync:
  broadcast: redis
reminders:
  interval: 90s
board:
  history_limit: 5
  seed: false
  wip_limits:
    doing: 2
log:
  level: debug
  format: json
`)
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Backend != BackendRedis || cfg.Storage.Key != "team-board" {
		t.Fatalf("unexpected storage: %#v", cfg.Storage)
	}
	if len(cfg.Storage.LegacyKeys) != 2 {
		t.Fatalf("legacy keys should keep their default, got %v", cfg.Storage.LegacyKeys)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 2 || cfg.Sync.Broadcast != BroadcastRedis {
		t.Fatalf("unexpected redis settings: %#v %#v", cfg.Redis, cfg.Sync)
	}
	if cfg.Reminders.Interval != 90*time.Second || cfg.Reminders.HorizonDays != 7 {
		t.Fatalf("unexpected reminders: %#v", cfg.Reminders)
	}
	if cfg.Board.HistoryLimit != 5 || cfg.Board.Seed {
		t.Fatalf("unexpected board: %#v", cfg.Board)
	}
	if cfg.Board.WIPLimits["doing"] != 2 || cfg.Board.WIPLimits["todo"] != 10 {
		t.Fatalf("wip limits should merge with defaults, got %v", cfg.Board.WIPLimits)
	}
	if cfg.Log.Format != FormatJSON || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log settings: %#v", cfg.Log)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"backend", "storage:\n  backend: mongo\n", "storage.backend"},
		{"broadcast", "sync:\n  broadcast: carrier-pigeon\n", "sync.broadcast"},
		{"interval", "reminders:\n  interval: 0s\n", "reminders.interval"},
		{"sync interval", "sync:\n  interval: -1s\n", "sync.interval"},
		{"history", "board:\n  history_limit: 0\n", "board.history_limit"},
		{"wip column", "board:\n  wip_limits:\n    done: 1\n", "wip_limits"},
		{"log format", "log:\n  format: xml\n", "log.format"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"redis addr", "storage:\n  backend: redis\nredis:\n  addr: \"\"\n", "redis.addr"},
		{"syntax", "storage: [\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Storage.Backend = BackendMemory
	cfg.Reminders.Interval = 5 * time.Minute
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Storage.Backend != BackendMemory || loaded.Reminders.Interval != 5*time.Minute {
		t.Fatalf("round trip lost values: %#v", loaded)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KANBAN_BACKEND":       "memory",
		"KANBAN_REDIS_ADDR":    "other:6380",
		"KANBAN_REDIS_DB":      "4",
		"KANBAN_DEBUG":         "1",
		"KANBAN_SYNC_INTERVAL": "500ms",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv returned error: %v", err)
	}
	if cfg.Storage.Backend != BackendMemory || cfg.Redis.Addr != "other:6380" || cfg.Redis.DB != 4 || cfg.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.Sync.Interval != 500*time.Millisecond {
		t.Fatalf("expected sync interval from env, got %s", cfg.Sync.Interval)
	}

	env["KANBAN_SYNC_INTERVAL"] = "often"
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Fatalf("expected error for invalid KANBAN_SYNC_INTERVAL")
	}
	env["KANBAN_SYNC_INTERVAL"] = "1s"

	env["KANBAN_REDIS_DB"] = "two"
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Fatalf("expected error for invalid KANBAN_REDIS_DB")
	}
}
