// Package config loads ~/.kanban/config.yaml. A missing file means defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the per-user directory holding the database, config and logs
	AppDir = ".kanban"

	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	BroadcastNone  = "none"
	BroadcastLocal = "local"
	BroadcastRedis = "redis"

	FormatText = "text"
	FormatJSON = "json"
)

// Config is the full configuration file
type Config struct {
	Storage   StorageConfig  `yaml:"storage"`
	Redis     RedisConfig    `yaml:"redis"`
	Sync      SyncConfig     `yaml:"sync"`
	Reminders ReminderConfig `yaml:"reminders"`
	Board     BoardConfig    `yaml:"board"`
	Log       LogConfig      `yaml:"log"`
}

// StorageConfig selects where the board is persisted
type StorageConfig struct {
	Backend    string   `yaml:"backend"`
	Path       string   `yaml:"path,omitempty"` // sqlite file, empty means ~/.kanban/kanban.db
	Key        string   `yaml:"key"`
	LegacyKeys []string `yaml:"legacy_keys"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// SyncConfig controls change signals between processes sharing the board
type SyncConfig struct {
	Broadcast string        `yaml:"broadcast"`
	Source    string        `yaml:"source,omitempty"` // empty picks a random id per process
	Interval  time.Duration `yaml:"interval"`         // storage poll for long-running views, 0 disables
}

type ReminderConfig struct {
	Interval    time.Duration `yaml:"interval"`
	HorizonDays int           `yaml:"horizon_days"`
}

type BoardConfig struct {
	HistoryLimit int            `yaml:"history_limit"`
	Seed         bool           `yaml:"seed"`
	WIPLimits    map[string]int `yaml:"wip_limits"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"` // empty means ~/.kanban/logs/kanban.log, "-" means stderr
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			Key:        "kanban-board-v3",
			LegacyKeys: []string{"kanban-board-v2", "kanban-board-v1"},
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Channel: "kanban:board",
		},
		Sync: SyncConfig{Broadcast: BroadcastLocal, Interval: 2 * time.Second},
		Reminders: ReminderConfig{
			Interval:    time.Minute,
			HorizonDays: 7,
		},
		Board: BoardConfig{
			HistoryLimit: 20,
			Seed:         true,
			WIPLimits:    map[string]int{"todo": 10, "doing": 3},
		},
		Log: LogConfig{Level: "info", Format: FormatText},
	}
}

// HomeDir returns ~/.kanban
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	return filepath.Join(home, AppDir), nil
}

// DefaultPath returns ~/.kanban/config.yaml
func DefaultPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LogsDir returns ~/.kanban/logs
func LogsDir() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// Load reads the configuration at path, or the default path when empty.
// Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration, creating the parent directory
func (c Config) Save(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv lets KANBAN_* variables override the file
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup("KANBAN_BACKEND"); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup("KANBAN_DB"); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup("KANBAN_REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup("KANBAN_REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := lookup("KANBAN_REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid KANBAN_REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	if v, ok := lookup("KANBAN_SYNC_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid KANBAN_SYNC_INTERVAL: %w", err)
		}
		c.Sync.Interval = d
	}
	if v, ok := lookup("KANBAN_DEBUG"); ok && v != "" && v != "0" && !strings.EqualFold(v, "false") {
		c.Log.Level = "debug"
	}
	c.normalize()
	return c.Validate()
}

func (c *Config) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Storage.Key = strings.TrimSpace(c.Storage.Key)
	if c.Storage.Key == "" {
		c.Storage.Key = Default().Storage.Key
	}
	c.Sync.Broadcast = strings.ToLower(strings.TrimSpace(c.Sync.Broadcast))
	if c.Sync.Broadcast == "" {
		c.Sync.Broadcast = BroadcastNone
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = FormatText
	}
	if c.Board.WIPLimits == nil {
		c.Board.WIPLimits = map[string]int{}
	}
}

// Validate rejects unknown names and out of range numbers
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be sqlite, redis or memory, got %q", c.Storage.Backend)
	}
	switch c.Sync.Broadcast {
	case BroadcastNone, BroadcastLocal, BroadcastRedis:
	default:
		return fmt.Errorf("sync.broadcast must be none, local or redis, got %q", c.Sync.Broadcast)
	}
	if (c.Storage.Backend == BackendRedis || c.Sync.Broadcast == BroadcastRedis) && strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("redis.addr is required when redis is used")
	}
	if c.Sync.Broadcast == BroadcastRedis && strings.TrimSpace(c.Redis.Channel) == "" {
		return fmt.Errorf("redis.channel is required for redis broadcast")
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("sync.interval must not be negative")
	}
	if c.Reminders.Interval <= 0 {
		return fmt.Errorf("reminders.interval must be positive")
	}
	if c.Reminders.HorizonDays < 0 {
		return fmt.Errorf("reminders.horizon_days must not be negative")
	}
	if c.Board.HistoryLimit <= 0 {
		return fmt.Errorf("board.history_limit must be positive")
	}
	for column, limit := range c.Board.WIPLimits {
		if column != "todo" && column != "doing" {
			return fmt.Errorf("board.wip_limits: unknown column %q", column)
		}
		if limit < 0 {
			return fmt.Errorf("board.wip_limits[%s] must not be negative", column)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
