package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/balkashynov/kanban/internal/config"
	"github.com/balkashynov/kanban/internal/models"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kanban.log")
	logger, closer, err := New(config.LogConfig{Level: "debug", Format: config.FormatJSON, File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	logger.WithField("task", "abc").Debug("task created")
	if err := closer(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := models.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, data)
	}
	if entry["msg"] != "task created" || entry["task"] != "abc" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kanban.log")
	logger, closer, err := New(config.LogConfig{Level: "warn", Format: config.FormatText, File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	_ = closer()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Fatalf("unexpected log output: %s", data)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "chatty", File: Stderr}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
