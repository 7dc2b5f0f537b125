// Package logging builds the logrus logger used by the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/balkashynov/kanban/internal/config"
)

// Stderr as the log file sends entries to the terminal
const Stderr = "-"

// New creates a logger from cfg. The returned func closes the log file, if any.
func New(cfg config.LogConfig) (*log.Logger, func() error, error) {
	logger := log.New()

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case config.FormatJSON:
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: cfg.File != Stderr})
	}

	out, closer, err := openOutput(cfg.File)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(out)
	return logger, closer, nil
}

func openOutput(file string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if file == Stderr {
		return os.Stderr, noop, nil
	}
	if file == "" {
		dir, err := config.LogsDir()
		if err != nil {
			return nil, nil, err
		}
		file = filepath.Join(dir, "kanban.log")
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}
