package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/broadcast"
	"github.com/balkashynov/kanban/internal/config"
	"github.com/balkashynov/kanban/internal/db"
	"github.com/balkashynov/kanban/internal/logging"
	"github.com/balkashynov/kanban/internal/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "kanban",
	Short: "A terminal kanban board",
	Long: `kanban keeps a personal task board with todo, doing and done columns plus an archive.
Tasks carry a label, a priority and an optional deadline. Several terminals can
share one board: every change starts from the latest stored board, and open
views pick up changes made elsewhere.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kanban %s (commit %s, built %s)\n", version, commit, date)
	},
}

// app holds everything a command needs to work on the board
type app struct {
	cfg         config.Config
	logger      *log.Logger
	kv          db.KV
	broadcaster broadcast.Broadcaster
	store       *board.Store
	closers     []func() error
}

// openApp loads configuration and opens the board it points at
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	redisOpts := &redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	kv, err := db.Open(ctx, db.Options{Backend: cfg.Storage.Backend, Path: cfg.Storage.Path, Redis: redisOpts})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.kv = kv
	a.closers = append(a.closers, kv.Close)

	a.broadcaster, err = a.openBroadcaster(ctx, redisOpts)
	if err != nil {
		a.Close()
		return nil, err
	}

	limit := cfg.Board.HistoryLimit
	opts := []board.Option{
		board.WithKey(cfg.Storage.Key),
		board.WithLegacyKeys(cfg.Storage.LegacyKeys...),
		board.WithHistoryLimit(limit),
		board.WithHorizonDays(cfg.Reminders.HorizonDays),
		board.WithSeed(cfg.Board.Seed),
		board.WithLogger(logger),
		board.WithBroadcaster(a.broadcaster),
	}
	if cfg.Sync.Source != "" {
		opts = append(opts, board.WithSource(cfg.Sync.Source))
	}
	a.store = board.New(kv, opts...)
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	logger.WithFields(log.Fields{
		"backend": cfg.Storage.Backend,
		"key":     cfg.Storage.Key,
		"source":  a.store.Source(),
	}).Debug("board opened")
	return a, nil
}

// openBroadcaster picks the change signal transport. A redis KV shares its
// client with the broadcaster.
func (a *app) openBroadcaster(ctx context.Context, opts *redis.Options) (broadcast.Broadcaster, error) {
	switch a.cfg.Sync.Broadcast {
	case config.BroadcastRedis:
		var client *redis.Client
		if r, ok := a.kv.(*db.Redis); ok {
			client = r.Client()
		} else {
			conn, err := db.DialRedis(ctx, opts)
			if err != nil {
				return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
			}
			a.closers = append(a.closers, conn.Close)
			client = conn.Client()
		}
		return broadcast.NewRedis(client, a.cfg.Redis.Channel, a.logger), nil
	case config.BroadcastLocal:
		return broadcast.NewBus(), nil
	default:
		return broadcast.Nop{}, nil
	}
}

// Close releases storage and log handles in reverse order
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) wipLimits() board.WIPLimits {
	limits := make(board.WIPLimits, len(a.cfg.Board.WIPLimits))
	for name, n := range a.cfg.Board.WIPLimits {
		if c, err := models.ParseColumn(name); err == nil {
			limits[c] = n
		}
	}
	return limits
}

// withBoard wraps a command function to open the board first
func withBoard(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.kanban/config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: sqlite, redis or memory")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
