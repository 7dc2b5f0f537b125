package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/filter"
	"github.com/balkashynov/kanban/internal/models"
	"github.com/balkashynov/kanban/internal/parser"
	"github.com/balkashynov/kanban/internal/reminder"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Announce tasks whose deadline is coming up",
	Long: `Check todo and doing for deadlines within the reminder horizon
(reminders.horizon_days, 7 by default). Every task is announced once per
deadline; changing the deadline makes it eligible again.

Without --once the check repeats every reminders.interval until interrupted.`,
	Args: cobra.NoArgs,
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		scheduler := reminder.New(a.store, a.alerter(cmd), a.cfg.Reminders.Interval, a.logger)

		if once, _ := cmd.Flags().GetBool("once"); once {
			due, err := scheduler.Tick(cmd.Context())
			if err != nil {
				return err
			}
			if len(due) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "🔕 Nothing new is due soon.")
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "⏰ Checking deadlines every %s (ctrl+c to stop)\n", scheduler.Interval)
		return scheduler.Run(ctx)
	}),
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the board and print it whenever it changes",
	Long: `Follow changes made by other kanban processes sharing the board and print the
board after each one. Deadline reminders run alongside.

With sync.broadcast set to redis updates arrive as they happen; otherwise the
stored board is polled every sync.interval.`,
	Args: cobra.NoArgs,
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		coordinator := board.NewCoordinator(a.store, a.broadcaster, a.logger)
		coordinator.Interval = a.cfg.Sync.Interval
		coordinator.OnReplace = func(b models.Board) {
			now := a.store.Now()
			fmt.Fprintf(out, "\n🔄 Board changed at %s\n", now.Format("15:04:05"))
			printColumns(out, models.BoardColumns, filter.Apply(b, filter.Query{}, now), now)
		}
		done, err := coordinator.Start(ctx)
		if err != nil {
			return err
		}

		now := a.store.Now()
		printColumns(out, models.BoardColumns, filter.Apply(a.store.Snapshot(), filter.Query{}, now), now)
		fmt.Fprintln(out, "\n👀 Watching for changes (ctrl+c to stop)")

		scheduler := reminder.New(a.store, a.alerter(cmd), a.cfg.Reminders.Interval, a.logger)
		if err := scheduler.Run(ctx); err != nil {
			return err
		}
		return <-done
	}),
}

// alerter prints reminders and records them in the log
func (a *app) alerter(cmd *cobra.Command) reminder.Alerter {
	logAlerter := reminder.LogAlerter{Logger: a.logger}
	out := cmd.OutOrStdout()
	return reminder.AlertFunc(func(t models.Task) {
		fmt.Fprintf(out, "⏰ %s  %s\n", t.Title, parser.FormatDeadline(t.Deadline, models.ColumnTodo, a.store.Now()))
		logAlerter.Alert(t)
	})
}

func init() {
	remindCmd.Flags().Bool("once", false, "Check once and exit")
}
