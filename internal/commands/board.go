package commands

import (
	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive board",
	Long: `Open the board in the terminal.

Keys:
  ←/→ h/l       Switch column
  ↑/↓ k/j       Select task
  < >           Move task to the previous or next column
  a             Archive task
  x             Delete task (asks first)
  /             Search
  r             Reload from storage
  q/esc         Quit

Changes made by other kanban processes sharing the board appear automatically:
instantly with sync.broadcast set to redis, otherwise within sync.interval.`,
	Args: cobra.NoArgs,
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		query, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}
		coordinator := board.NewCoordinator(a.store, a.broadcaster, a.logger)
		coordinator.Interval = a.cfg.Sync.Interval
		return tui.RunBoard(cmd.Context(), a.store, coordinator, query)
	}),
}

func init() {
	addFilterFlags(boardCmd)
}
