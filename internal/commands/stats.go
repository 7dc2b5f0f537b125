package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the board",
	Args:  cobra.NoArgs,
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		sum := board.Stats(a.store.Snapshot(), a.store.Now(), a.wipLimits())
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "📊 Board summary")
		for _, c := range models.AllColumns {
			fmt.Fprintf(out, "  %-8s %d\n", c, sum.Counts[c])
		}
		fmt.Fprintf(out, "\n  Overdue:              %d\n", sum.Overdue)
		fmt.Fprintf(out, "  Due within a week:    %d\n", sum.DueSoon)
		fmt.Fprintf(out, "  Completed last week:  %d\n", sum.CompletedLastWeek)
		if sum.LeadTimeSamples > 0 {
			fmt.Fprintf(out, "  Average lead time:    %s (%d tasks)\n", formatDuration(sum.AverageLeadTime), sum.LeadTimeSamples)
		}
		for _, w := range sum.Warnings {
			fmt.Fprintf(out, "⚠️  %s\n", w)
		}
		return nil
	}),
}

func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour {
		days := int(d / (24 * time.Hour))
		hours := int((d % (24 * time.Hour)) / time.Hour)
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return d.Round(time.Minute).String()
}
