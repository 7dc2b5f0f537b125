package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <task-id>",
	Short: "Show the change log of a task",
	Long: `Show the recorded changes of a task, newest first.

Each entry holds the task as it was before the change, so titles and
deadlines shown here are the values that were replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		column, task, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printTask(out, column, task, a.store.Now())
		entries := a.store.History(task.ID)
		if len(entries) == 0 {
			fmt.Fprintln(out, "\nNo history recorded.")
			return nil
		}

		fmt.Fprintf(out, "\nHistory (%d):\n", len(entries))
		for _, e := range entries {
			fmt.Fprintf(out, "  %s  %-14s %-8s %s\n",
				e.At.Local().Format("02/01/2006 15:04:05"),
				e.Action,
				e.Column,
				e.Snapshot.Title)
		}
		return nil
	}),
}
