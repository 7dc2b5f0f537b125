package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <task-id>",
	Short: "Archive a task",
	Args:  cobra.ExactArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		column, task, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := a.store.Archive(cmd.Context(), task.ID, column); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗃️  Archived task %s from %s: %s\n", shortID(task.ID), column, task.Title)
		return nil
	}),
}

var restoreCmd = &cobra.Command{
	Use:     "restore <task-id>",
	Aliases: []string{"unarchive"},
	Short:   "Restore an archived task to todo",
	Args:    cobra.ExactArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		_, task, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := a.store.Restore(cmd.Context(), task.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📤 Restored task %s to todo: %s\n", shortID(task.ID), task.Title)
		return nil
	}),
}

var rmCmd = &cobra.Command{
	Use:     "rm <task-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task and its history",
	Args:    cobra.ExactArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		column, task, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := a.store.Delete(cmd.Context(), task.ID, column); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted task %s: %s\n", shortID(task.ID), task.Title)
		return nil
	}),
}
