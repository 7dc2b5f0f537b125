package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/models"
)

var moveCmd = &cobra.Command{
	Use:     "move <task-id> <column>",
	Aliases: []string{"mv"},
	Short:   "Move a task to todo, doing or done",
	Args:    cobra.ExactArgs(2),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		to, err := models.ParseColumn(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", board.ErrValidation, err)
		}
		return moveTask(cmd, a, args[0], to)
	}),
}

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		return moveTask(cmd, a, args[0], models.ColumnDone)
	}),
}

var undoneCmd = &cobra.Command{
	Use:   "undone <task-id>",
	Short: "Move a completed task back to todo",
	Args:  cobra.ExactArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		from, task, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}
		if from != models.ColumnDone {
			return fmt.Errorf("%w: task %s is in %s, not done", board.ErrValidation, shortID(task.ID), from)
		}
		return moveTask(cmd, a, task.ID, models.ColumnTodo)
	}),
}

func moveTask(cmd *cobra.Command, a *app, ref string, to models.Column) error {
	from, task, err := a.store.Resolve(ref)
	if err != nil {
		return err
	}
	if err := a.store.Move(cmd.Context(), task.ID, from, to); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case to == models.ColumnDone && from != models.ColumnDone:
		fmt.Fprintf(out, "✅ Marked task %s as done: %s\n", shortID(task.ID), task.Title)
	case from == to:
		fmt.Fprintf(out, "⬆️  Moved task %s to the top of %s: %s\n", shortID(task.ID), to, task.Title)
	default:
		fmt.Fprintf(out, "➡️  Moved task %s from %s to %s: %s\n", shortID(task.ID), from, to, task.Title)
	}
	return nil
}
