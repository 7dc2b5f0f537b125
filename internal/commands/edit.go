package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/models"
	"github.com/balkashynov/kanban/internal/parser"
	"github.com/balkashynov/kanban/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Edit an existing task",
	Long: `Edit an existing task.

With flags only the given fields change:
  kanban edit 3f2a --priority high --due "+2d"
  kanban edit 3f2a --due ""        clears the deadline

Without flags the task opens in the same form as 'kanban add', pre-filled
with the current values.`,
	Args: cobra.ExactArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		column, task, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}

		changes, err := changesFromFlags(cmd, a)
		if err != nil {
			return err
		}
		if changes.Empty() {
			values := tui.FormValues{
				Title:       task.Title,
				Description: task.Description,
				Label:       task.Label,
				Priority:    string(task.Priority),
				Deadline:    task.Deadline,
			}
			_, err := tui.RunForm(values, true, func(v tui.FormValues) (string, error) {
				return task.ID, a.store.Edit(cmd.Context(), task.ID, column, board.Changes{
					Title:       &v.Title,
					Description: &v.Description,
					Label:       &v.Label,
					Priority:    &v.Priority,
					Deadline:    &v.Deadline,
				})
			})
			return err
		}

		if err := a.store.Edit(cmd.Context(), task.ID, column, changes); err != nil {
			return err
		}
		updated, err := a.store.Task(task.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated task %s\n", shortID(task.ID))
		printTask(cmd.OutOrStdout(), column, updated, a.store.Now())
		return nil
	}),
}

// changesFromFlags collects the fields set on the command line. Values are
// validated here so a typo is reported instead of silently ignored.
func changesFromFlags(cmd *cobra.Command, a *app) (board.Changes, error) {
	var changes board.Changes
	flags := cmd.Flags()

	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		changes.Title = &title
	}
	if flags.Changed("desc") {
		desc, _ := flags.GetString("desc")
		changes.Description = &desc
	}
	if flags.Changed("label") {
		label, _ := flags.GetString("label")
		changes.Label = &label
	}
	if flags.Changed("priority") {
		priority, _ := flags.GetString("priority")
		p, ok := models.ParsePriority(priority)
		if !ok {
			return changes, fmt.Errorf("%w: invalid priority %q (use low, medium, high, 1, 2 or 3)", board.ErrValidation, priority)
		}
		value := string(p)
		changes.Priority = &value
	}
	if flags.Changed("due") {
		due, _ := flags.GetString("due")
		deadline, err := parser.ParseDeadline(due, a.store.Now())
		if err != nil {
			return changes, fmt.Errorf("%w: %v", board.ErrValidation, err)
		}
		changes.Deadline = &deadline
	}
	return changes, nil
}

func init() {
	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().String("desc", "", "New description")
	editCmd.Flags().StringP("label", "l", "", "New label")
	editCmd.Flags().StringP("priority", "p", "", "New priority: low, medium, high, or 1-3")
	editCmd.Flags().StringP("due", "d", "", "New deadline, empty to clear")
}
