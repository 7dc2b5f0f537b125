package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/models"
	"github.com/balkashynov/kanban/internal/parser"
	"github.com/balkashynov/kanban/internal/tui"
)

var addCmd = &cobra.Command{
	Use:   "add [task title]",
	Short: "Add a new task to todo",
	Long: `Add a new task with optional metadata. New tasks always start in todo.

Modes:
  Interactive: kanban add -i (or just 'kanban add' with no arguments)
  Quick: kanban add "Task title" (with optional flags)
  Smart parsing: kanban add "Fix bug #backend +high due:tomorrow"

Smart parsing syntax:
  #label       - Label (several are joined: #work,urgent)
  +priority    - Priority (low/medium/high or 1/2/3)
  due:3days    - Deadline (yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days, X weeks, +Xd, +Xw)

Flags take precedence over smart syntax.`,
	Args: cobra.ArbitraryArgs,
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		interactive, _ := cmd.Flags().GetBool("interactive")
		now := a.store.Now()

		parsed := parser.ParseTitle(strings.Join(args, " "), now)
		values := tui.FormValues{
			Title:    parsed.Title,
			Label:    parsed.Label,
			Priority: parsed.Priority,
			Deadline: parsed.Deadline,
		}
		if err := applyAddFlags(cmd, &values, now); err != nil {
			return err
		}

		if len(args) == 0 || interactive {
			return runForm(cmd, a, values)
		}
		if len(parsed.Errors) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Found issues with parsing: %s\n", strings.Join(parsed.Errors, ", "))
			fmt.Fprintln(cmd.OutOrStdout(), "Opening interactive mode for confirmation...")
			return runForm(cmd, a, values)
		}

		id, err := a.store.Create(cmd.Context(), board.CreateRequest{
			Title:       values.Title,
			Description: values.Description,
			Label:       values.Label,
			Priority:    values.Priority,
			Deadline:    values.Deadline,
		})
		if err != nil {
			return err
		}
		task, err := a.store.Task(id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Created task %s: %s\n", shortID(task.ID), task.Title)
		if task.Label != "" {
			fmt.Fprintf(out, "  Label: %s\n", task.Label)
		}
		fmt.Fprintf(out, "  Priority: %s\n", task.Priority)
		if due := parser.FormatDeadline(task.Deadline, models.ColumnTodo, now); due != "" {
			fmt.Fprintf(out, "  %s\n", due)
		}
		return nil
	}),
}

// applyAddFlags overrides parsed values with explicit flags
func applyAddFlags(cmd *cobra.Command, values *tui.FormValues, now time.Time) error {
	if label, _ := cmd.Flags().GetString("label"); label != "" {
		values.Label = label
	}
	if priority, _ := cmd.Flags().GetString("priority"); priority != "" {
		p, ok := models.ParsePriority(priority)
		if !ok {
			return fmt.Errorf("%w: invalid priority %q (use low, medium, high, 1, 2 or 3)", board.ErrValidation, priority)
		}
		values.Priority = string(p)
	}
	if due, _ := cmd.Flags().GetString("due"); due != "" {
		deadline, err := parser.ParseDeadline(due, now)
		if err != nil {
			return fmt.Errorf("%w: %v", board.ErrValidation, err)
		}
		values.Deadline = deadline
	}
	if desc, _ := cmd.Flags().GetString("desc"); desc != "" {
		values.Description = desc
	}
	return nil
}

// runForm opens the task form and creates the task when it is saved
func runForm(cmd *cobra.Command, a *app, values tui.FormValues) error {
	_, err := tui.RunForm(values, false, func(v tui.FormValues) (string, error) {
		return a.store.Create(cmd.Context(), board.CreateRequest{
			Title:       v.Title,
			Description: v.Description,
			Label:       v.Label,
			Priority:    v.Priority,
			Deadline:    v.Deadline,
		})
	})
	return err
}

func init() {
	addCmd.Flags().BoolP("interactive", "i", false, "Interactive mode with TUI")
	addCmd.Flags().StringP("label", "l", "", "Label")
	addCmd.Flags().StringP("priority", "p", "", "Priority: low, medium, high, or 1-3")
	addCmd.Flags().StringP("due", "d", "", "Deadline: yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days, +Xd")
	addCmd.Flags().String("desc", "", "Description")
}
