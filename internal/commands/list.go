package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/filter"
	"github.com/balkashynov/kanban/internal/models"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks by column",
	Long: `List the board column by column.

Filters combine with AND:
  --search     text in title, description or label
  --label      label contains the text
  --priority   low, medium, high (or 1-3)
  --status     todo, doing, done or archive
  --due        all, none, overdue, today or week`,
	Args: cobra.NoArgs,
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		query, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}
		withArchive, _ := cmd.Flags().GetBool("archive")
		columns := models.BoardColumns
		if withArchive || strings.EqualFold(query.Status, string(models.ColumnArchive)) {
			columns = models.AllColumns
		}

		now := a.store.Now()
		tasks := filter.Apply(a.store.Snapshot(), query, now, columns...)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), byColumnName(columns, tasks))
		}

		total := 0
		for _, c := range columns {
			total += len(tasks[c])
		}
		if total == 0 && query == (filter.Query{Deadline: filter.DeadlineAll}) {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks found. Use 'kanban add \"task title\"' to create your first task.")
			return nil
		}
		printColumns(cmd.OutOrStdout(), columns, tasks, now)
		return nil
	}),
}

// queryFromFlags builds a filter query from the shared filter flags
func queryFromFlags(cmd *cobra.Command) (filter.Query, error) {
	search, _ := cmd.Flags().GetString("search")
	label, _ := cmd.Flags().GetString("label")
	priority, _ := cmd.Flags().GetString("priority")
	status, _ := cmd.Flags().GetString("status")
	due, _ := cmd.Flags().GetString("due")

	deadline, err := filter.ParseDeadlineFilter(due)
	if err != nil {
		return filter.Query{}, fmt.Errorf("%w: %v", board.ErrValidation, err)
	}
	if status != "" && status != filter.Wildcard {
		if _, err := models.ParseColumn(status); err != nil {
			return filter.Query{}, fmt.Errorf("%w: %v", board.ErrValidation, err)
		}
	}
	if priority != "" && priority != filter.Wildcard {
		if _, ok := models.ParsePriority(priority); !ok {
			return filter.Query{}, fmt.Errorf("%w: invalid priority %q", board.ErrValidation, priority)
		}
	}
	return filter.Query{
		Search:   search,
		Label:    label,
		Priority: priority,
		Status:   status,
		Deadline: deadline,
	}, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Search title, description and label")
	cmd.Flags().StringP("label", "l", "", "Filter by label")
	cmd.Flags().StringP("priority", "p", "", "Filter by priority")
	cmd.Flags().String("status", "", "Filter by column")
	cmd.Flags().String("due", "", "Filter by deadline: all, none, overdue, today, week")
}

func init() {
	addFilterFlags(listCmd)
	listCmd.Flags().BoolP("archive", "a", false, "Include archived tasks")
	listCmd.Flags().Bool("json", false, "JSON output")
}
