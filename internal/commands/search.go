package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/kanban/internal/filter"
	"github.com/balkashynov/kanban/internal/models"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tasks in every column",
	Long: `Search tasks, archive included.

Matching is case insensitive and looks at the title, description and label.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		query := strings.Join(args, " ")
		now := a.store.Now()
		tasks := filter.Apply(a.store.Snapshot(), filter.Query{Search: query}, now, models.AllColumns...)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return renderSearchJSON(cmd, query, tasks)
		}

		out := cmd.OutOrStdout()
		found := 0
		for _, c := range models.AllColumns {
			for _, t := range tasks[c] {
				if found == 0 {
					fmt.Fprintf(out, "🔍 Results for \"%s\":\n", query)
				}
				found++
				fmt.Fprintf(out, "  [%s]", c)
				printTaskLine(out, c, t, now)
			}
		}
		if found == 0 {
			fmt.Fprintf(out, "No tasks match \"%s\".\n", query)
		}
		return nil
	}),
}

// searchResult is one task in the JSON output
type searchResult struct {
	Column models.Column `json:"column"`
	models.Task
}

func renderSearchJSON(cmd *cobra.Command, query string, tasks map[models.Column][]models.Task) error {
	results := []searchResult{}
	for _, c := range models.AllColumns {
		for _, t := range tasks[c] {
			results = append(results, searchResult{Column: c, Task: t})
		}
	}
	return writeJSON(cmd.OutOrStdout(), struct {
		Query   string         `json:"query"`
		Count   int            `json:"count"`
		Results []searchResult `json:"results"`
	}{query, len(results), results})
}

func init() {
	searchCmd.Flags().Bool("json", false, "JSON output")
}
