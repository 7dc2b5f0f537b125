package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show comprehensive help for kanban",
	Long:  `Display detailed help for all kanban commands and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			target, _, err := rootCmd.Find(args)
			if err != nil {
				return err
			}
			return target.Help()
		}
		fmt.Fprint(cmd.OutOrStdout(), customHelp)
		return nil
	},
}

const customHelp = `
██╗  ██╗ █████╗ ███╗   ██╗██████╗  █████╗ ███╗   ██╗
██║ ██╔╝██╔══██╗████╗  ██║██╔══██╗██╔══██╗████╗  ██║
█████╔╝ ███████║██╔██╗ ██║██████╔╝███████║██╔██╗ ██║
██╔═██╗ ██╔══██║██║╚██╗██║██╔══██╗██╔══██║██║╚██╗██║
██║  ██╗██║  ██║██║ ╚████║██████╔╝██║  ██║██║ ╚████║
╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═══╝

kanban - terminal task board

COMMANDS:

  add <task>              Create a task in todo with smart parsing
    -l, --label           Label
    -p, --priority        Priority: low|medium|high (or 1-3)
    -d, --due             Deadline (yyyy-mm-dd, dd/mm/yyyy, tomorrow, +5d, 2 weeks)
    --desc                Description
    -i, --interactive     Open the form

    Smart syntax:
      #label        Set label
      +priority     Set priority
      due:+5d       Set deadline (5 days from today)

    Example:
      kanban add "Fix login bug #backend +high due:+2d"

  ls                      List tasks column by column
    -s, --search          Text in title, description or label
    -l, --label           Filter by label
    -p, --priority        Filter by priority
    --status              Filter by column
    --due                 all|none|overdue|today|week
    -a, --archive         Include the archive
    --json                JSON output

  board                   Interactive board
      ←/→           Switch column
      ↑/↓           Select task
      < >           Move task
      a             Archive
      x             Delete
      /             Search
      q/esc         Quit

  move <id> <column>      Move a task to todo, doing or done
  done <id>               Move a task to done
  undone <id>             Move a done task back to todo
  edit <id>               Edit a task (flags or form)
  archive <id>            Archive a task
  restore <id>            Bring an archived task back to todo
  rm <id>                 Delete a task and its history
  history <id>            Show the change log of a task

  search <query>          Search every column, archive included
  stats                   Counts, overdue tasks, lead time, WIP warnings

  export [file]           Write the board as JSON
  import <file>           Replace the board with a JSON export

  remind [--once]         Announce deadlines coming up
  watch                   Print the board whenever another process changes it

  version                 Show version
  help                    Show this help

Task ids can be shortened to any unique prefix.

GLOBAL FLAGS:
  --config <file>         Config file (default ~/.kanban/config.yaml)
  --backend <name>        sqlite, redis or memory
  --debug                 Debug logging

`
