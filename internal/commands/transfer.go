package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the board with an exported file",
	Long: `Replace the whole board with the contents of a JSON export.

Older export formats are upgraded on the way in. Use "-" to read from stdin.
Nothing changes when the file is not a valid board.`,
	Args: cobra.ExactArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		if err := a.store.Import(cmd.Context(), data); err != nil {
			return err
		}
		b := a.store.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "📥 Imported %d tasks (%d todo, %d doing, %d done, %d archived)\n",
			b.Count(), len(b.Todo), len(b.Doing), len(b.Done), len(b.Archive))
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the board as JSON",
	Long:  `Write the whole board, history included, as JSON to a file or stdout.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: withBoard(func(cmd *cobra.Command, args []string, a *app) error {
		data, err := a.store.Export()
		if err != nil {
			return err
		}
		if len(args) == 0 || args[0] == "-" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		if err := os.WriteFile(args[0], data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📤 Exported board to %s\n", args[0])
		return nil
	}),
}
