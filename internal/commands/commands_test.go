package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/models"
)

// writeConfig points the CLI at a fresh sqlite board in a temp dir
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := `storage:
  backend: sqlite
  path: ` + filepath.Join(dir, "kanban.db") + `
sync:
  broadcast: none
board:
  seed: false
log:
  level: error
  file: "-"
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", config}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, config string, args ...string) string {
	t.Helper()
	out, err := run(t, config, args...)
	if err != nil {
		t.Fatalf("kanban %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func listJSON(t *testing.T, config string, args ...string) map[string][]models.Task {
	t.Helper()
	out := mustRun(t, config, append([]string{"ls", "--json"}, args...)...)
	var columns map[string][]models.Task
	if err := models.Unmarshal([]byte(out), &columns); err != nil {
		t.Fatalf("decode ls output: %v\n%s", err, out)
	}
	return columns
}

func TestAddParsesSmartSyntax(t *testing.T) {
	config := writeConfig(t)
	out := mustRun(t, config, "add", "Pay rent #home +high due:2026-12-01")
	if !strings.Contains(out, "Created task") {
		t.Fatalf("unexpected output %q", out)
	}

	columns := listJSON(t, config)
	if len(columns["todo"]) != 1 {
		t.Fatalf("expected one todo task, got %+v", columns)
	}
	task := columns["todo"][0]
	if task.Title != "Pay rent" || task.Label != "home" || task.Priority != models.PriorityHigh || task.Deadline != "2026-12-01" {
		t.Fatalf("unexpected task %+v", task)
	}
	if _, ok := columns["archive"]; ok {
		t.Fatalf("archive should only be listed with --archive")
	}
}

func TestFlagsOverrideSmartSyntax(t *testing.T) {
	config := writeConfig(t)
	mustRun(t, config, "add", "Water plants +low", "--priority", "3", "--label", "garden", "--desc", "balcony too")

	task := listJSON(t, config)["todo"][0]
	if task.Priority != models.PriorityHigh || task.Label != "garden" || task.Description != "balcony too" {
		t.Fatalf("flags should win: %+v", task)
	}
}

func TestTaskLifecycle(t *testing.T) {
	config := writeConfig(t)
	mustRun(t, config, "add", "Write report")
	id := listJSON(t, config)["todo"][0].ID
	prefix := id[:6]

	mustRun(t, config, "move", prefix, "doing")
	if got := listJSON(t, config)["doing"]; len(got) != 1 || got[0].ID != id {
		t.Fatalf("expected task in doing, got %+v", got)
	}

	out := mustRun(t, config, "done", prefix)
	if !strings.Contains(out, "as done") {
		t.Fatalf("unexpected done output %q", out)
	}
	done := listJSON(t, config)["done"]
	if len(done) != 1 || done[0].DoneAt == nil {
		t.Fatalf("expected completed task, got %+v", done)
	}

	mustRun(t, config, "edit", prefix, "--title", "Write final report", "--due", "2026-11-30")
	if got := listJSON(t, config)["done"][0]; got.Title != "Write final report" || got.Deadline != "2026-11-30" {
		t.Fatalf("edit not applied: %+v", got)
	}

	mustRun(t, config, "archive", prefix)
	columns := listJSON(t, config, "--archive")
	if len(columns["done"]) != 0 || len(columns["archive"]) != 1 {
		t.Fatalf("expected archived task, got %+v", columns)
	}

	mustRun(t, config, "restore", prefix)
	if got := listJSON(t, config)["todo"]; len(got) != 1 || got[0].ArchivedAt != nil {
		t.Fatalf("expected restored task in todo, got %+v", got)
	}

	history := mustRun(t, config, "history", prefix)
	for _, action := range []string{"created", "todo->doing", "doing->done", "edited", "archived", "restored"} {
		if !strings.Contains(history, action) {
			t.Fatalf("history is missing %q:\n%s", action, history)
		}
	}

	mustRun(t, config, "rm", prefix)
	if got := listJSON(t, config, "--archive"); len(got["todo"])+len(got["archive"]) != 0 {
		t.Fatalf("expected empty board, got %+v", got)
	}
}

func TestUndoneRequiresDoneTask(t *testing.T) {
	config := writeConfig(t)
	mustRun(t, config, "add", "Call bank")
	id := listJSON(t, config)["todo"][0].ID

	if _, err := run(t, config, "undone", id); !errors.Is(err, board.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	mustRun(t, config, "done", id)
	mustRun(t, config, "undone", id)
	if got := listJSON(t, config)["todo"]; len(got) != 1 {
		t.Fatalf("expected task back in todo, got %+v", got)
	}
}

func TestCommandErrors(t *testing.T) {
	config := writeConfig(t)
	mustRun(t, config, "add", "Something")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown task", []string{"done", "zzzz"}, board.ErrNotFound},
		{"unknown column", []string{"move", "zzzz", "later"}, board.ErrValidation},
		{"bad priority", []string{"add", "x", "--priority", "urgent"}, board.ErrValidation},
		{"bad deadline filter", []string{"ls", "--due", "soon"}, board.ErrValidation},
		{"bad edit deadline", []string{"edit", "zzzz", "--due", "someday"}, board.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, config, tt.args...); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFilteredList(t *testing.T) {
	config := writeConfig(t)
	mustRun(t, config, "add", "Buy milk #shopping +low")
	mustRun(t, config, "add", "Fix bike #home +high")

	got := listJSON(t, config, "--label", "shop")["todo"]
	if len(got) != 1 || got[0].Title != "Buy milk" {
		t.Fatalf("label filter: %+v", got)
	}
	got = listJSON(t, config, "--priority", "high")["todo"]
	if len(got) != 1 || got[0].Title != "Fix bike" {
		t.Fatalf("priority filter: %+v", got)
	}

	out := mustRun(t, config, "search", "MILK")
	if !strings.Contains(out, "Buy milk") || strings.Contains(out, "Fix bike") {
		t.Fatalf("unexpected search output:\n%s", out)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	config := writeConfig(t)
	mustRun(t, config, "add", "Keep me #archive-test")
	file := filepath.Join(t.TempDir(), "board.json")
	mustRun(t, config, "export", file)
	before := listJSON(t, config)

	other := writeConfig(t)
	out := mustRun(t, other, "import", file)
	if !strings.Contains(out, "Imported 1 tasks") {
		t.Fatalf("unexpected import output %q", out)
	}
	after := listJSON(t, other)
	if after["todo"][0].ID != before["todo"][0].ID {
		t.Fatalf("import changed the task: %+v vs %+v", after["todo"], before["todo"])
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"todo": "nope"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, other, "import", bad); !errors.Is(err, board.ErrImport) {
		t.Fatalf("expected import error, got %v", err)
	}
	if got := listJSON(t, other); len(got["todo"]) != 1 {
		t.Fatalf("failed import must not change the board: %+v", got)
	}
}

func TestRemindOnce(t *testing.T) {
	config := writeConfig(t)
	mustRun(t, config, "add", "Renew passport due:tomorrow")
	mustRun(t, config, "add", "Someday task")

	out := mustRun(t, config, "remind", "--once")
	if !strings.Contains(out, "Renew passport") || strings.Contains(out, "Someday task") {
		t.Fatalf("unexpected reminders:\n%s", out)
	}
	out = mustRun(t, config, "remind", "--once")
	if !strings.Contains(out, "Nothing new") {
		t.Fatalf("reminder should fire only once:\n%s", out)
	}
}

func TestStatsAndVersion(t *testing.T) {
	config := writeConfig(t)
	mustRun(t, config, "add", "Late task due:2020-01-01")

	out := mustRun(t, config, "stats")
	if !strings.Contains(out, "Board summary") || !strings.Contains(out, "Overdue:              1") {
		t.Fatalf("unexpected stats:\n%s", out)
	}

	SetVersion("1.2.3", "abc", "today")
	if out := mustRun(t, config, "version"); !strings.Contains(out, "kanban 1.2.3") {
		t.Fatalf("unexpected version %q", out)
	}
	if out := mustRun(t, config, "help"); !strings.Contains(out, "terminal task board") {
		t.Fatalf("unexpected help output")
	}
}
