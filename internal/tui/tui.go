package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/filter"
	"github.com/balkashynov/kanban/internal/models"
)

// RunForm starts the interactive task form and prints the outcome once it closes
func RunForm(values FormValues, editing bool, submit SubmitFunc) (FormModel, error) {
	p := tea.NewProgram(NewFormModel(values, editing, submit), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return FormModel{}, err
	}

	m, _ := finalModel.(FormModel)
	if s := m.summary(); s != "" {
		fmt.Println(s)
	}
	return m, nil
}

// RunBoard shows the board until the user quits. When coordinator is set,
// writes from other processes are pushed into the view while it runs.
func RunBoard(ctx context.Context, store *board.Store, coordinator *board.Coordinator, query filter.Query) error {
	p := tea.NewProgram(NewBoardModel(store, query), tea.WithAltScreen(), tea.WithContext(ctx))

	if coordinator != nil {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		coordinator.OnReplace = func(b models.Board) { p.Send(BoardChangedMsg{Board: b}) }
		if _, err := coordinator.Start(ctx); err != nil {
			return err
		}
	}

	_, err := p.Run()
	return err
}
