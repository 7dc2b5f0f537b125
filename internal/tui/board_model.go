package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/kanban/internal/board"
	"github.com/balkashynov/kanban/internal/filter"
	"github.com/balkashynov/kanban/internal/models"
	"github.com/balkashynov/kanban/internal/parser"
)

// BoardChangedMsg tells the board view that another process rewrote the board
type BoardChangedMsg struct {
	Board models.Board
}

// Focus represents what UI element has focus
type Focus int

const (
	FocusBoard Focus = iota
	FocusSearch
	FocusConfirm
)

// BoardModel shows the three board columns side by side
type BoardModel struct {
	width  int
	height int

	store    *board.Store
	snapshot models.Board
	query    filter.Query

	column   int // index into models.BoardColumns
	selected []int

	focus  Focus
	search textinput.Model

	status string
	err    error
}

// NewBoardModel creates a board view over store
func NewBoardModel(store *board.Store, query filter.Query) BoardModel {
	search := textinput.New()
	search.Placeholder = "title, description or label"
	search.Prompt = "Search: "
	search.CharLimit = 100
	search.SetValue(query.Search)

	return BoardModel{
		store:    store,
		snapshot: store.Snapshot(),
		query:    query,
		selected: make([]int, len(models.BoardColumns)),
		focus:    FocusBoard,
		search:   search,
	}
}

func (m BoardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case BoardChangedMsg:
		m.snapshot = msg.Board
		m.status = "🔄 Board updated elsewhere"
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case FocusSearch:
			return m.handleSearchKeys(msg)
		case FocusConfirm:
			return m.handleConfirmKeys(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "esc":
			if m.query.Search != "" {
				m.query.Search = ""
				m.search.SetValue("")
				m.clampSelection()
				return m, nil
			}
			return m, tea.Quit

		case "left", "h":
			if m.column > 0 {
				m.column--
			}
			return m, nil

		case "right", "l":
			if m.column < len(models.BoardColumns)-1 {
				m.column++
			}
			return m, nil

		case "up", "k":
			if m.selected[m.column] > 0 {
				m.selected[m.column]--
			}
			return m, nil

		case "down", "j":
			if m.selected[m.column] < len(m.visible(m.column))-1 {
				m.selected[m.column]++
			}
			return m, nil

		case ">", "shift+right":
			return m.moveSelected(1), nil

		case "<", "shift+left":
			return m.moveSelected(-1), nil

		case "a":
			return m.archiveSelected(), nil

		case "x":
			if _, ok := m.current(); ok {
				m.focus = FocusConfirm
			}
			return m, nil

		case "/":
			m.focus = FocusSearch
			m.search.Focus()
			return m, textinput.Blink

		case "r":
			if _, err := m.store.Reconcile(context.Background()); err != nil {
				m.err = err
				return m, nil
			}
			m.refresh("🔄 Reloaded")
			return m, nil
		}
	}
	return m, nil
}

func (m BoardModel) handleSearchKeys(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = FocusBoard
		m.search.Blur()
		m.search.SetValue(m.query.Search)
		return m, nil
	case "enter":
		m.focus = FocusBoard
		m.search.Blur()
		m.query.Search = strings.TrimSpace(m.search.Value())
		m.clampSelection()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m BoardModel) handleConfirmKeys(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	m.focus = FocusBoard
	switch msg.String() {
	case "y", "Y", "enter":
		return m.deleteSelected(), nil
	}
	m.status = "Delete cancelled"
	return m, nil
}

// visible returns the filtered tasks of the i-th board column
func (m BoardModel) visible(i int) []models.Task {
	c := models.BoardColumns[i]
	return filter.Apply(m.snapshot, m.query, m.store.Now(), c)[c]
}

func (m BoardModel) current() (models.Task, bool) {
	tasks := m.visible(m.column)
	idx := m.selected[m.column]
	if idx < 0 || idx >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[idx], true
}

func (m *BoardModel) refresh(status string) {
	m.snapshot = m.store.Snapshot()
	m.status = status
	m.err = nil
	m.clampSelection()
}

func (m *BoardModel) clampSelection() {
	for i := range models.BoardColumns {
		n := len(m.visible(i))
		if m.selected[i] >= n {
			m.selected[i] = n - 1
		}
		if m.selected[i] < 0 {
			m.selected[i] = 0
		}
	}
}

// moveSelected shifts the selected task one column left or right
func (m BoardModel) moveSelected(step int) BoardModel {
	task, ok := m.current()
	if !ok {
		return m
	}
	target := m.column + step
	if target < 0 || target >= len(models.BoardColumns) {
		return m
	}
	from, to := models.BoardColumns[m.column], models.BoardColumns[target]
	if err := m.store.Move(context.Background(), task.ID, from, to); err != nil {
		m.err = err
		return m
	}
	m.refresh(fmt.Sprintf("➡️  Moved \"%s\" to %s", task.Title, to))
	m.column = target
	m.selected[target] = 0
	return m
}

func (m BoardModel) archiveSelected() BoardModel {
	task, ok := m.current()
	if !ok {
		return m
	}
	if err := m.store.Archive(context.Background(), task.ID, models.BoardColumns[m.column]); err != nil {
		m.err = err
		return m
	}
	m.refresh(fmt.Sprintf("🗃️  Archived \"%s\"", task.Title))
	return m
}

func (m BoardModel) deleteSelected() BoardModel {
	task, ok := m.current()
	if !ok {
		return m
	}
	if err := m.store.Delete(context.Background(), task.ID, models.BoardColumns[m.column]); err != nil {
		m.err = err
		return m
	}
	m.refresh(fmt.Sprintf("🗑️  Deleted \"%s\"", task.Title))
	return m
}

// View renders the TUI
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	gap := 1
	colWidth := (m.width - gap*(len(models.BoardColumns)-1)) / len(models.BoardColumns)
	if colWidth < 20 {
		colWidth = 20
	}

	panels := make([]string, 0, len(models.BoardColumns)*2)
	for i := range models.BoardColumns {
		if i > 0 {
			panels = append(panels, strings.Repeat(" ", gap))
		}
		panels = append(panels, m.renderColumn(i, colWidth-2))
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, panels...)

	var footer string
	switch m.focus {
	case FocusSearch:
		footer = m.renderSearchBar()
	case FocusConfirm:
		task, _ := m.current()
		footer = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true).
			Render(fmt.Sprintf("Delete \"%s\"? y/N", task.Title))
	default:
		footer = m.renderHelpBar()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		"",
		content,
		m.renderStatus(),
		footer,
	)
}

func (m BoardModel) renderColumn(i, width int) string {
	column := models.BoardColumns[i]
	tasks := m.visible(i)
	focused := i == m.column

	var b strings.Builder
	header := fmt.Sprintf("%s (%d)", strings.ToUpper(string(column)), len(tasks))
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(columnColors[column])).Render(header))
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).Render("No tasks"))
	}

	// Leave room for header, status and help lines
	maxCards := (m.height - 8) / 4
	if maxCards < 1 {
		maxCards = 1
	}
	start := 0
	if sel := m.selected[i]; sel >= maxCards {
		start = sel - maxCards + 1
	}
	end := start + maxCards
	if end > len(tasks) {
		end = len(tasks)
	}

	now := m.store.Now()
	for idx := start; idx < end; idx++ {
		b.WriteString(m.renderCard(tasks[idx], column, focused && idx == m.selected[i], width-2, now))
		b.WriteString("\n")
	}
	if hidden := len(tasks) - end; hidden > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Render(fmt.Sprintf("… %d more", hidden)))
	}

	border := ColorBorder
	if focused {
		border = ColorAccentMain
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(width).
		Render(b.String())
}

func (m BoardModel) renderCard(task models.Task, column models.Column, selected bool, width int, now time.Time) string {
	var b strings.Builder

	title := truncate(task.Title, width-2)
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	if selected {
		titleStyle = titleStyle.Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	meta := priorityStyle(task.Priority).Render(string(task.Priority))
	if task.Label != "" {
		meta += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Render("#"+task.Label)
	}
	meta += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Render(shortID(task.ID))
	b.WriteString(meta)

	if due := parser.FormatDeadline(task.Deadline, column, now); due != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
		if filter.IsOverdue(task, column, now) {
			style = style.Foreground(lipgloss.Color(ColorError)).Bold(true)
		}
		b.WriteString("\n")
		b.WriteString(style.Render(due))
	}

	card := lipgloss.NewStyle().Padding(0, 1)
	if selected {
		card = card.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(ColorAccentMain))
	}
	return card.Render(b.String())
}

func (m BoardModel) renderStatus() string {
	if m.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("❌ " + m.err.Error())
	}
	if m.query.Search != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).
			Render(fmt.Sprintf("🔍 \"%s\" (esc to clear) %s", m.query.Search, m.status))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(m.status)
}

func (m BoardModel) renderSearchBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render(m.search.View())
}

func (m BoardModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render("←/→ column · ↑/↓ task · </> move · a archive · x delete · / search · r reload · q quit")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// shortID is the id prefix shown in lists; commands accept any unique prefix
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
