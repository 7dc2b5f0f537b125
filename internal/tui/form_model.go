package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/kanban/internal/models"
	"github.com/balkashynov/kanban/internal/parser"
)

// Step represents the current step in the form
type Step int

const (
	StepTitle Step = iota
	StepDescription
	StepLabel
	StepPriority
	StepDeadline
	StepSave
)

const inputCount = int(StepSave)

// FormValues are the fields a task form edits. Deadline is already
// normalized to YYYY-MM-DD when the form submits.
type FormValues struct {
	Title       string
	Description string
	Label       string
	Priority    string
	Deadline    string
}

// SubmitFunc persists the form and returns the id of the saved task
type SubmitFunc func(FormValues) (string, error)

// FormModel is a step-by-step task form used for both adding and editing
type FormModel struct {
	currentStep Step
	inputs      []textinput.Model
	width       int
	height      int

	initial FormValues
	editing bool
	submit  SubmitFunc
	now     func() time.Time

	// State
	err           error
	completed     bool
	cancelled     bool
	validationErr string
	savedID       string
	savedTitle    string

	// Save confirmation modal
	showSaveModal   bool
	saveModalChoice bool // true for Yes, false for No
}

// NewFormModel creates a form pre-filled with values
func NewFormModel(values FormValues, editing bool, submit SubmitFunc) FormModel {
	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 60
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	inputs[StepTitle].Placeholder = "Enter task title... (required)"
	inputs[StepTitle].CharLimit = 200
	inputs[StepDescription].Placeholder = "Description (Enter to skip)"
	inputs[StepDescription].CharLimit = 500
	inputs[StepLabel].Placeholder = "Label, e.g. work (Enter to skip)"
	inputs[StepLabel].CharLimit = 50
	inputs[StepPriority].Placeholder = "low/medium/high or 1/2/3 (Enter for medium)"
	inputs[StepPriority].CharLimit = 10
	inputs[StepDeadline].Placeholder = "yyyy-mm-dd, dd/mm/yyyy, tomorrow, 3 days, +2w (Enter to skip)"
	inputs[StepDeadline].CharLimit = 50

	inputs[StepTitle].SetValue(values.Title)
	inputs[StepDescription].SetValue(values.Description)
	inputs[StepLabel].SetValue(values.Label)
	inputs[StepPriority].SetValue(values.Priority)
	inputs[StepDeadline].SetValue(values.Deadline)
	inputs[StepTitle].Focus()

	return FormModel{
		currentStep: StepTitle,
		inputs:      inputs,
		initial:     values,
		editing:     editing,
		submit:      submit,
		now:         time.Now,
	}
}

func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputWidth := (m.width * 2 / 3) - 10
		if inputWidth < 30 {
			inputWidth = 30
		}
		if inputWidth > 80 {
			inputWidth = 80
		}
		for i := range m.inputs {
			m.inputs[i].Width = inputWidth
		}
		return m, nil

	case tea.KeyMsg:
		if m.showSaveModal {
			switch msg.String() {
			case "left", "right":
				m.saveModalChoice = !m.saveModalChoice
				return m, nil
			case "y", "Y":
				m.saveModalChoice = true
				return m.handleSaveChoice()
			case "n", "N":
				m.saveModalChoice = false
				return m.handleSaveChoice()
			case "enter":
				return m.handleSaveChoice()
			case "esc":
				m.showSaveModal = false
				return m, nil
			case "ctrl+c":
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit

		case "esc":
			if m.currentStep == StepSave {
				return m.prevStep()
			}
			if !m.hasChanges() {
				m.cancelled = true
				return m, tea.Quit
			}
			m.showSaveModal = true
			m.saveModalChoice = true
			return m, nil

		case "enter":
			return m.handleEnter()

		case "tab", "down":
			if m.currentStep == StepTitle && m.Values().Title == "" {
				m.validationErr = "Task title is required"
				return m, nil
			}
			return m.nextStep()

		case "shift+tab", "up":
			return m.prevStep()
		}
	}

	var cmd tea.Cmd
	if m.currentStep < StepSave {
		m.inputs[m.currentStep], cmd = m.inputs[m.currentStep].Update(msg)
	}
	return m, cmd
}

// Values returns the trimmed input of every field
func (m FormModel) Values() FormValues {
	get := func(s Step) string { return strings.TrimSpace(m.inputs[s].Value()) }
	return FormValues{
		Title:       get(StepTitle),
		Description: get(StepDescription),
		Label:       get(StepLabel),
		Priority:    get(StepPriority),
		Deadline:    get(StepDeadline),
	}
}

// Completed reports whether the form saved a task
func (m FormModel) Completed() bool { return m.completed }

// Cancelled reports whether the user left without saving
func (m FormModel) Cancelled() bool { return m.cancelled }

// Saved returns the id and title of the saved task
func (m FormModel) Saved() (string, string) { return m.savedID, m.savedTitle }

// Err returns the last error from saving
func (m FormModel) Err() error { return m.err }

func (m FormModel) hasChanges() bool {
	return m.Values() != m.initial
}

// handleEnter validates the current field and moves on
func (m FormModel) handleEnter() (FormModel, tea.Cmd) {
	m.validationErr = ""
	v := m.Values()

	switch m.currentStep {
	case StepTitle:
		if v.Title == "" {
			m.validationErr = "Task title is required"
			return m, nil
		}
	case StepPriority:
		if v.Priority != "" {
			if _, ok := models.ParsePriority(v.Priority); !ok {
				m.validationErr = "Invalid priority. Use: low, medium, high, 1, 2, or 3"
				return m, nil
			}
		}
	case StepDeadline:
		if _, err := parser.ParseDeadline(v.Deadline, m.now()); err != nil {
			m.validationErr = "Invalid deadline: " + err.Error()
			return m, nil
		}
	case StepSave:
		return m.save()
	}
	return m.nextStep()
}

func (m FormModel) nextStep() (FormModel, tea.Cmd) {
	if m.currentStep < StepSave {
		m.inputs[m.currentStep].Blur()
		m.currentStep++
		if m.currentStep < StepSave {
			m.inputs[m.currentStep].Focus()
		}
	}
	return m, textinput.Blink
}

func (m FormModel) prevStep() (FormModel, tea.Cmd) {
	if m.currentStep > StepTitle {
		if m.currentStep < StepSave {
			m.inputs[m.currentStep].Blur()
		}
		m.currentStep--
		m.inputs[m.currentStep].Focus()
	}
	return m, textinput.Blink
}

// save normalizes the values and hands them to the submit callback
func (m FormModel) save() (FormModel, tea.Cmd) {
	v := m.Values()
	if v.Title == "" {
		m.validationErr = "Task title is required"
		return m, nil
	}
	deadline, err := parser.ParseDeadline(v.Deadline, m.now())
	if err != nil {
		m.validationErr = "Invalid deadline: " + err.Error()
		return m, nil
	}
	v.Deadline = deadline
	if p, ok := models.ParsePriority(v.Priority); ok {
		v.Priority = string(p)
	}

	id, err := m.submit(v)
	if err != nil {
		m.err = err
		m.validationErr = err.Error()
		return m, nil
	}
	m.completed = true
	m.savedID = id
	m.savedTitle = v.Title
	return m, tea.Quit
}

func (m FormModel) handleSaveChoice() (FormModel, tea.Cmd) {
	m.showSaveModal = false
	if m.saveModalChoice {
		return m.save()
	}
	m.cancelled = true
	return m, tea.Quit
}

// View renders the TUI
func (m FormModel) View() string {
	if m.cancelled || m.completed {
		return ""
	}
	if m.width == 0 {
		return m.renderForm()
	}

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 4

	leftStyle := lipgloss.NewStyle().
		Width(leftWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1)
	rightStyle := lipgloss.NewStyle().
		Width(rightWidth).
		Padding(1)

	mainView := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Render(m.renderForm()),
		" ",
		rightStyle.Render(m.renderPreview()),
	)
	if m.showSaveModal {
		return m.renderSaveModal()
	}
	return mainView
}

var stepLabels = []string{"Title", "Description", "Label", "Priority", "Deadline"}

func (m FormModel) renderForm() string {
	var b strings.Builder

	heading := "➕ New task"
	if m.editing {
		heading = "✏️  Edit task"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentMain)).Render(heading))
	b.WriteString("\n\n")

	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	idle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	for i, label := range stepLabels {
		style := idle
		marker := "  "
		if Step(i) == m.currentStep {
			style = active
			marker = "▸ "
		}
		b.WriteString(style.Render(marker + label))
		b.WriteString("\n")
		b.WriteString("  " + m.inputs[i].View())
		b.WriteString("\n\n")
	}

	save := idle.Render("  [ Save ]")
	if m.currentStep == StepSave {
		save = active.Render("▸ [ Save ]")
	}
	b.WriteString(save)
	b.WriteString("\n")

	if m.validationErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("⚠ " + m.validationErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true).
		Render("enter next · tab/↓ skip · shift+tab/↑ back · esc quit"))
	return b.String()
}

// renderPreview shows the task as it will be saved
func (m FormModel) renderPreview() string {
	v := m.Values()
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).Render("Preview"))
	b.WriteString("\n\n")

	title := v.Title
	if title == "" {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Italic(true).Render("untitled")
	}
	b.WriteString("📋 " + title + "\n")
	if v.Description != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).Render(v.Description))
		b.WriteString("\n")
	}
	if v.Label != "" {
		b.WriteString("Label: " + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Render(v.Label) + "\n")
	}
	priority := models.PriorityMedium
	if p, ok := models.ParsePriority(v.Priority); ok {
		priority = p
	}
	b.WriteString("Priority: " + priorityStyle(priority).Render(string(priority)) + "\n")
	if deadline, err := parser.ParseDeadline(v.Deadline, m.now()); err == nil && deadline != "" {
		b.WriteString(parser.FormatDeadline(deadline, models.ColumnTodo, m.now()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m FormModel) renderSaveModal() string {
	var content strings.Builder
	content.WriteString("Save changes?\n\n")

	yesStyle := lipgloss.NewStyle().Padding(0, 2)
	noStyle := lipgloss.NewStyle().Padding(0, 2)
	if m.saveModalChoice {
		yesStyle = yesStyle.
			Background(lipgloss.Color(ColorAccentBright)).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)
	} else {
		noStyle = noStyle.
			Background(lipgloss.Color(ColorError)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)
	}
	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, yesStyle.Render("Yes"), "   ", noStyle.Render("No")))
	content.WriteString("\n\n")
	content.WriteString("← → or Y/N to choose, Enter to confirm\nEsc to cancel")

	modal := lipgloss.NewStyle().
		Width(50).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentBright)).
		Background(lipgloss.Color(ColorCardBackground)).
		Padding(1).
		Align(lipgloss.Center).
		Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// summary is printed after the program exits
func (m FormModel) summary() string {
	switch {
	case m.cancelled:
		return "❌ Cancelled."
	case m.completed && m.editing:
		return fmt.Sprintf("✏️  Updated task %s: %s", shortID(m.savedID), m.savedTitle)
	case m.completed:
		return fmt.Sprintf("✅ New task \"%s\" added - ID: %s", m.savedTitle, shortID(m.savedID))
	case m.err != nil:
		return fmt.Sprintf("❌ Error: %v", m.err)
	}
	return ""
}
