package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/kanban/internal/models"
)

// Color constants for the kanban TUI theme
const (
	// Base Colors
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorDisabledText  = "#6D7383"
	ColorPlaceholder   = "#B1B8C7"
	ColorHelpText      = "240" // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, active borders
	ColorAccentBright = "#A78BFA" // Highlights, current step

	// State Colors
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)

// columnColors gives each column header its own accent
var columnColors = map[models.Column]string{
	models.ColumnTodo:    ColorSecondaryText,
	models.ColumnDoing:   ColorWarning,
	models.ColumnDone:    ColorSuccess,
	models.ColumnArchive: ColorDisabledText,
}

func priorityStyle(p models.Priority) lipgloss.Style {
	color := ColorSecondaryText
	switch p {
	case models.PriorityHigh:
		color = ColorError
	case models.PriorityMedium:
		color = ColorWarning
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
