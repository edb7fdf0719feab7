package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/josephgoksu/backlog/models"
)

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow
	ColorText      = lipgloss.Color("252") // White/Gray
	ColorCyan      = lipgloss.Color("87")  // Cyan for remote copies
	ColorBlue      = lipgloss.Color("75")  // Blue for sequence numbers

	// Base Styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)
	StyleRemote  = lipgloss.NewStyle().Foreground(ColorCyan).Italic(true)

	// Components
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	StyleSequence = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)

	// Board columns
	StyleColumn = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	StyleColumnFocused = StyleColumn.
				BorderForeground(ColorPrimary)

	// Selection lists
	StyleSelectTitle  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSelectNormal = lipgloss.NewStyle().Foreground(ColorText)
	StyleSelectActive = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSelectBadge  = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleSelectDim    = lipgloss.NewStyle().Foreground(ColorSecondary)
)

// Icon returns a styled icon string
func Icon(icon string, style lipgloss.Style) string {
	return style.Render(icon)
}

// StatusStyle colors a status by its position in the workflow: the first
// status is dim, the last is green, everything between is in progress.
func StatusStyle(status string, statuses []string) lipgloss.Style {
	if len(statuses) == 0 {
		return StyleText
	}
	switch {
	case strings.EqualFold(status, statuses[len(statuses)-1]):
		return StyleSuccess
	case strings.EqualFold(status, statuses[0]):
		return StyleSubtle
	case models.ValidStatus(status, statuses):
		return StyleWarning
	}
	return StyleError
}

// StatusIcon is a one-glyph marker for a status.
func StatusIcon(status string, statuses []string) string {
	if len(statuses) > 0 {
		switch {
		case strings.EqualFold(status, statuses[len(statuses)-1]):
			return "✓"
		case strings.EqualFold(status, statuses[0]):
			return "○"
		}
	}
	return "◐"
}

// PriorityStyle colors a priority value.
func PriorityStyle(p models.TaskPriority) lipgloss.Style {
	switch p {
	case models.PriorityHigh:
		return StyleError
	case models.PriorityMedium:
		return StyleWarning
	case models.PriorityLow:
		return StyleSubtle
	}
	return StyleText
}
