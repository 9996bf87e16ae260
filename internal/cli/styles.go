// Package cli provides styled terminal output for the sage commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/budgetsage/budgetsage/internal/model"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	bandStyles = map[model.Band]lipgloss.Style{
		model.BandHigh:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4")),
		model.BandMedium:  lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1D3")),
		model.BandLow:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D")),
		model.BandVeryLow: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
)

// Prompt renders the chat input prompt.
func Prompt() string {
	return promptStyle.Render("> ")
}

// FormatAnswer renders answer text for the terminal.
func FormatAnswer(text string) string {
	return answerStyle.Render(text)
}

// FormatMeta renders the tier/confidence trailer in a subdued tone, with
// the band colored by severity.
func FormatMeta(meta string, band model.Band) string {
	style, ok := bandStyles[band]
	if !ok {
		style = subtleStyle
	}
	return style.Render(meta)
}

// FormatError renders an error line.
func FormatError(msg string) string {
	return errorStyle.Render(msg)
}

// FormatSubtle renders de-emphasized helper text.
func FormatSubtle(msg string) string {
	return subtleStyle.Render(msg)
}
