package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/scopefind/internal/ui"
)

// RenderStatusLine is the search summary line above the results.
func RenderStatusLine(state, text string, width int) string {
	line := "  " + ui.StateIcon(state) + " " + ui.StateStyle(state).Render(text)
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(line)
}

func RenderStatusBar(status, hints string, width int) string {
	left := lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("  " + status)

	help := lipgloss.NewStyle().Foreground(ui.ColorMuted).
		Render(hints + " ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 0 {
		gap = 0
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#111827")).
		Width(width).
		Render(left + padding + help)
}
