package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/scopefind/internal/ui"
)

// RenderHeader shows the program, the search root and, while a search is
// running, its completion percentage.
func RenderHeader(root string, scanning bool, percent float64, width int) string {
	left := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(fmt.Sprintf(" scopefind | %s", root))

	right := ""
	if scanning {
		right = lipgloss.NewStyle().Foreground(ui.ColorInfo).
			Render(fmt.Sprintf("%3.f%% ", percent))
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(ui.ColorHighlight).
		Width(width).
		Render(left + padding + right)
}

// RenderToolbar shows the sort key and the filter toggles.
func RenderToolbar(sort string, sourceOnly, includeBinary bool, width int) string {
	muted := ui.StyleMuted
	sortLabel := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary).Render("Sort: " + sort)
	left := "  " + sortLabel + muted.Render(" (F2 name, F3 date, F4 size)") +
		"   " + ui.ToggleLabel("Source only", sourceOnly) + muted.Render(" F5") +
		"   " + ui.ToggleLabel("Binary", includeBinary) + muted.Render(" F6")
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(left)
}
