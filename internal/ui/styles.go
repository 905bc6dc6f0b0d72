package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorFailure   = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorHighlight = lipgloss.Color("#1F2937")

	StylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorHighlight)

	StyleMatch = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FCD34D")).
			Background(lipgloss.Color("#78350F"))
)

// ToggleLabel renders an on/off flag for the toolbar.
func ToggleLabel(name string, on bool) string {
	if on {
		return StyleSuccess.Render(name + ": on")
	}
	return StyleMuted.Render(name + ": off")
}

// StateStyle colors the status line by search state.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "completed":
		return StyleSuccess
	case "incomplete", "truncated":
		return StyleWarning
	case "scanning":
		return StyleInfo
	default:
		return StyleMuted
	}
}

// StateIcon is the one-cell marker shown before the status line.
func StateIcon(state string) string {
	switch state {
	case "completed":
		return StyleSuccess.Render("V")
	case "incomplete":
		return StyleFailure.Render("X")
	case "truncated":
		return StyleWarning.Render("!")
	case "scanning":
		return StyleInfo.Render("*")
	default:
		return StyleMuted.Render("o")
	}
}
