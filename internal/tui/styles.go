package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tradetrackr/internal/store"
)

// Color palette. Adaptive colors follow the app theme through
// applyTheme.
var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}
	colorMuted     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	colorFg        = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F9FAFB"}
	colorSubtle    = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
	colorHighlight = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

	colorGreen   = lipgloss.Color("#22C55E")
	colorRed     = lipgloss.Color("#EF4444")
	colorGrey    = lipgloss.Color("#9CA3AF")
	colorWarning = lipgloss.Color("#F59E0B")
)

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Calendar
	todayCellStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

// statusStyle colors a day by its status.
func statusStyle(s store.Status) lipgloss.Style {
	switch s {
	case store.StatusGreen:
		return successStyle
	case store.StatusRed:
		return errorStyle
	case store.StatusGrey:
		return lipgloss.NewStyle().Foreground(colorGrey)
	}
	return normalItemStyle
}

// applyTheme resolves the adaptive colors for a light or dark theme.
func applyTheme(theme store.AppTheme) {
	lipgloss.SetHasDarkBackground(theme != store.ThemeLight)
}
