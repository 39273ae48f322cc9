package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// This is the single source of truth for all TUI colors.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // primary accent
	coralPink   = lipgloss.Color("#FFCCCB") // secondary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // success states
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	toolbarStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(mutedGray)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	cursorStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	titleStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Bold(true)

	markdownStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	outputStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	editorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)
