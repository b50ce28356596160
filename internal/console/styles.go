package console

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("#00FFFF")
	colorGreen  = lipgloss.Color("#00FF00")
	colorRed    = lipgloss.Color("#FF0000")
	colorYellow = lipgloss.Color("#FFFF00")
	colorGray   = lipgloss.Color("#666666")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	personaStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	transcriptStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorGray)

	recordingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	menuKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)
