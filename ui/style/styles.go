package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	// Header
	Header lipgloss.Style
	Date   lipgloss.Style
	Rate   lipgloss.Style
	Paused lipgloss.Style
	Timers lipgloss.Style

	// Log pane
	Log lipgloss.Style

	// Command line
	Prompt lipgloss.Style

	// Misc
	Muted lipgloss.Style
	Error lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")),
		Date: lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Background(lipgloss.Color("236")).
			Bold(true),
		Rate: lipgloss.NewStyle().
			Foreground(lipgloss.Color("71")). // Muted green
			Background(lipgloss.Color("236")),
		Paused: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // Amber
			Background(lipgloss.Color("236")).
			Bold(true),
		Timers: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")),

		Log: lipgloss.NewStyle(),

		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("167")),
	}
}
