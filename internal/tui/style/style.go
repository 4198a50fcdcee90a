// Package style defines lipgloss styles for the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// UI styles using lipgloss.
// These are package-level for convenience; lipgloss styles are value types
// and safe for concurrent use.
var (
	// Title is used for headers.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	// Error is used for error messages.
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	// Help is used for keyboard shortcut hints.
	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	// Muted is used for de-emphasized text (e.g. the position readout).
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	// ActiveBar colors the played portion of the waveform.
	ActiveBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	// InactiveBar colors the unplayed portion of the waveform.
	InactiveBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)
