// Package tui provides terminal user interface components for TEMPO.
//
// This package provides a centralized style system using Lip Gloss for
// consistent TUI component styling. All colors use AdaptiveColor for
// light/dark terminal support, and NO_COLOR is respected.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/tempo/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states and primary actions.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for completed tasks.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for in-progress tasks.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for the focus banner and abandoned tasks.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for dim/inactive states and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleCountdown renders the large remaining-time readout on the lock
	// surface.
	StyleCountdown = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// StyleFocusBanner renders the "FOCUS" banner on the lock surface.
	StyleFocusBanner = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	// StyleHint renders the key hints at the bottom of the lock surface.
	StyleHint = lipgloss.NewStyle().Faint(true)
)

// StatusIcon returns the icon for a task status. Icon + color + text are
// kept redundant so no state is conveyed by color alone.
func StatusIcon(status constants.TaskStatus) string {
	switch status {
	case constants.TaskStatusPlanned:
		return "○"
	case constants.TaskStatusInProgress:
		return "◐"
	case constants.TaskStatusCompleted:
		return "●"
	case constants.TaskStatusAbandoned:
		return "✗"
	default:
		return "?"
	}
}

// StatusStyle returns the lipgloss style for a task status.
func StatusStyle(status constants.TaskStatus) lipgloss.Style {
	switch status {
	case constants.TaskStatusPlanned:
		return lipgloss.NewStyle().Foreground(ColorPrimary)
	case constants.TaskStatusInProgress:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case constants.TaskStatusCompleted:
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	case constants.TaskStatusAbandoned:
		return lipgloss.NewStyle().Foreground(ColorMuted)
	default:
		return lipgloss.NewStyle()
	}
}

// TaskColor converts a task's ARGB display color to a lipgloss color.
// The alpha channel is dropped; terminals have no use for it.
func TaskColor(argb uint32) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06X", argb&0xFFFFFF))
}

// CheckNoColor disables styling when NO_COLOR is set or TERM is dumb.
func CheckNoColor() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"
}
