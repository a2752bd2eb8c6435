// Package ui holds the terminal styles for human-facing command output.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/johnbendi/kubeplane/internal/status"
)

var (
	// Colors
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	ReadyStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	WaitingStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	BlockedStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	DimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// StatusStyle returns the style matching a status level.
func StatusStyle(level status.Level) lipgloss.Style {
	switch level {
	case status.LevelBlocked:
		return BlockedStyle
	case status.LevelWaiting:
		return WaitingStyle
	default:
		return ReadyStyle
	}
}
