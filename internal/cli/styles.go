// Package cli renders command output for the terminal: summaries, dataset
// checks and status lines, styled with lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette shared with the dashboard's default theme.
var (
	PrimaryColor = lipgloss.Color("#7C3AED")
	SuccessColor = lipgloss.Color("#10B981")
	WarningColor = lipgloss.Color("#F59E0B")
	ErrorColor   = lipgloss.Color("#EF4444")
	InfoColor    = lipgloss.Color("#3B82F6")
	SubtleColor  = lipgloss.Color("#666666")
)

var (
	// TitleStyle is used for box titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)

	// SubtleStyle formats footnotes.
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)

	// BoxStyle frames a block of output.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// KPILabelStyle labels a headline number.
	KPILabelStyle = lipgloss.NewStyle().Foreground(SubtleColor).Width(16)

	// KPIValueStyle renders a headline number.
	KPIValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Align(lipgloss.Right).
			Width(14)

	successStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	warningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	infoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
)

func status(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string { return status(successStyle, SuccessIcon, message) }

// FormatError prefixes message with a cross.
func FormatError(message string) string { return status(errorStyle, ErrorIcon, message) }

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string { return status(warningStyle, WarningIcon, message) }

// FormatInfo prefixes message with an info sign.
func FormatInfo(message string) string { return status(infoStyle, InfoIcon, message) }

// RenderBox renders content under title inside a rounded border.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), content))
}
