// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for consistent theming across all CLI
// output, designed for dark terminal backgrounds.
const (
	// ColorPrimary is purple - used for titles and primary emphasis.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for ready environments and positive outcomes.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for failed and invalid environments.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings and in-flight states.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for environment and tool names.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Base styles built from the palette.
var (
	// TitleStyle is for primary headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// EnvStyle is for environment and tool names.
	EnvStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)

// statusStyle picks the style for an environment status string.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "ready":
		return SuccessStyle
	case "failed", "invalid":
		return ErrorStyle
	case "not-created":
		return SubtitleStyle
	default:
		return WarningStyle
	}
}
