// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/devboot/devboot/internal/provision"
)

// Color palette shared by all CLI output. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple - used for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for secondary text and skipped steps.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for completed steps and found files.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for failures and missing files.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for commands, paths and values.
	ColorHighlight = lipgloss.Color("#3B82F6")

	// ColorVerbose is light gray - used for details and verbose output.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for command names, paths and values.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// VerboseStyle is for verbose output and supplementary information.
	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	// stepNameStyle pads step names so status lines align.
	stepNameStyle = lipgloss.NewStyle().
			Bold(true).
			Width(10)
)

// statusIcon returns the styled marker printed before a step result.
func statusIcon(s provision.Status) string {
	switch s {
	case provision.StatusOK:
		return SuccessStyle.Render("✓")
	case provision.StatusSkipped:
		return SubtitleStyle.Render("-")
	case provision.StatusWarning:
		return WarningStyle.Render("!")
	default:
		return ErrorStyle.Render("✗")
	}
}
