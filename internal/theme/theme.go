// Package theme provides the Lip Gloss palette and reusable styles for the
// transfer watcher TUI. It is a leaf package with no internal imports.
package theme

import "github.com/charmbracelet/lipgloss"

// Transfer status colors.
var (
	ColorCreated    = lipgloss.Color("#7c3aed")
	ColorPending    = lipgloss.Color("#2563eb")
	ColorProcessing = lipgloss.Color("#d97706")
	ColorCompleted  = lipgloss.Color("#16a34a")
	ColorFailed     = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// StatusColor returns the color for a transfer status string.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "created":
		return ColorCreated
	case "pending":
		return ColorPending
	case "processing":
		return ColorProcessing
	case "completed", "settled":
		return ColorCompleted
	case "failed", "cancelled", "expired":
		return ColorFailed
	default:
		return ColorDimmed
	}
}

// StatusGlyph returns a glyph for a transfer status string.
func StatusGlyph(status string) string {
	switch status {
	case "created":
		return "◎"
	case "pending":
		return "◌"
	case "processing":
		return "●"
	case "completed", "settled":
		return "✓"
	case "failed", "cancelled", "expired":
		return "✗"
	default:
		return "·"
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)
)
