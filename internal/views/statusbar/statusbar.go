package statusbar

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenobia-pay/client/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected  bool
	GaveUp     bool
	TransferID string
	Status     string
	Attempts   int
	Width      int
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	switch {
	case m.Connected:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	case m.GaveUp:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("✗ Gave up")
	case m.Attempts > 0:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(
			fmt.Sprintf("○ Reconnecting (attempt %d)", m.Attempts))
	default:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Connecting...")
	}

	idStr := theme.StyleDimmed.Render("transfer " + shortID(m.TransferID))

	status := m.Status
	if status == "" {
		status = "awaiting status"
	}
	statusStr := lipgloss.NewStyle().Foreground(theme.StatusColor(m.Status)).Render(
		theme.StatusGlyph(m.Status) + " " + status)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(connStr + sep + idStr + sep + statusStr)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "…"
	}
	if id == "" {
		return "-"
	}
	return id
}
