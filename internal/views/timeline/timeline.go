package timeline

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenobia-pay/client/internal/theme"
)

// Kind classifies a timeline entry.
type Kind int

const (
	KindStatus Kind = iota
	KindError
	KindConnection
)

// Entry is one logged lifecycle event.
type Entry struct {
	At   time.Time
	Kind Kind
	Text string
}

// Model holds the scrolling event log.
type Model struct {
	Entries []Entry
	Max     int
	Width   int
}

// New creates a timeline keeping at most max entries.
func New(max int) Model {
	return Model{Max: max}
}

// Append adds an entry, evicting the oldest past the cap.
func (m *Model) Append(kind Kind, text string) {
	m.Entries = append(m.Entries, Entry{At: time.Now(), Kind: kind, Text: text})
	if m.Max > 0 && len(m.Entries) > m.Max {
		m.Entries = m.Entries[len(m.Entries)-m.Max:]
	}
}

// View renders the event log, newest entry last.
func (m Model) View() string {
	if len(m.Entries) == 0 {
		return theme.StyleDimmed.Render("  no events yet")
	}
	lines := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		ts := theme.StyleDimmed.Render(e.At.Format("15:04:05"))
		var body string
		switch e.Kind {
		case KindError:
			body = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render(e.Text)
		case KindConnection:
			body = theme.StyleDimmed.Render(e.Text)
		default:
			body = lipgloss.NewStyle().Foreground(theme.StatusColor(e.Text)).Render(
				theme.StatusGlyph(e.Text) + " " + e.Text)
		}
		lines = append(lines, "  "+ts+"  "+body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
