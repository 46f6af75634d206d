// Package app is the Bubble Tea front-end for watching one transfer. It
// bridges the tracking session's observers into Bubble Tea messages through
// a buffered channel that the update loop drains.
package app

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zenobia-pay/client/internal/theme"
	"github.com/zenobia-pay/client/internal/track"
	"github.com/zenobia-pay/client/internal/views/statusbar"
	"github.com/zenobia-pay/client/internal/views/timeline"
)

// StatusMsg delivers a pushed transfer status.
type StatusMsg track.TransferUpdate

// ErrorMsg delivers a reported error.
type ErrorMsg struct{ Err error }

// ConnectionMsg reports a connection state change.
type ConnectionMsg bool

// Model is the root Bubble Tea model.
type Model struct {
	session *track.Session
	events  chan tea.Msg

	transferID string
	signature  string

	keys   KeyMap
	width  int
	height int

	statusBar statusbar.Model
	timeline  timeline.Model
	spin      spinner.Model
}

// New creates the root model and registers the session observers. Events
// that arrive before the program starts are buffered.
func New(session *track.Session, transferID, signature string) Model {
	events := make(chan tea.Msg, 64)
	if session != nil {
		session.OnStatus(func(u track.TransferUpdate) { push(events, StatusMsg(u)) })
		session.OnError(func(err error) { push(events, ErrorMsg{Err: err}) })
		session.OnConnection(func(c bool) { push(events, ConnectionMsg(c)) })
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorWarning)

	return Model{
		session:    session,
		events:     events,
		transferID: transferID,
		signature:  signature,
		keys:       DefaultKeyMap(),
		statusBar:  statusbar.Model{TransferID: transferID},
		timeline:   timeline.New(200),
		spin:       sp,
	}
}

// push never blocks the controller's callback goroutine; if the UI cannot
// keep up the event is dropped.
func push(events chan tea.Msg, msg tea.Msg) {
	select {
	case events <- msg:
	default:
	}
}

// Init starts tracking and begins draining events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startTracking(), m.waitForEvent(), m.spin.Tick)
}

func (m Model) startTracking() tea.Cmd {
	return func() tea.Msg {
		if m.session == nil {
			return nil
		}
		if err := m.session.Track(m.transferID, m.signature); err != nil {
			return ErrorMsg{Err: err}
		}
		return nil
	}
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.timeline.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StatusMsg:
		m.statusBar.Status = msg.Status
		m.timeline.Append(timeline.KindStatus, msg.Status)
		return m, m.waitForEvent()

	case ErrorMsg:
		m.timeline.Append(timeline.KindError, msg.Err.Error())
		if errors.Is(msg.Err, track.ErrRetriesExhausted) {
			m.statusBar.GaveUp = true
		}
		return m, m.waitForEvent()

	case ConnectionMsg:
		m.statusBar.Connected = bool(msg)
		if m.session != nil {
			m.statusBar.Attempts = m.session.ReconnectAttempts()
		}
		if msg {
			m.timeline.Append(timeline.KindConnection, "stream connected")
		} else {
			m.timeline.Append(timeline.KindConnection, "stream disconnected")
		}
		return m, m.waitForEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.session != nil {
			m.session.Disconnect()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Reconnect):
		if m.session != nil {
			m.statusBar.GaveUp = false
			if err := m.session.Track(m.transferID, m.signature); err != nil {
				m.timeline.Append(timeline.KindError, err.Error())
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Disconnect):
		if m.session != nil {
			m.session.Disconnect()
		}
		return m, nil
	}
	return m, nil
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	sections := []string{
		m.statusBar.View(),
	}
	if !m.statusBar.Connected && !m.statusBar.GaveUp {
		sections = append(sections, "  "+m.spin.View()+theme.StyleDimmed.Render(" waiting for stream"))
	}
	sections = append(sections,
		theme.StyleHeader.Render("  Events"),
		m.timeline.View(),
		theme.StyleDimmed.Render("  r:reconnect  d:disconnect  q:quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
