package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenobia-pay/client/internal/track"
)

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestViewBeforeSizing(t *testing.T) {
	m := New(nil, "t1", "s1")
	if v := m.View(); !strings.Contains(v, "Initializing") {
		t.Errorf("zero-size view = %q, want initializing placeholder", v)
	}
}

func TestStatusUpdateRendered(t *testing.T) {
	m := sized(t, New(nil, "t1", "s1"))

	next, cmd := m.Update(StatusMsg{Status: "pending"})
	if cmd == nil {
		t.Error("status update should re-arm the event wait")
	}
	m = next.(Model)

	v := m.View()
	if !strings.Contains(v, "pending") {
		t.Error("view should show the pushed status")
	}
}

func TestConnectionStateRendered(t *testing.T) {
	m := sized(t, New(nil, "t1", "s1"))

	next, _ := m.Update(ConnectionMsg(true))
	m = next.(Model)
	if v := m.View(); !strings.Contains(v, "Connected") {
		t.Error("view should show connected state")
	}

	next, _ = m.Update(ConnectionMsg(false))
	m = next.(Model)
	if v := m.View(); !strings.Contains(v, "Connecting") && !strings.Contains(v, "Reconnecting") {
		t.Error("view should show a connecting state after disconnect")
	}
}

func TestRetriesExhaustedRendered(t *testing.T) {
	m := sized(t, New(nil, "t1", "s1"))

	next, _ := m.Update(ErrorMsg{Err: track.ErrRetriesExhausted})
	m = next.(Model)
	if v := m.View(); !strings.Contains(v, "Gave up") {
		t.Error("view should surface the gave-up state")
	}
}

func TestErrorAppendedToTimeline(t *testing.T) {
	m := sized(t, New(nil, "t1", "s1"))

	next, _ := m.Update(ErrorMsg{Err: track.ErrParseMessage})
	m = next.(Model)
	if v := m.View(); !strings.Contains(v, "failed to parse message") {
		t.Error("view should log reported errors")
	}
}
