package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the watcher's key bindings.
type KeyMap struct {
	Quit       key.Binding
	Reconnect  key.Binding
	Disconnect key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "disconnect"),
		),
	}
}
