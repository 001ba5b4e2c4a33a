package state

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Down        key.Binding
	Up          key.Binding
	Top         key.Binding
	Bottom      key.Binding
	MarkRead    key.Binding
	MarkAllRead key.Binding
	Reload      key.Binding
	NextFeed    key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "move")),
		Up:          key.NewBinding(key.WithKeys("k", "up")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g/G", "top/bottom")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end")),
		MarkRead:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "mark read")),
		MarkAllRead: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "mark all read")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		NextFeed:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next app")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Top, k.MarkRead, k.MarkAllRead, k.Reload, k.NextFeed, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
