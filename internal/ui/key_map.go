package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	library key.Binding
	catalog key.Binding
	chat    key.Binding
	report  key.Binding
	delete  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		library: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "library")),
		catalog: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "catalog")),
		chat:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chat")),
		report:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "report")),
		delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.library, k.catalog},
		{k.chat, k.report, k.quit},
	}
}
