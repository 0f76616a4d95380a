package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	star    key.Binding
	unstar  key.Binding
	dismiss key.Binding
	search  key.Binding
	crawl   key.Binding
	sync    key.Binding
	stop    key.Binding
	refresh key.Binding
	yes     key.Binding
	no      key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		star:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "star")),
		unstar:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unstar")),
		dismiss: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		crawl:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "crawl")),
		sync:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sync stars")),
		stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop job")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.star, k.search, k.stop, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.refresh},
		{k.star, k.unstar, k.dismiss},
		{k.search, k.crawl, k.sync},
		{k.stop, k.quit},
	}
}
