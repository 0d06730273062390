package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	MarkStart key.Binding
	MarkEnd   key.Binding
	Delete    key.Binding
	Back      key.Binding
	Fast      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		MarkStart: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start serve"),
		),
		MarkEnd: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "end serve"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete previous"),
		),
		Back: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "seek back"),
		),
		Fast: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "hold to fast-forward"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MarkStart, k.MarkEnd, k.Delete, k.Back, k.Fast, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.MarkStart, k.MarkEnd, k.Delete},
		{k.Back, k.Fast, k.Quit},
	}
}
