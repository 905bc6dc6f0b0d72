package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit         key.Binding
	Help         key.Binding
	Tab          key.Binding
	Enter        key.Binding
	Back         key.Binding
	Refresh      key.Binding
	Search       key.Binding
	SortName     key.Binding
	SortDate     key.Binding
	SortSize     key.Binding
	ToggleSource key.Binding
	ToggleBinary key.Binding
	Copy         key.Binding
	Next         key.Binding
	Prev         key.Binding
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
}

var Keys = KeyMap{
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Tab:          key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
	Enter:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search now / open")),
	Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
	Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	SortName:     key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "sort name")),
	SortDate:     key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "sort date")),
	SortSize:     key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "sort size")),
	ToggleSource: key.NewBinding(key.WithKeys("f5"), key.WithHelp("F5", "source only")),
	ToggleBinary: key.NewBinding(key.WithKeys("f6"), key.WithHelp("F6", "include binary")),
	Copy:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path:line")),
	Next:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
	Prev:         key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev match")),
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
}
