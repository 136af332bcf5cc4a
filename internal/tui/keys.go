package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the City Pulse TUI.
type KeyMap struct {
	// Feed.
	NewReport key.Binding
	Quit      key.Binding

	// Report modal.
	NextField key.Binding
	PrevField key.Binding
	Apply     key.Binding // Attach the image path or look up the location.
	Submit    key.Binding
	Close     key.Binding

	ForceQuit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	NewReport: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "report event"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "prev field"),
	),
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "attach/locate"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "submit"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "close"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
