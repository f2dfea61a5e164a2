package browser

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/mattsolo1/grove-links/internal/tui/components/notice"
	"github.com/mattsolo1/grove-links/internal/tui/keymap"
)

// KeyMap defines the keybindings for the links browser
type KeyMap struct {
	keymap.Base
	Open       key.Binding
	Delete     key.Binding
	Undo       key.Binding
	Dismiss    key.Binding
	Filter     key.Binding
	Categories key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Delete, k.Filter, k.Categories, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return append(k.Base.FullHelp(), []key.Binding{
		k.Open,
		k.Delete,
		k.Undo,
		k.Dismiss,
		k.Filter,
		k.Categories,
	})
}

var keys = KeyMap{
	Base: keymap.NewBase(),
	Open: key.NewBinding(
		key.WithKeys("enter", "o"),
		key.WithHelp("enter", "open"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "x", "delete"),
		key.WithHelp("d", "delete"),
	),
	Undo:    notice.DefaultKeyMap.Undo,
	Dismiss: notice.DefaultKeyMap.Dismiss,
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Categories: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "categories"),
	),
}
