// Package notice renders the undo snackbar shown after a deletion.
package notice

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-links/internal/tui/theme"
	"github.com/mattsolo1/grove-links/pkg/deletion"
)

// --- Messages ---

// StateMsg carries a new notification state from a subscription.
type StateMsg struct {
	State deletion.State
}

// UndoMsg is sent when the user asks to undo the latest deletion.
type UndoMsg struct{}

// DismissMsg is sent when the user closes the notice.
type DismissMsg struct{}

// Listen waits for the next state on ch. Re-issue it after every StateMsg.
func Listen(ch <-chan deletion.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return StateMsg{State: st}
	}
}

// --- Model ---

// Model shows the current notification state.
type Model struct {
	State deletion.State
	Width int
	keys  KeyMap
}

// New creates a hidden notice.
func New() Model {
	return Model{keys: DefaultKeyMap}
}

// Visible reports whether the notice takes up screen space.
func (m Model) Visible() bool { return m.State.IsVisible() }

// Keys returns the notice bindings, for help views.
func (m Model) Keys() KeyMap { return m.keys }

// --- Update ---

// Update records state changes and turns the undo and dismiss keys into
// messages. Keys are ignored while the notice is hidden.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.State = msg.State
	case tea.KeyMsg:
		if !m.Visible() {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Undo) && m.State.Undoable:
			return m, func() tea.Msg { return UndoMsg{} }
		case key.Matches(msg, m.keys.Dismiss):
			return m, func() tea.Msg { return DismissMsg{} }
		}
	}
	return m, nil
}

// Handles reports whether Update would act on msg, so screens can keep the
// key for themselves otherwise.
func (m Model) Handles(msg tea.KeyMsg) bool {
	if !m.Visible() {
		return false
	}
	return (key.Matches(msg, m.keys.Undo) && m.State.Undoable) || key.Matches(msg, m.keys.Dismiss)
}

// --- View ---

func (m Model) View() string {
	if !m.Visible() {
		return ""
	}
	t := theme.DefaultTheme

	border := t.Colors.Green
	text := t.Success.Render(m.State.Message)
	hint := "esc dismiss"
	if m.State.Undoable {
		hint = "u undo · esc dismiss"
	} else {
		border = t.Colors.Red
		text = t.Error.Render(m.State.Message)
	}
	if m.State.Subject != "" {
		text += ": " + m.State.Subject
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, text, "   ", t.Muted.Render(hint))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if m.Width > 4 {
		box = box.MaxWidth(m.Width)
	}
	return box.Render(body)
}

// --- KeyMap ---

type KeyMap struct {
	Undo    key.Binding
	Dismiss key.Binding
}

var DefaultKeyMap = KeyMap{
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo delete"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "dismiss"),
	),
}
