package notice

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-links/pkg/deletion"
)

var (
	keyU   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")}
	keyEsc = tea.KeyMsg{Type: tea.KeyEsc}
)

func shown(undoable bool) Model {
	m := New()
	m, _ = m.Update(StateMsg{State: deletion.State{
		Status:   deletion.Visible,
		Message:  "Link deleted",
		Subject:  "Go blog",
		Undoable: undoable,
	}})
	return m
}

func TestHiddenNoticeIgnoresKeys(t *testing.T) {
	m := New()
	assert.False(t, m.Visible())
	assert.Empty(t, m.View())

	_, cmd := m.Update(keyU)
	assert.Nil(t, cmd)
	assert.False(t, m.Handles(keyEsc))
}

func TestUndoKeySendsUndo(t *testing.T) {
	m := shown(true)
	require.True(t, m.Handles(keyU))

	_, cmd := m.Update(keyU)
	require.NotNil(t, cmd)
	assert.Equal(t, UndoMsg{}, cmd())

	assert.Contains(t, m.View(), "Go blog")
	assert.Contains(t, m.View(), "u undo")
}

func TestFailureNoticeOffersNoUndo(t *testing.T) {
	m := shown(false)
	assert.False(t, m.Handles(keyU))

	_, cmd := m.Update(keyU)
	assert.Nil(t, cmd)

	_, cmd = m.Update(keyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, DismissMsg{}, cmd())
	assert.NotContains(t, m.View(), "u undo")
}

func TestListenDeliversStates(t *testing.T) {
	n := deletion.NewNotifications()
	ch, unsubscribe := n.Subscribe()

	msg := Listen(ch)()
	assert.Equal(t, StateMsg{State: deletion.State{Status: deletion.Hidden}}, msg)

	n.Show("Link deleted", "x")
	msg = Listen(ch)()
	assert.Equal(t, "x", msg.(StateMsg).State.Subject)

	unsubscribe()
	assert.Nil(t, Listen(ch)())
}
