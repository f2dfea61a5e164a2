package manager

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-links/internal/tui/components/notice"
	"github.com/mattsolo1/grove-links/pkg/deletion"
	"github.com/mattsolo1/grove-links/pkg/service"
	"github.com/mattsolo1/grove-links/pkg/store"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func setup(t *testing.T, names ...string) (Model, *service.Service, *deletion.ManualClock) {
	t.Helper()
	clock := deletion.NewManualClock(time.Now())
	svc, err := service.New(&service.Config{DataDir: t.TempDir()}, nil,
		deletion.WithClock(clock),
		deletion.WithRetry(deletion.RetryPolicy{Attempts: 1}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	for _, name := range names {
		_, err := svc.AddCategory(context.Background(), name)
		require.NoError(t, err)
	}

	m := New(svc)
	t.Cleanup(m.Close)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, m.load()())
	return m, svc, clock
}

func syncNotice(t *testing.T, m Model, svc *service.Service) Model {
	t.Helper()
	m, _ = update(t, m, notice.StateMsg{State: svc.Categories.Notifications().State()})
	return m
}

func TestLoadShowsCategories(t *testing.T) {
	m, _, _ := setup(t, "Reading", "Work")
	require.Len(t, m.categories, 2)
	view := m.View()
	assert.Contains(t, view, "Categories (2)")
	assert.Contains(t, view, "Reading")
	assert.Contains(t, view, "Work")
}

func TestDeleteCategoryIsUndoable(t *testing.T) {
	m, svc, clock := setup(t, "Reading")
	id := m.categories[0].ID

	m, _ = update(t, m, runes("d"))
	assert.Empty(t, m.categories)
	assert.True(t, svc.Categories.IsPending(id))

	m = syncNotice(t, m, svc)
	assert.Contains(t, m.View(), "Category deleted")

	m, cmd := update(t, m, runes("u"))
	require.NotNil(t, cmd)
	m, cmd = update(t, m, cmd())
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Len(t, m.categories, 1)

	clock.Advance(time.Minute)
	_, err := svc.Store.GetCategory(context.Background(), id)
	assert.NoError(t, err)
}

func TestDeleteCategoryCommitsAfterDelay(t *testing.T) {
	m, svc, clock := setup(t, "Reading")
	id := m.categories[0].ID

	m, _ = update(t, m, runes("d"))
	m = syncNotice(t, m, svc)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.False(t, svc.Categories.Notifications().State().IsVisible())
	assert.True(t, svc.Categories.IsPending(id), "dismiss does not cancel")

	clock.Advance(svc.Categories.Delay())
	_, err := svc.Store.GetCategory(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUndoKeyWithoutNoticeIsIgnored(t *testing.T) {
	m, svc, _ := setup(t, "Reading", "Work")
	m, cmd := update(t, m, runes("u"))
	assert.Nil(t, cmd)
	assert.Len(t, m.categories, 2)
	assert.Empty(t, svc.Categories.PendingIDs())
}

func TestAddCategory(t *testing.T) {
	m, svc, _ := setup(t)

	m, _ = update(t, m, runes("a"))
	require.Equal(t, addInput, m.mode)
	m, _ = update(t, m, runes("Later"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, noInput, m.mode)

	m, cmd = update(t, m, cmd())
	assert.Equal(t, "Added Later", m.message)
	m, _ = update(t, m, cmd())
	require.Len(t, m.categories, 1)

	_, err := svc.FindCategory(context.Background(), "later")
	assert.NoError(t, err)
}

func TestRenameDuplicateShowsError(t *testing.T) {
	m, _, _ := setup(t, "Reading", "Work")

	m, _ = update(t, m, runes("r"))
	require.Equal(t, renameInput, m.mode)
	m.input.SetValue("work")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.message, "already exists")
}

func TestEscCancelsInput(t *testing.T) {
	m, _, _ := setup(t, "Reading")
	m, _ = update(t, m, runes("a"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, noInput, m.mode)
}

func TestQuitAndSwitch(t *testing.T) {
	m, svc, _ := setup(t, "Reading")
	id := m.categories[0].ID
	m, _ = update(t, m, runes("d"))

	switched, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	assert.True(t, switched.SwitchRequested())

	quit, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.True(t, quit.quitting)
	assert.Empty(t, quit.View())

	quit.Close()
	_, err := svc.Store.GetCategory(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
