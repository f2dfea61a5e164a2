package browser

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

func setup(t *testing.T, titles ...string) (Model, *service.Service, *deletion.ManualClock) {
	t.Helper()
	clock := deletion.NewManualClock(time.Now())
	svc, err := service.New(&service.Config{DataDir: t.TempDir()}, nil,
		deletion.WithClock(clock),
		deletion.WithRetry(deletion.RetryPolicy{Attempts: 1}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	for i, title := range titles {
		_, err := svc.AddLink(context.Background(), "https://example.com/"+string(rune('a'+i)), title, "", nil)
		require.NoError(t, err)
	}

	m := New(svc)
	t.Cleanup(m.Close)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, fetchLinksCmd(svc)())
	return m, svc, clock
}

// syncNotice delivers the current notification state the way the
// subscription would.
func syncNotice(t *testing.T, m Model, svc *service.Service) Model {
	t.Helper()
	m, _ = update(t, m, notice.StateMsg{State: svc.Links.Notifications().State()})
	return m
}

func TestLoadShowsLinks(t *testing.T) {
	m, _, _ := setup(t, "Alpha", "Beta")
	assert.Len(t, m.filtered, 2)
	assert.Contains(t, m.View(), "Alpha")
	assert.Contains(t, m.View(), "Beta")
}

func TestDeleteHidesImmediatelyAndShowsNotice(t *testing.T) {
	m, svc, _ := setup(t, "Alpha")
	id := m.filtered[0].ID

	m, _ = update(t, m, runes("d"))
	assert.Empty(t, m.filtered)
	assert.True(t, svc.Links.IsPending(id))

	m = syncNotice(t, m, svc)
	view := m.View()
	assert.Contains(t, view, "Link deleted")
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "u undo")

	_, err := svc.Store.GetLink(context.Background(), id)
	assert.NoError(t, err, "nothing is removed from storage yet")
}

func TestUndoRestoresLink(t *testing.T) {
	m, svc, clock := setup(t, "Alpha")
	id := m.filtered[0].ID

	m, _ = update(t, m, runes("d"))
	m = syncNotice(t, m, svc)

	m, cmd := update(t, m, runes("u"))
	require.NotNil(t, cmd)
	m, cmd = update(t, m, cmd())
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	require.Len(t, m.filtered, 1)
	assert.Equal(t, id, m.filtered[0].ID)
	assert.False(t, svc.Links.IsPending(id))

	clock.Advance(time.Minute)
	_, err := svc.Store.GetLink(context.Background(), id)
	assert.NoError(t, err)
}

func TestDismissHidesNoticeButKeepsDeletion(t *testing.T) {
	m, svc, clock := setup(t, "Alpha")
	id := m.filtered[0].ID

	m, _ = update(t, m, runes("d"))
	m = syncNotice(t, m, svc)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	m = syncNotice(t, m, svc)
	assert.NotContains(t, m.View(), "Link deleted")

	clock.Advance(svc.Links.Delay())
	_, err := svc.Store.GetLink(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUndoKeyWithoutNoticeDoesNothing(t *testing.T) {
	m, svc, _ := setup(t, "Alpha", "Beta")
	m, cmd := update(t, m, runes("u"))
	assert.Nil(t, cmd)
	assert.Len(t, m.filtered, 2)
	assert.Empty(t, svc.Links.PendingIDs())
}

func TestQuitFlushesPendingDeletions(t *testing.T) {
	m, svc, _ := setup(t, "Alpha", "Beta")
	first, second := m.filtered[0].ID, m.filtered[1].ID

	m, _ = update(t, m, runes("d"))
	m, _ = update(t, m, runes("d"))
	assert.Len(t, svc.Links.PendingIDs(), 2)

	m, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.False(t, m.SwitchRequested())

	m.Close()
	assert.Empty(t, svc.Links.PendingIDs())
	for _, id := range []string{first, second} {
		_, err := svc.Store.GetLink(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrNotFound)
	}
}

func TestTabSwitchesToCategories(t *testing.T) {
	m, _, _ := setup(t, "Alpha")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	assert.True(t, m.SwitchRequested())
}

func TestFilterNarrowsList(t *testing.T) {
	m, _, _ := setup(t, "Alpha", "Beta", "Alphabet")

	m, _ = update(t, m, runes("/"))
	require.True(t, m.filtering)
	for _, r := range "alp" {
		m, _ = update(t, m, runes(string(r)))
	}
	assert.Len(t, m.filtered, 2)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filtering)
	assert.Len(t, m.filtered, 3)
}

func TestReloadKeepsPendingHidden(t *testing.T) {
	m, svc, _ := setup(t, "Alpha", "Beta")
	m, _ = update(t, m, runes("d"))

	m, _ = update(t, m, fetchLinksCmd(svc)())
	assert.Len(t, m.filtered, 1)
}

func TestCursorStaysInRange(t *testing.T) {
	m, _, _ := setup(t, "Alpha", "Beta")

	m, _ = update(t, m, runes("G"))
	assert.Equal(t, 1, m.cursor)
	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 1, m.cursor)

	m, _ = update(t, m, runes("d"))
	assert.Equal(t, 0, m.cursor)
	m, _ = update(t, m, runes("d"))
	assert.Equal(t, 0, m.cursor)
	assert.Nil(t, m.selectedLink())
	assert.Contains(t, m.View(), "No links yet")
}
