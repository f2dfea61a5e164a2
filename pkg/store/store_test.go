package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-links/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustLink(t *testing.T, url, title string) *models.Link {
	t.Helper()
	l, err := models.NewLink(url, title)
	require.NoError(t, err)
	return l
}

func TestOpenCreatesDatabase(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dataDir, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dataDir, DBName))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, DBName), s.Path())
}

func TestLinkCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	l := mustLink(t, "https://go.dev", "Go")
	l.Tags = []string{"lang", "docs"}
	require.NoError(t, s.InsertLink(ctx, l))

	got, err := s.GetLink(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, []string{"lang", "docs"}, got.Tags)
	assert.True(t, l.CreatedAt.Equal(got.CreatedAt))

	got.Title = "The Go Programming Language"
	require.NoError(t, s.UpdateLink(ctx, got))
	got, err = s.GetLink(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", got.Title)

	require.NoError(t, s.DeleteLink(ctx, l.ID))
	_, err = s.GetLink(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteLink(ctx, l.ID), ErrNotFound)
	assert.ErrorIs(t, s.UpdateLink(ctx, got), ErrNotFound)
}

func TestFindLinkByPrefix(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	l := mustLink(t, "https://go.dev", "Go")
	l.ID = "abc123"
	require.NoError(t, s.InsertLink(ctx, l))
	other := mustLink(t, "https://example.com", "")
	other.ID = "abd456"
	require.NoError(t, s.InsertLink(ctx, other))

	got, err := s.FindLink(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ID)

	_, err = s.FindLink(ctx, "ab")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = s.FindLink(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategoryUncategorizesLinks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	cat, err := models.NewCategory("Reading")
	require.NoError(t, err)
	require.NoError(t, s.InsertCategory(ctx, cat))

	l := mustLink(t, "https://go.dev/blog", "Blog")
	l.CategoryID = cat.ID
	require.NoError(t, s.InsertLink(ctx, l))

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, 1, cats[0].LinkCount)

	require.NoError(t, s.DeleteCategory(ctx, cat.ID))

	got, err := s.GetLink(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
	assert.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), ErrNotFound)
}

func TestCategoryNamesAreUnique(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a, _ := models.NewCategory("Work")
	require.NoError(t, s.InsertCategory(ctx, a))
	b, _ := models.NewCategory("work")
	assert.ErrorIs(t, s.InsertCategory(ctx, b), ErrDuplicateName)

	found, err := s.CategoryByName(ctx, " WORK ")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestLinksFilters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	cat, _ := models.NewCategory("Go")
	require.NoError(t, s.InsertCategory(ctx, cat))

	a := mustLink(t, "https://go.dev", "a")
	a.CategoryID = cat.ID
	a.Tags = []string{"Docs"}
	b := mustLink(t, "https://example.com", "b")
	require.NoError(t, s.InsertLink(ctx, a))
	require.NoError(t, s.InsertLink(ctx, b))

	all, err := s.Links(ctx, LinkQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inCat, err := s.Links(ctx, LinkQuery{CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, inCat, 1)
	assert.Equal(t, a.ID, inCat[0].ID)

	loose, err := s.Links(ctx, LinkQuery{Uncategorized: true})
	require.NoError(t, err)
	require.Len(t, loose, 1)
	assert.Equal(t, b.ID, loose[0].ID)

	tagged, err := s.Links(ctx, LinkQuery{Tag: "docs"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, a.ID, tagged[0].ID)
}

func TestVisitsAndStats(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a := mustLink(t, "https://go.dev", "a")
	b := mustLink(t, "https://example.com", "b")
	require.NoError(t, s.InsertLink(ctx, a))
	require.NoError(t, s.InsertLink(ctx, b))

	now := time.Now().UTC()
	require.NoError(t, s.RecordVisit(ctx, a.ID, now))
	require.NoError(t, s.RecordVisit(ctx, a.ID, now))
	assert.ErrorIs(t, s.RecordVisit(ctx, "missing", now), ErrNotFound)

	got, err := s.GetLink(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.VisitCount)
	require.NotNil(t, got.LastVisitedAt)

	st, err := s.Stats(ctx, 5, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalLinks)
	assert.Equal(t, 2, st.TotalVisits)
	assert.Equal(t, 2, st.Uncategorized)
	assert.Equal(t, 1, st.NeverVisited)
	require.Len(t, st.TopLinks, 1)
	assert.Equal(t, a.ID, st.TopLinks[0].ID)
	require.Len(t, st.RecentVisits, 1)
	assert.Equal(t, 2, st.RecentVisits[0].Visits)

	// Visits go with the link.
	require.NoError(t, s.DeleteLink(ctx, a.ID))
	st, err = s.Stats(ctx, 5, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, st.TotalVisits)
}

func TestSearchLinks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a := mustLink(t, "https://go.dev/blog", "The Go Blog")
	a.Notes = "release notes and essays"
	b := mustLink(t, "https://rust-lang.org", "Rust")
	require.NoError(t, s.InsertLink(ctx, a))
	require.NoError(t, s.InsertLink(ctx, b))

	got, err := s.SearchLinks(ctx, "blog", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, err = s.SearchLinks(ctx, "essays", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.SearchLinks(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWatchSignalsMutations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	ch, cancel := s.Watch()
	defer cancel()

	l := mustLink(t, "https://go.dev", "Go")
	require.NoError(t, s.InsertLink(ctx, l))
	require.NoError(t, s.DeleteLink(ctx, l.ID))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change signal")
	}

	// Both mutations coalesce into one pending signal.
	select {
	case <-ch:
		t.Fatal("signals should coalesce")
	default:
	}

	cancel()
	_, open := <-ch
	assert.False(t, open)
}
