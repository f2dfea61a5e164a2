package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://go.dev/blog", "https://go.dev/blog", false},
		{"  go.dev  ", "https://go.dev", false},
		{"http://localhost:8080/x?y=1", "http://localhost:8080/x?y=1", false},
		{"file:///home/me/notes.txt", "file:///home/me/notes.txt", false},
		{"", "", true},
		{"ftp://example.com", "", true},
		{"https://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLinkDefaultsTitleToHost(t *testing.T) {
	link, err := NewLink("https://pkg.go.dev/net/url", "")
	require.NoError(t, err)

	assert.NotEmpty(t, link.ID)
	assert.Equal(t, "pkg.go.dev", link.Title)
	assert.Equal(t, "pkg.go.dev", link.DisplayName())
	assert.Equal(t, "pkg.go.dev", link.Host())
	assert.NotNil(t, link.Tags)
	assert.False(t, link.CreatedAt.IsZero())
}

func TestNewLinkKeepsTitle(t *testing.T) {
	link, err := NewLink("go.dev", "  The Go site ")
	require.NoError(t, err)
	assert.Equal(t, "The Go site", link.Title)
	assert.Equal(t, "https://go.dev", link.URL)
}

func TestLinkIDsAreUnique(t *testing.T) {
	a, err := NewLink("go.dev", "")
	require.NoError(t, err)
	b, err := NewLink("go.dev", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestHasTag(t *testing.T) {
	link := &Link{Tags: []string{"Go", "reading"}}
	assert.True(t, link.HasTag("go"))
	assert.False(t, link.HasTag("rust"))
}

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("  Side   projects ")
	require.NoError(t, err)
	assert.Equal(t, "Side projects", c.Name)

	_, err = NewCategory("   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}
