package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   *Frontmatter
		wantBody string
		wantErr  bool
	}{
		{
			name: "valid frontmatter",
			content: `---
title: My Links
exported: 2023-01-01 10:00:00
links: 2
categories: 1
tags: [go, reading]
---

## Go
`,
			wantFM: &Frontmatter{
				Title:      "My Links",
				Exported:   "2023-01-01 10:00:00",
				Links:      2,
				Categories: 1,
				Tags:       []string{"go", "reading"},
			},
			wantBody: "\n## Go\n",
		},
		{
			name:     "no frontmatter",
			content:  "## Go\n",
			wantBody: "## Go\n",
		},
		{
			name:     "invalid yaml",
			content:  "---\ntitle: [broken\n---\nbody",
			wantBody: "---\ntitle: [broken\n---\nbody",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := Parse(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantFM, fm)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestBuildQuotesAwkwardTitles(t *testing.T) {
	out := Build(&Frontmatter{Title: "links: mine", Exported: "2023-01-01 10:00:00"})
	assert.Contains(t, out, `title: "links: mine"`)

	fm, _, err := Parse(out + "\n")
	require.NoError(t, err)
	assert.Equal(t, "links: mine", fm.Title)
}

func TestBuildContentSpacing(t *testing.T) {
	fm := &Frontmatter{Title: "x", Exported: "e"}
	assert.Equal(t, Build(fm)+"\n\nbody", BuildContent(fm, "body"))
	assert.Equal(t, Build(fm)+"\n\nbody", BuildContent(fm, "\nbody"))
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := &Document{
		Frontmatter: Frontmatter{Title: "Bookmarks", Exported: "2024-03-01 09:30:00"},
		Sections: []Section{
			{
				Category: "Go",
				Entries: []Entry{
					{Title: "The Go Blog", URL: "https://go.dev/blog", Tags: []string{"lang", "news"}},
					{Title: "Effective [Go]", URL: "https://go.dev/doc/effective_go", Tags: []string{},
						Notes: "read twice\nthen again"},
				},
			},
			{
				Category: Uncategorized,
				Entries:  []Entry{{Title: `back\slash`, URL: "https://example.com", Tags: []string{}}},
			},
		},
	}

	content := BuildDocument(doc)
	assert.Contains(t, content, "links: 3\n")
	assert.Contains(t, content, "categories: 1\n")
	assert.Contains(t, content, "- [Effective \\[Go\\]](https://go.dev/doc/effective_go)\n")

	got, err := ParseDocument(content)
	require.NoError(t, err)
	assert.Equal(t, "Bookmarks", got.Frontmatter.Title)
	assert.Equal(t, 3, got.Frontmatter.Links)
	assert.Equal(t, doc.Sections, got.Sections)
}

func TestParseDocumentWithoutHeading(t *testing.T) {
	got, err := ParseDocument("- [a](https://a.example) #x\n")
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, Uncategorized, got.Sections[0].Category)
	assert.Equal(t, []string{"x"}, got.Sections[0].Entries[0].Tags)
}

func TestParseDocumentRejectsMalformedEntry(t *testing.T) {
	_, err := ParseDocument("## Go\n- [no url]\n")
	assert.ErrorContains(t, err, "line 2")
}

func TestFormatAndParseTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 14, 30, 45, 0, time.UTC)
	s := FormatTimestamp(ts)
	assert.Equal(t, "2024-01-15 14:30:45", s)

	parsed, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestMergeTags(t *testing.T) {
	tests := []struct {
		name    string
		sources [][]string
		want    []string
	}{
		{"no sources", nil, []string{}},
		{"single", [][]string{{"a", "b"}}, []string{"a", "b"}},
		{"duplicates across sources", [][]string{{"a", "b"}, {"B", "c"}}, []string{"a", "b", "c"}},
		{"hash prefix and blanks", [][]string{{"#go", " ", "go"}}, []string{"go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeTags(tt.sources...))
		})
	}
}
