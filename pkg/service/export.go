package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattsolo1/grove-links/pkg/frontmatter"
	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/store"
)

// ImportResult counts what Import did.
type ImportResult struct {
	Added      int
	Skipped    int
	Categories int
}

// Export writes every visible link as a markdown document grouped by
// category. Categories awaiting deletion are exported as uncategorized.
func (s *Service) Export(ctx context.Context, w io.Writer, title string) error {
	links, err := s.ListLinks(ctx, store.LinkQuery{OrderBy: store.ByTitle})
	if err != nil {
		return err
	}
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return err
	}

	sections := make([]frontmatter.Section, 0, len(cats)+1)
	index := make(map[string]int, len(cats))
	for _, c := range cats {
		index[c.ID] = len(sections)
		sections = append(sections, frontmatter.Section{Category: c.Name})
	}
	var loose []frontmatter.Entry
	var tags [][]string
	for _, l := range links {
		e := frontmatter.Entry{Title: l.Title, URL: l.URL, Tags: l.Tags, Notes: l.Notes}
		tags = append(tags, l.Tags)
		if i, ok := index[l.CategoryID]; ok {
			sections[i].Entries = append(sections[i].Entries, e)
		} else {
			loose = append(loose, e)
		}
	}
	if len(loose) > 0 {
		sections = append(sections, frontmatter.Section{Category: frontmatter.Uncategorized, Entries: loose})
	}

	if title == "" {
		title = "Links"
	}
	doc := &frontmatter.Document{
		Frontmatter: frontmatter.Frontmatter{
			Title:    title,
			Exported: frontmatter.FormatTimestamp(time.Now()),
			Tags:     frontmatter.MergeTags(tags...),
		},
		Sections: sections,
	}
	if _, err := io.WriteString(w, frontmatter.BuildDocument(doc)); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Import reads a document written by Export. Links whose URL is already
// stored are skipped; missing categories are created.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	doc, err := frontmatter.ParseDocument(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}

	existing, err := s.Store.Links(ctx, store.LinkQuery{})
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, l := range existing {
		known[l.URL] = true
	}

	res := &ImportResult{}
	for _, sec := range doc.Sections {
		var cat *models.Category
		if sec.Category != frontmatter.Uncategorized && len(sec.Entries) > 0 {
			if cat, err = s.FindCategory(ctx, sec.Category); err != nil {
				if cat, err = s.AddCategory(ctx, sec.Category); err != nil {
					return res, fmt.Errorf("import category %q: %w", sec.Category, err)
				}
				res.Categories++
			}
		}
		for _, e := range sec.Entries {
			link, err := models.NewLink(e.URL, e.Title)
			if err != nil {
				return res, fmt.Errorf("import %q: %w", e.URL, err)
			}
			if known[link.URL] {
				res.Skipped++
				continue
			}
			link.Tags = frontmatter.MergeTags(e.Tags)
			link.Notes = strings.TrimSpace(e.Notes)
			if cat != nil {
				link.CategoryID = cat.ID
			}
			if err := s.Store.InsertLink(ctx, link); err != nil {
				return res, fmt.Errorf("import %q: %w", e.URL, err)
			}
			known[link.URL] = true
			res.Added++
		}
	}
	s.log.WithField("added", res.Added).Info("import finished")
	return res, nil
}

func cleanTags(tags []string) []string {
	var parts []string
	for _, tag := range tags {
		parts = append(parts, strings.Split(tag, ",")...)
	}
	return frontmatter.MergeTags(parts)
}
