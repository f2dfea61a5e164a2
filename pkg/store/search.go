package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mattsolo1/grove-links/pkg/models"
)

// initFTS creates the full-text index when the driver was built with FTS5.
func (s *Store) initFTS() bool {
	// Probe with a throwaway table; the driver only ships FTS5 with the
	// sqlite_fts5 build tag.
	if _, err := s.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_check USING fts5(content)"); err != nil {
		return false
	}
	_, _ = s.db.Exec("DROP TABLE IF EXISTS fts5_check")

	ftsSchema := `
	CREATE VIRTUAL TABLE IF NOT EXISTS links_fts USING fts5(
		id UNINDEXED,
		title,
		url,
		notes,
		tags,
		tokenize = 'porter unicode61'
	);
	`
	if _, err := s.db.Exec(ftsSchema); err != nil {
		s.log.WithError(err).Warn("full-text search unavailable")
		return false
	}
	return true
}

func (s *Store) indexLink(ctx context.Context, tx *sql.Tx, l *models.Link) error {
	if !s.useFTS {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM links_fts WHERE id = ?", l.ID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO links_fts (id, title, url, notes, tags) VALUES (?, ?, ?, ?, ?)
	`, l.ID, l.Title, l.URL, l.Notes, strings.Join(l.Tags, " "))
	return err
}

// SearchLinks finds links whose title, url, notes or tags match query.
func (s *Store) SearchLinks(ctx context.Context, query string, limit int) ([]*models.Link, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var (
		links []*models.Link
		err   error
	)
	if s.useFTS {
		links, err = s.searchWithFTS(ctx, query, limit)
	} else {
		links, err = s.searchWithoutFTS(ctx, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search links: %w", err)
	}
	return links, nil
}

func (s *Store) searchWithFTS(ctx context.Context, query string, limit int) ([]*models.Link, error) {
	q := "SELECT " + linkColumns + linkFrom + `
		JOIN links_fts f ON f.id = l.id
		WHERE f.links_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?`
	return s.queryLinks(ctx, q, ftsQuery(query), limit)
}

func (s *Store) searchWithoutFTS(ctx context.Context, query string, limit int) ([]*models.Link, error) {
	pattern := "%" + strings.ReplaceAll(escapeLike(query), " ", "%") + "%"
	q := "SELECT " + linkColumns + linkFrom + `
		WHERE l.title LIKE ? ESCAPE '\' OR l.url LIKE ? ESCAPE '\'
			OR l.notes LIKE ? ESCAPE '\' OR l.tags LIKE ? ESCAPE '\'
		ORDER BY l.created_at DESC
		LIMIT ?`
	return s.queryLinks(ctx, q, pattern, pattern, pattern, pattern, limit)
}

// ftsQuery quotes each term so user input cannot inject FTS operators.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}
	return strings.Join(terms, " ")
}
