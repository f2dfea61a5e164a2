package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mattsolo1/grove-links/pkg/models"
)

const linkColumns = `
	l.id, l.url, l.title, COALESCE(l.category_id, ''), l.notes, l.tags,
	l.created_at, l.updated_at, COALESCE(v.visits, 0), COALESCE(v.last_visit, '')`

const linkFrom = `
	FROM links l
	LEFT JOIN (
		SELECT link_id, COUNT(*) AS visits, MAX(visited_at) AS last_visit
		FROM visits GROUP BY link_id
	) v ON v.link_id = l.id`

// LinkQuery narrows Links. Zero values match everything.
type LinkQuery struct {
	CategoryID    string
	Uncategorized bool
	Tag           string
	OrderBy       LinkOrder
	Limit         int
}

// LinkOrder selects the sort order of Links.
type LinkOrder int

const (
	NewestFirst LinkOrder = iota
	MostVisited
	ByTitle
)

// InsertLink stores a new link.
func (s *Store) InsertLink(ctx context.Context, l *models.Link) error {
	tags, err := encodeTags(l.Tags)
	if err != nil {
		return err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO links (id, url, title, category_id, notes, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, l.ID, l.URL, l.Title, nullable(l.CategoryID), l.Notes, tags,
			formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
		if err != nil {
			return err
		}
		return s.indexLink(ctx, tx, l)
	})
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	s.changed()
	return nil
}

// UpdateLink overwrites the editable fields of an existing link.
func (s *Store) UpdateLink(ctx context.Context, l *models.Link) error {
	tags, err := encodeTags(l.Tags)
	if err != nil {
		return err
	}
	l.UpdatedAt = time.Now().UTC()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE links SET url = ?, title = ?, category_id = ?, notes = ?, tags = ?, updated_at = ?
			WHERE id = ?
		`, l.URL, l.Title, nullable(l.CategoryID), l.Notes, tags, formatTime(l.UpdatedAt), l.ID)
		if err != nil {
			return err
		}
		if err := requireAffected(res, "link", l.ID); err != nil {
			return err
		}
		return s.indexLink(ctx, tx, l)
	})
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	s.changed()
	return nil
}

// DeleteLink removes a link and its visit history.
func (s *Store) DeleteLink(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if s.useFTS {
			if _, err := tx.ExecContext(ctx, "DELETE FROM links_fts WHERE id = ?", id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM links WHERE id = ?", id)
		if err != nil {
			return err
		}
		return requireAffected(res, "link", id)
	})
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	s.log.WithField("id", id).Debug("link deleted")
	s.changed()
	return nil
}

// GetLink returns one link with its visit counters.
func (s *Store) GetLink(ctx context.Context, id string) (*models.Link, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+linkColumns+linkFrom+" WHERE l.id = ?", id)
	l, err := scanLink(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("link %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// FindLink resolves a full id or a unique id prefix, as typed on the command line.
func (s *Store) FindLink(ctx context.Context, ref string) (*models.Link, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM links WHERE id LIKE ? ESCAPE '\\' LIMIT 2", escapeLike(ref)+"%")
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("link %s: %w", ref, ErrNotFound)
	case 1:
		return s.GetLink(ctx, ids[0])
	default:
		return nil, fmt.Errorf("link id %q is ambiguous", ref)
	}
}

// Links returns every link matching q.
func (s *Store) Links(ctx context.Context, q LinkQuery) ([]*models.Link, error) {
	var conditions []string
	var args []any

	switch {
	case q.Uncategorized:
		conditions = append(conditions, "l.category_id IS NULL")
	case q.CategoryID != "":
		conditions = append(conditions, "l.category_id = ?")
		args = append(args, q.CategoryID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	order := " ORDER BY l.created_at DESC"
	switch q.OrderBy {
	case MostVisited:
		order = " ORDER BY COALESCE(v.visits, 0) DESC, l.title COLLATE NOCASE"
	case ByTitle:
		order = " ORDER BY l.title COLLATE NOCASE"
	}

	query := "SELECT " + linkColumns + linkFrom + whereClause + order
	if q.Limit > 0 && q.Tag == "" {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	links, err := s.queryLinks(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	// Tags are stored as JSON, so the tag filter runs here.
	if q.Tag != "" {
		filtered := links[:0]
		for _, l := range links {
			if l.HasTag(q.Tag) {
				filtered = append(filtered, l)
			}
		}
		links = filtered
		if q.Limit > 0 && len(links) > q.Limit {
			links = links[:q.Limit]
		}
	}
	return links, nil
}

// RecordVisit logs that the link was opened at the given time.
func (s *Store) RecordVisit(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO visits (link_id, visited_at) VALUES (?, ?)", id, formatTime(at))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return fmt.Errorf("record visit: link %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("record visit: %w", err)
	}
	s.changed()
	return nil
}

func (s *Store) queryLinks(ctx context.Context, query string, args ...any) ([]*models.Link, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (*models.Link, error) {
	l := &models.Link{}
	var tags, created, updated, lastVisit string
	if err := row.Scan(
		&l.ID, &l.URL, &l.Title, &l.CategoryID, &l.Notes, &tags,
		&created, &updated, &l.VisitCount, &lastVisit,
	); err != nil {
		return nil, err
	}

	var err error
	if l.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if lastVisit != "" {
		t, err := parseTime(lastVisit)
		if err != nil {
			return nil, err
		}
		l.LastVisitedAt = &t
	}
	if err := json.Unmarshal([]byte(tags), &l.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for %s: %w", l.ID, err)
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	return l, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}
