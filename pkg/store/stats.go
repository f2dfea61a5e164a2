package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mattsolo1/grove-links/pkg/models"
)

// Stats summarizes the collection: totals, the topN most visited links, link
// counts per category and visits per day over the last days days.
func (s *Store) Stats(ctx context.Context, topN, days int) (*models.Stats, error) {
	st := &models.Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM links),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM visits),
			(SELECT COUNT(*) FROM links WHERE category_id IS NULL),
			(SELECT COUNT(*) FROM links WHERE id NOT IN (SELECT link_id FROM visits))
	`).Scan(&st.TotalLinks, &st.TotalCategories, &st.TotalVisits, &st.Uncategorized, &st.NeverVisited)
	if err != nil {
		return nil, fmt.Errorf("count totals: %w", err)
	}

	if topN > 0 {
		top, err := s.Links(ctx, LinkQuery{OrderBy: MostVisited, Limit: topN})
		if err != nil {
			return nil, err
		}
		for _, l := range top {
			if l.VisitCount > 0 {
				st.TopLinks = append(st.TopLinks, l)
			}
		}
	}

	if st.PerCategory, err = s.perCategory(ctx); err != nil {
		return nil, err
	}
	if days > 0 {
		if st.RecentVisits, err = s.visitsPerDay(ctx, days); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (s *Store) perCategory(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, COUNT(l.id), COALESCE(SUM(v.visits), 0)
		FROM categories c
		LEFT JOIN links l ON l.category_id = c.id
		LEFT JOIN (SELECT link_id, COUNT(*) AS visits FROM visits GROUP BY link_id) v ON v.link_id = l.id
		GROUP BY c.id
		ORDER BY COUNT(l.id) DESC, c.name COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("count per category: %w", err)
	}
	defer rows.Close()

	var out []models.CategoryCount
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.CategoryID, &cc.Name, &cc.Links, &cc.Visits); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (s *Store) visitsPerDay(ctx context.Context, days int) ([]models.DayCount, error) {
	since := time.Now().UTC().AddDate(0, 0, -days+1).Truncate(24 * time.Hour)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(visited_at, 1, 10) AS day, COUNT(*)
		FROM visits
		WHERE visited_at >= ?
		GROUP BY day
		ORDER BY day
	`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("count visits per day: %w", err)
	}
	defer rows.Close()

	var out []models.DayCount
	for rows.Next() {
		var day string
		var dc models.DayCount
		if err := rows.Scan(&day, &dc.Visits); err != nil {
			return nil, err
		}
		if dc.Day, err = time.Parse("2006-01-02", day); err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}
