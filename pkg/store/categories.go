package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-links/pkg/models"
)

// ErrDuplicateName is returned when a category name is already taken.
var ErrDuplicateName = errors.New("category name already exists")

// InsertCategory stores a new category. Names are unique, ignoring case.
func (s *Store) InsertCategory(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, created_at) VALUES (?, ?, ?, ?)
	`, c.ID, c.Name, c.Color, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert category: %w", uniqueErr(err, c.Name))
	}
	s.changed()
	return nil
}

// UpdateCategory renames or recolors a category.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.db.ExecContext(ctx, "UPDATE categories SET name = ?, color = ? WHERE id = ?", c.Name, c.Color, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", uniqueErr(err, c.Name))
	}
	if err := requireAffected(res, "category", c.ID); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	s.changed()
	return nil
}

// DeleteCategory removes a category. Its links stay, uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := requireAffected(res, "category", id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.log.WithField("id", id).Debug("category deleted")
	s.changed()
	return nil
}

const categorySelect = `
	SELECT c.id, c.name, c.color, c.created_at, COUNT(l.id)
	FROM categories c
	LEFT JOIN links l ON l.category_id = c.id`

// GetCategory returns a category by id.
func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, categorySelect+" WHERE c.id = ? GROUP BY c.id", id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return c, err
}

// CategoryByName looks a category up by name, ignoring case.
func (s *Store) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	name = models.CleanName(name)
	row := s.db.QueryRowContext(ctx, categorySelect+" WHERE c.name = ? COLLATE NOCASE GROUP BY c.id", name)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return c, err
}

// Categories returns all categories sorted by name, with link counts.
func (s *Store) Categories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, categorySelect+" GROUP BY c.id ORDER BY c.name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row scanner) (*models.Category, error) {
	c := &models.Category{}
	var created string
	if err := row.Scan(&c.ID, &c.Name, &c.Color, &created, &c.LinkCount); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = t
	return c, nil
}

func uniqueErr(err error, name string) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}
	return err
}
