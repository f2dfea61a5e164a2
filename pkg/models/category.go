package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups links. Deleting a category leaves its links uncategorized.
type Category struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Color     string    `json:"color,omitempty" yaml:"color,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	LinkCount int       `json:"link_count" yaml:"-"`
}

// NewCategory returns a category named name with inner whitespace collapsed.
func NewCategory(name string) (*Category, error) {
	name = CleanName(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CleanName trims and collapses whitespace in a category name.
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
