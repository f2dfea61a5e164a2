package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidURL is returned for links that are not absolute http(s) or file URLs.
	ErrInvalidURL = errors.New("invalid url")
	// ErrEmptyName is returned for categories without a name.
	ErrEmptyName = errors.New("name must not be empty")
)

// Link is a stored bookmark.
type Link struct {
	ID            string     `json:"id" yaml:"id"`
	URL           string     `json:"url" yaml:"url"`
	Title         string     `json:"title" yaml:"title"`
	CategoryID    string     `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	Notes         string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Tags          []string   `json:"tags" yaml:"tags,flow"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" yaml:"updated_at"`
	VisitCount    int        `json:"visit_count" yaml:"-"`
	LastVisitedAt *time.Time `json:"last_visited_at,omitempty" yaml:"-"`
}

// NewLink validates rawURL and returns a link with a fresh id. An empty title
// falls back to the URL's host.
func NewLink(rawURL, title string) (*Link, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		u, _ := url.Parse(normalized)
		title = u.Host
		if title == "" {
			title = normalized
		}
	}

	now := time.Now().UTC()
	return &Link{
		ID:        uuid.NewString(),
		URL:       normalized,
		Title:     title,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeURL trims rawURL, assumes https when no scheme is given and checks
// that the result is usable.
func NormalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
		}
	case "file":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return u.String(), nil
}

// DisplayName is what lists and notifications show for the link.
func (l *Link) DisplayName() string {
	if l.Title != "" {
		return l.Title
	}
	return l.URL
}

// Host returns the link's host, or "" for file links.
func (l *Link) Host() string {
	u, err := url.Parse(l.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// HasTag reports whether the link carries tag, ignoring case.
func (l *Link) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
