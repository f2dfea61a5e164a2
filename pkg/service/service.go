package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mattsolo1/grove-links/pkg/deletion"
	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/store"
)

// Service is the core link service
type Service struct {
	Store      *store.Store
	Links      *deletion.Coordinator[*models.Link]
	Categories *deletion.Coordinator[*models.Category]
	Config     *Config

	log *logrus.Entry
}

// Config holds service configuration
type Config struct {
	DataDir        string
	Browser        string
	UndoDelay      time.Duration
	CommitAttempts int
	CommitBackoff  time.Duration
}

// New opens the store under cfg.DataDir and builds a deletion coordinator for
// links and one for categories. Extra options are applied to both
// coordinators after the ones derived from cfg.
func New(cfg *Config, log *logrus.Entry, opts ...deletion.Option) (*Service, error) {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}

	st, err := store.Open(cfg.DataDir, log.WithField("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	base := []deletion.Option{
		deletion.WithDelay(cfg.UndoDelay),
		deletion.WithLogger(log.WithField("component", "deletion")),
		deletion.WithRetry(deletion.RetryPolicy{
			Attempts: cfg.CommitAttempts,
			Backoff:  deletion.ExponentialBackoff{Base: cfg.CommitBackoff, Max: 2 * time.Second},
		}),
	}
	opts = append(base, opts...)

	return &Service{
		Store:      st,
		Links:      deletion.NewCoordinator(linkKind(st), opts...),
		Categories: deletion.NewCoordinator(categoryKind(st), opts...),
		Config:     cfg,
		log:        log,
	}, nil
}

func linkKind(st *store.Store) deletion.Kind[*models.Link] {
	return deletion.Kind[*models.Link]{
		Name:        "link",
		ID:          func(l *models.Link) string { return l.ID },
		DisplayName: func(l *models.Link) string { return l.DisplayName() },
		Delete: func(ctx context.Context, id string) error {
			return ignoreNotFound(st.DeleteLink(ctx, id))
		},
	}
}

func categoryKind(st *store.Store) deletion.Kind[*models.Category] {
	return deletion.Kind[*models.Category]{
		Name:        "category",
		ID:          func(c *models.Category) string { return c.ID },
		DisplayName: func(c *models.Category) string { return c.Name },
		Delete: func(ctx context.Context, id string) error {
			return ignoreNotFound(st.DeleteCategory(ctx, id))
		},
	}
}

// A row that is already gone needs no further deleting.
func ignoreNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// Close commits every pending deletion and closes the store. Deletions that
// could not be committed, during the flush or earlier, are returned as
// errors.
func (s *Service) Close() error {
	var g errgroup.Group
	g.Go(func() error {
		s.Links.FlushAll()
		return errors.Join(s.Links.TakeErrors()...)
	})
	g.Go(func() error {
		s.Categories.FlushAll()
		return errors.Join(s.Categories.TakeErrors()...)
	})
	flushErr := g.Wait()
	return errors.Join(flushErr, s.Store.Close())
}

// AddLink stores a new link. A category that does not exist yet is created.
func (s *Service) AddLink(ctx context.Context, rawURL, title, category string, tags []string) (*models.Link, error) {
	link, err := models.NewLink(rawURL, title)
	if err != nil {
		return nil, err
	}
	link.Tags = cleanTags(tags)

	if strings.TrimSpace(category) != "" {
		cat, err := s.ensureCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		link.CategoryID = cat.ID
	}

	if err := s.Store.InsertLink(ctx, link); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"id": link.ID, "url": link.URL}).Debug("link added")
	return link, nil
}

// ListLinks returns the stored links matching q, minus those awaiting deletion.
func (s *Service) ListLinks(ctx context.Context, q store.LinkQuery) ([]*models.Link, error) {
	links, err := s.Store.Links(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return s.Links.Visible(links), nil
}

// SearchLinks runs a full text search, minus links awaiting deletion.
func (s *Service) SearchLinks(ctx context.Context, query string, limit int) ([]*models.Link, error) {
	links, err := s.Store.SearchLinks(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search links: %w", err)
	}
	return s.Links.Visible(links), nil
}

// FindLink resolves an id or unique id prefix. Links awaiting deletion are
// reported as not found.
func (s *Service) FindLink(ctx context.Context, ref string) (*models.Link, error) {
	link, err := s.Store.FindLink(ctx, ref)
	if err != nil {
		return nil, err
	}
	if s.Links.IsPending(link.ID) {
		return nil, fmt.Errorf("link %s: %w", ref, store.ErrNotFound)
	}
	return link, nil
}

// MoveLink files the link under category, or clears its category when
// category is empty.
func (s *Service) MoveLink(ctx context.Context, ref, category string) (*models.Link, error) {
	link, err := s.FindLink(ctx, ref)
	if err != nil {
		return nil, err
	}
	link.CategoryID = ""
	if strings.TrimSpace(category) != "" {
		cat, err := s.ensureCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		link.CategoryID = cat.ID
	}
	if err := s.Store.UpdateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("move link: %w", err)
	}
	return link, nil
}

// ListCategories returns every category, minus those awaiting deletion.
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	cats, err := s.Store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return s.Categories.Visible(cats), nil
}

// AddCategory creates a category.
func (s *Service) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	cat, err := models.NewCategory(name)
	if err != nil {
		return nil, err
	}
	if err := s.releaseName(ctx, cat.Name); err != nil {
		return nil, err
	}
	if err := s.Store.InsertCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// FindCategory resolves a category by name, falling back to its id.
func (s *Service) FindCategory(ctx context.Context, ref string) (*models.Category, error) {
	cat, err := s.Store.CategoryByName(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		cat, err = s.Store.GetCategory(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if s.Categories.IsPending(cat.ID) {
		return nil, fmt.Errorf("category %s: %w", ref, store.ErrNotFound)
	}
	return cat, nil
}

// RenameCategory gives an existing category a new name.
func (s *Service) RenameCategory(ctx context.Context, ref, name string) (*models.Category, error) {
	cat, err := s.FindCategory(ctx, ref)
	if err != nil {
		return nil, err
	}
	name = models.CleanName(name)
	if name == "" {
		return nil, models.ErrEmptyName
	}
	if err := s.releaseName(ctx, name); err != nil {
		return nil, err
	}
	cat.Name = name
	if err := s.Store.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Visit records a visit to the link and opens it in the browser unless
// launch is false.
func (s *Service) Visit(ctx context.Context, link *models.Link, launch bool) error {
	if err := s.Store.RecordVisit(ctx, link.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	if !launch {
		return nil
	}
	return s.openInBrowser(link.URL)
}

// Stats summarizes the collection.
func (s *Service) Stats(ctx context.Context, topN, days int) (*models.Stats, error) {
	return s.Store.Stats(ctx, topN, days)
}

// Watch signals after every change to stored links or categories.
func (s *Service) Watch() (<-chan struct{}, func()) {
	return s.Store.Watch()
}

// releaseName commits the pending deletion of the category called name, if
// any, so the name can be taken again.
func (s *Service) releaseName(ctx context.Context, name string) error {
	cat, err := s.Store.CategoryByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up category %q: %w", name, err)
	}
	if s.Categories.IsPending(cat.ID) {
		s.log.WithField("id", cat.ID).Debug("committing pending category to reuse its name")
		s.Categories.Flush(cat.ID)
	}
	return nil
}

func (s *Service) ensureCategory(ctx context.Context, name string) (*models.Category, error) {
	cat, err := s.FindCategory(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.AddCategory(ctx, name)
}

// openInBrowser opens url with the configured browser
func (s *Service) openInBrowser(url string) error {
	browser := s.Config.Browser
	if browser == "" {
		browser = os.Getenv("BROWSER")
	}
	if browser == "" {
		switch runtime.GOOS {
		case "darwin":
			browser = "open"
		case "windows":
			browser = "explorer"
		default:
			browser = "xdg-open"
		}
	}

	cmd := exec.Command(browser, url)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", browser, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
