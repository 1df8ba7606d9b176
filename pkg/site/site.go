// Package site gives access to a built site: its pages and the navigation
// tree derived from them.
package site

import (
	"context"
	"os"
	"path"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrPageNotFound neither the page nor an index page below it exists
var ErrPageNotFound = errors.New("page not found")

type Site struct {
	l     *zap.Logger
	cfg   Config
	store *repo.Store
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, cfg Config, store *repo.Store) *Site {
	return &Site{
		l:     l.Named("site").With(zap.String("site", cfg.Name)),
		cfg:   cfg,
		store: store,
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (s *Site) Config() Config {
	return s.cfg
}

func (s *Site) Store() *repo.Store {
	return s.store
}

// Walk returns an entry for every built page
func (s *Site) Walk(ctx context.Context) ([]Entry, error) {
	pagePaths, err := s.store.PagePaths(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(pagePaths))
	for _, pagePath := range pagePaths {
		meta, err := s.store.LoadMetadata(ctx, pagePath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, NewEntry(s.cfg, pagePath, meta))
	}
	return entries, nil
}

// Tree navigation tree of the site, keyed by its root path
func (s *Site) Tree(ctx context.Context) (content.URLSet, error) {
	entries, err := s.Walk(ctx)
	if err != nil {
		return nil, err
	}
	return NewTreeBuilder(s.l, s.cfg).BuildTree(entries), nil
}

// LoadPage loads pagePath or, failing that, pagePath/index
func (s *Site) LoadPage(ctx context.Context, pagePath string) (*content.Page, error) {
	data, err := s.store.LoadPageContent(ctx, pagePath)
	if errors.Is(err, os.ErrNotExist) {
		pagePath = path.Join(pagePath, content.IndexName)
		data, err = s.store.LoadPageContent(ctx, pagePath)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrPageNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to load page %q", pagePath)
	}
	meta, err := s.store.LoadMetadata(ctx, pagePath)
	if err != nil {
		return nil, err
	}
	s.l.Debug("loaded page", zap.String("page", pagePath))
	return &content.Page{
		PagePath: pagePath,
		Content:  data,
		Metadata: meta,
	}, nil
}

// StaticExists whether a static asset is stored under staticPath
func (s *Site) StaticExists(ctx context.Context, staticPath string) bool {
	return s.store.StaticExists(ctx, staticPath)
}
