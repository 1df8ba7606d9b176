package repo

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/foomo/docsite/content"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	dirPages     = "pages"
	dirData      = "data"
	dirStatic    = "static"
	dirTemplates = "templates"

	extPage = ".html"
	extData = ".json"
)

// Store persists the build artifacts of a single site: rendered pages,
// page metadata, static files and templates.
type Store struct {
	storage Storage
	site    string
}

// NewStore constructor, all keys are namespaced with the site name
func NewStore(storage Storage, siteName string) *Store {
	return &Store{
		storage: storage,
		site:    siteName,
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (s *Store) StorePageContent(ctx context.Context, pagePath string, data []byte) error {
	key, err := s.key(dirPages, pagePath, extPage)
	if err != nil {
		return err
	}
	return errors.Wrapf(s.storage.Write(ctx, key, data), "failed to store page %q", pagePath)
}

// LoadPageContent returns os.ErrNotExist for unknown pages
func (s *Store) LoadPageContent(ctx context.Context, pagePath string) ([]byte, error) {
	key, err := s.key(dirPages, pagePath, extPage)
	if err != nil {
		return nil, err
	}
	return s.storage.Read(ctx, key)
}

func (s *Store) StoreMetadata(ctx context.Context, pagePath string, meta *content.Metadata) error {
	key, err := s.key(dirData, pagePath, extData)
	if err != nil {
		return err
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return errors.Wrapf(err, "failed to encode metadata of %q", pagePath)
	}
	return errors.Wrapf(s.storage.Write(ctx, key, data), "failed to store metadata of %q", pagePath)
}

// LoadMetadata returns empty metadata for pages without a data file
func (s *Store) LoadMetadata(ctx context.Context, pagePath string) (*content.Metadata, error) {
	key, err := s.key(dirData, pagePath, extData)
	if err != nil {
		return nil, err
	}
	data, err := s.storage.Read(ctx, key)
	if errors.Is(err, os.ErrNotExist) {
		return &content.Metadata{}, nil
	} else if err != nil {
		return nil, err
	}
	meta := &content.Metadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, errors.Wrapf(err, "failed to decode metadata of %q", pagePath)
	}
	return meta, nil
}

// PageExists whether a rendered page is stored under pagePath
func (s *Store) PageExists(ctx context.Context, pagePath string) bool {
	_, err := s.LoadPageContent(ctx, pagePath)
	return err == nil
}

// PagePaths lists all pages with metadata in ascending order
func (s *Store) PagePaths(ctx context.Context) ([]string, error) {
	prefix := s.site + "/" + dirData + "/"
	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list page metadata")
	}
	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, extData) {
			continue
		}
		paths = append(paths, strings.TrimSuffix(strings.TrimPrefix(key, prefix), extData))
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Store) StoreStatic(ctx context.Context, staticPath string, data []byte) error {
	key, err := s.key(dirStatic, staticPath, "")
	if err != nil {
		return err
	}
	return errors.Wrapf(s.storage.Write(ctx, key, data), "failed to store static file %q", staticPath)
}

func (s *Store) LoadStatic(ctx context.Context, staticPath string) ([]byte, error) {
	key, err := s.key(dirStatic, staticPath, "")
	if err != nil {
		return nil, err
	}
	return s.storage.Read(ctx, key)
}

func (s *Store) StaticExists(ctx context.Context, staticPath string) bool {
	_, err := s.LoadStatic(ctx, staticPath)
	return err == nil
}

func (s *Store) StoreTemplate(ctx context.Context, name string, data []byte) error {
	key, err := s.key(dirTemplates, name, "")
	if err != nil {
		return err
	}
	return errors.Wrapf(s.storage.Write(ctx, key, data), "failed to store template %q", name)
}

// Templates returns all stored site templates by name
func (s *Store) Templates(ctx context.Context) (map[string][]byte, error) {
	prefix := s.site + "/" + dirTemplates + "/"
	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}
	templates := make(map[string][]byte, len(keys))
	for _, key := range keys {
		data, err := s.storage.Read(ctx, key)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read template %q", key)
		}
		templates[strings.TrimPrefix(key, prefix)] = data
	}
	return templates, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// key rejects paths that would escape their directory, those are reported
// as not existing
func (s *Store) key(dir, p, ext string) (string, error) {
	if !IsCleanPath(p) {
		return "", os.ErrNotExist
	}
	return s.site + "/" + dir + "/" + p + ext, nil
}

// IsCleanPath relative, already cleaned and not escaping its root
func IsCleanPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || path.Clean(p) != p {
		return false
	}
	return p != ".." && !strings.HasPrefix(p, "../")
}
