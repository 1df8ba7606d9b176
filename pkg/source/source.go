// Package source loads markdown pages, static files and templates from the
// source directory of a site.
package source

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/site"
	"github.com/foomo/docsite/pkg/vcs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TemplatesDir directory below the source path holding site templates
const TemplatesDir = "_templates"

type (
	Source struct {
		l      *zap.Logger
		cfg    site.Config
		root   string
		vcs    vcs.VCS
		vcsSet bool
		mu     sync.Mutex
		titles map[string]string

		// the repository wide version is looked up once
		versionOnce sync.Once
		version     *vcs.Version
	}
	Option func(*Source)
	// File a file below the source path
	File struct {
		// Path relative, slash separated key
		Path string
		// Filename absolute path on disk
		Filename string
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithVCS overrides repository detection, nil disables version metadata
func WithVCS(v vcs.VCS) Option {
	return func(o *Source) {
		o.vcs = v
		o.vcsSet = true
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, cfg site.Config, opts ...Option) (*Source, error) {
	root, err := filepath.Abs(cfg.SourcePath)
	if err != nil {
		return nil, errors.Wrap(err, "invalid source path")
	}
	if info, err := os.Stat(root); err != nil {
		return nil, errors.Wrap(err, "invalid source path")
	} else if !info.IsDir() {
		return nil, errors.Errorf("source path %q is not a directory", root)
	}

	inst := &Source{
		l:      l.Named("source").With(zap.String("site", cfg.Name)),
		cfg:    cfg,
		root:   root,
		titles: map[string]string{},
	}

	for _, opt := range opts {
		opt(inst)
	}

	if !inst.vcsSet {
		if g, err := vcs.OpenGit(inst.l, root); err != nil {
			inst.l.Info("no version control metadata available", zap.Error(err))
		} else {
			inst.vcs = g
		}
	}
	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (s *Source) Root() string {
	return s.root
}

// PagePaths all markdown pages without extension, sorted
func (s *Source) PagePaths() ([]string, error) {
	var pagePaths []string
	err := s.walk(s.root, func(key, _ string) {
		if strings.HasSuffix(key, content.MarkdownExt) {
			pagePaths = append(pagePaths, strings.TrimSuffix(key, content.MarkdownExt))
		}
	})
	sort.Strings(pagePaths)
	return pagePaths, err
}

// StaticFiles everything but markdown and dot files outside of directories
// starting with an underscore
func (s *Source) StaticFiles() ([]File, error) {
	var files []File
	err := s.walk(s.root, func(key, filename string) {
		if strings.HasSuffix(key, content.MarkdownExt) || strings.HasPrefix(key, "_") {
			return
		}
		files = append(files, File{Path: key, Filename: filename})
	})
	return files, err
}

// TemplateFiles html templates below TemplatesDir, keyed relative to it
func (s *Source) TemplateFiles() ([]File, error) {
	dir := filepath.Join(s.root, TemplatesDir)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var files []File
	err := s.walk(dir, func(key, filename string) {
		if strings.HasSuffix(key, ".html") {
			files = append(files, File{Path: key, Filename: filename})
		}
	})
	return files, err
}

// PageExists whether a markdown source exists for pagePath
func (s *Source) PageExists(pagePath string) bool {
	info, err := os.Stat(s.filename(pagePath))
	return err == nil && !info.IsDir()
}

// LoadPage reads a page with its metadata, including its parents
func (s *Source) LoadPage(pagePath string) (*content.SourcePage, error) {
	page, err := s.loadPage(pagePath)
	if err != nil {
		return nil, err
	}
	page.Metadata.Parents = s.parents(pagePath)
	return page, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (s *Source) loadPage(pagePath string) (*content.SourcePage, error) {
	filename := s.filename(pagePath)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read page %q", pagePath)
	}
	env, body, err := parseFrontMatter(data)
	if err != nil {
		return nil, errors.Wrapf(err, "page %q", pagePath)
	}

	meta := env.metadata()
	meta.Title = title(env, body, pagePath)
	commit := s.lastCommit(filename)
	meta.Modified = modified(filename, commit)
	s.addVersionInfo(meta, filename, commit)

	s.mu.Lock()
	s.titles[pagePath] = meta.Title
	s.mu.Unlock()

	return &content.SourcePage{
		PagePath: pagePath,
		Title:    meta.Title,
		Content:  body,
		Metadata: meta,
	}, nil
}

func (s *Source) title(pagePath string) (string, bool) {
	s.mu.Lock()
	t, ok := s.titles[pagePath]
	s.mu.Unlock()
	if ok {
		return t, true
	}
	data, err := os.ReadFile(s.filename(pagePath))
	if err != nil {
		return "", false
	}
	env, body, err := parseFrontMatter(data)
	if err != nil {
		return "", false
	}
	t = title(env, body, pagePath)
	s.mu.Lock()
	s.titles[pagePath] = t
	s.mu.Unlock()
	return t, true
}

// parents for "a/b/c" checks "a" and "a/b", falling back to their index pages
func (s *Source) parents(pagePath string) []content.Parent {
	parts := strings.Split(pagePath, content.PathSeparator)
	var parents []content.Parent
	for i := 1; i < len(parts); i++ {
		ancestor := strings.Join(parts[:i], content.PathSeparator)
		if s.PageExists(ancestor) {
			if t, ok := s.title(ancestor); ok {
				parents = append(parents, content.Parent{PagePath: ancestor, Title: t})
			}
			continue
		}
		index := path.Join(ancestor, content.IndexName)
		if s.PageExists(index) {
			if t, ok := s.title(index); ok {
				parents = append(parents, content.Parent{PagePath: index, Title: t, PathForReference: ancestor})
			}
		}
	}
	return parents
}

func (s *Source) lastCommit(filename string) *vcs.Commit {
	if s.vcs == nil {
		return nil
	}
	commit, err := s.vcs.LastCommit(filename)
	if err != nil {
		s.l.Debug("could not get last commit", zap.String("file", filename), zap.Error(err))
		return nil
	}
	return commit
}

func (s *Source) lastVersion() *vcs.Version {
	s.versionOnce.Do(func() {
		version, err := s.vcs.LastVersion()
		if err != nil {
			s.l.Debug("could not get last version", zap.Error(err))
			return
		}
		s.version = version
	})
	return s.version
}

// modified last commit time, the file system time if there is none
func modified(filename string, commit *vcs.Commit) time.Time {
	if commit != nil {
		return commit.Time.UTC()
	}
	info, err := os.Stat(filename)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime().UTC()
}

func (s *Source) addVersionInfo(meta *content.Metadata, filename string, commit *vcs.Commit) {
	if s.vcs == nil {
		return
	}
	if commit != nil {
		meta.SourceURL = commit.URL
	}
	if version := s.lastVersion(); version != nil {
		meta.Version = version.Name
		meta.VersionURL = version.URL
	}
	history, err := s.vcs.RevisionHistory(filename)
	if err != nil {
		s.l.Debug("could not get revision history", zap.String("file", filename), zap.Error(err))
		return
	}
	meta.History = history
}

func (s *Source) filename(pagePath string) string {
	return filepath.Join(s.root, filepath.FromSlash(pagePath)+content.MarkdownExt)
}

// walk calls fn for every regular file below dir, skipping dot files and
// directories
func (s *Source) walk(dir string, fn func(key, filename string)) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		fn(filepath.ToSlash(rel), p)
		return nil
	})
}
