package sitemap

import (
	"context"
	"os"
	"path/filepath"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/build"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/foomo/docsite/pkg/site"
	"github.com/foomo/docsite/pkg/source"
	"github.com/foomo/docsite/pkg/vcs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	// CloneFunc checks out ref of a repository into dir
	CloneFunc func(ctx context.Context, l *zap.Logger, url, ref, dir string) error
	// Builder clones and builds every site of a spec file and merges their
	// trees into one sitemap
	Builder struct {
		l       *zap.Logger
		workDir string
		clone   CloneFunc
	}
	BuilderOption func(*Builder)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// BuilderWithWorkDir clone into v instead of a temporary directory
func BuilderWithWorkDir(v string) BuilderOption {
	return func(o *Builder) {
		o.workDir = v
	}
}

func BuilderWithCloneFunc(v CloneFunc) BuilderOption {
	return func(o *Builder) {
		o.clone = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewBuilder(l *zap.Logger, opts ...BuilderOption) *Builder {
	inst := &Builder{
		l:     l.Named("sitemap"),
		clone: vcs.Clone,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Create validates all specs before cloning anything, then builds each site
// and merges the resulting trees
func (b *Builder) Create(ctx context.Context, specs []Spec) (content.URLSet, error) {
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}

	workDir := b.workDir
	if workDir == "" {
		dir, err := os.MkdirTemp("", "docsite-sitemap-")
		if err != nil {
			return nil, errors.Wrap(err, "failed to create work dir")
		}
		defer os.RemoveAll(dir)
		workDir = dir
	}

	parts := make([]Part, 0, len(specs))
	for _, spec := range specs {
		tree, err := b.tree(ctx, spec, filepath.Join(workDir, spec.Name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build site %q", spec.Name)
		}
		parts = append(parts, Part{Tree: tree, Server: spec.Server})
	}

	set := Merge(parts...)
	b.l.Info("sitemap created", zap.Int("sites", len(specs)), zap.Int("nodes", set.Len()))
	return set, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (b *Builder) tree(ctx context.Context, spec Spec, dir string) (content.URLSet, error) {
	l := b.l.With(zap.String("site", spec.Name))
	if err := b.clone(ctx, l, spec.Repo, spec.SourceRef, dir); err != nil {
		return nil, err
	}

	cfg := spec.SiteConfig(filepath.Join(dir, filepath.FromSlash(spec.sourceDir())))
	src, err := source.New(l, cfg)
	if err != nil {
		return nil, err
	}

	storage, err := repo.NewMemoryStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer storage.Close()

	store := repo.NewStore(storage, cfg.Name)
	if _, err := build.NewBuilder(l, cfg, src, store).Build(ctx); err != nil {
		return nil, err
	}
	return site.New(l, cfg, store).Tree(ctx)
}
