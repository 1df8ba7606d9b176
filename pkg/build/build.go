// Package build renders a site source into a build store
package build

import (
	"context"
	"os"
	"time"

	"github.com/foomo/docsite/pkg/metrics"
	"github.com/foomo/docsite/pkg/render"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/foomo/docsite/pkg/search"
	"github.com/foomo/docsite/pkg/site"
	"github.com/foomo/docsite/pkg/source"
	"github.com/foomo/docsite/responses"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	Builder struct {
		l             *zap.Logger
		cfg           site.Config
		source        *source.Source
		store         *repo.Store
		renderer      *render.Renderer
		indexDir      string
		staticStorage repo.Storage
	}
	BuilderOption func(*Builder)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// BuilderWithIndexDir location of the search index, only used when search
// is enabled for the site
func BuilderWithIndexDir(v string) BuilderOption {
	return func(o *Builder) {
		o.indexDir = v
	}
}

func BuilderWithRenderer(v *render.Renderer) BuilderOption {
	return func(o *Builder) {
		o.renderer = v
	}
}

// BuilderWithStaticStorage additionally uploads static files, e.g. to the
// bucket behind the site's static URL
func BuilderWithStaticStorage(v repo.Storage) BuilderOption {
	return func(o *Builder) {
		o.staticStorage = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewBuilder(l *zap.Logger, cfg site.Config, src *source.Source, store *repo.Store, opts ...BuilderOption) *Builder {
	inst := &Builder{
		l:      l.Named("build").With(zap.String("site", cfg.Name)),
		cfg:    cfg,
		source: src,
		store:  store,
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.renderer == nil {
		inst.renderer = render.NewRenderer(l)
	}
	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Build renders all pages, then indexes them and copies static files and
// templates. The first error aborts the run, partial output stays in the
// store.
func (b *Builder) Build(ctx context.Context) (*responses.Build, error) {
	start := time.Now()
	res := &responses.Build{
		RunID: uuid.New().String(),
		Site:  b.cfg.Name,
	}
	l := b.l.With(zap.String("run_id", res.RunID))
	l.Info("starting build", zap.String("source", b.source.Root()))

	err := b.build(ctx, l, res)
	res.Stats.OwnRuntime = time.Since(start).Seconds()
	metrics.BuildDuration.WithLabelValues(b.cfg.Name).Observe(res.Stats.OwnRuntime)
	if err != nil {
		metrics.BuildCounter.WithLabelValues(b.cfg.Name, "error").Inc()
		res.ErrorMessage = err.Error()
		l.Error("build failed", zap.Error(err))
		return res, err
	}
	metrics.BuildCounter.WithLabelValues(b.cfg.Name, "success").Inc()
	res.Success = true
	l.Info("build complete",
		zap.Int("pages", res.Stats.NumberOfPages),
		zap.Int("static", res.Stats.NumberOfStatic),
		zap.Int("templates", res.Stats.NumberOfTemplates),
		zap.Float64("runtime", res.Stats.OwnRuntime),
	)
	return res, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (b *Builder) build(ctx context.Context, l *zap.Logger, res *responses.Build) error {
	pages, err := b.buildPages(ctx, l, res)
	if err != nil {
		return err
	}

	var index *search.Index
	if b.cfg.SearchEnabled {
		if index, err = search.Create(l, b.indexDir); err != nil {
			return err
		}
		defer func() {
			if err := index.Close(); err != nil {
				l.Warn("failed to close index", zap.Error(err))
			}
		}()
		if err := index.AddPages(pages...); err != nil {
			return err
		}
		res.Stats.NumberOfIndexed += len(pages)
		l.Debug("added pages to index", zap.Int("count", len(pages)))
	}

	staticPaths, err := b.copyStatic(ctx, l)
	if err != nil {
		return err
	}
	res.Stats.NumberOfStatic = len(staticPaths)
	if index != nil && len(staticPaths) > 0 {
		if err := index.AddStatic(staticPaths...); err != nil {
			return err
		}
		res.Stats.NumberOfIndexed += len(staticPaths)
	}

	templates, err := b.source.TemplateFiles()
	if err != nil {
		return errors.Wrap(err, "failed to list templates")
	}
	for _, f := range templates {
		data, err := os.ReadFile(f.Filename)
		if err != nil {
			return err
		}
		if err := b.store.StoreTemplate(ctx, f.Path, data); err != nil {
			return err
		}
		l.Debug("copied template", zap.String("template", f.Path))
	}
	res.Stats.NumberOfTemplates = len(templates)
	return nil
}

func (b *Builder) buildPages(ctx context.Context, l *zap.Logger, res *responses.Build) ([]search.Page, error) {
	pagePaths, err := b.source.PagePaths()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pages")
	}

	start := time.Now()
	pages := make([]search.Page, 0, len(pagePaths))
	for _, pagePath := range pagePaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := b.source.LoadPage(pagePath)
		if err != nil {
			return nil, err
		}
		rendered, err := b.renderer.Render(pagePath, page.Content)
		if err != nil {
			return nil, err
		}
		if err := b.store.StorePageContent(ctx, pagePath, rendered); err != nil {
			return nil, err
		}
		if err := b.store.StoreMetadata(ctx, pagePath, page.Metadata); err != nil {
			return nil, err
		}
		pages = append(pages, search.Page{
			PagePath: pagePath,
			Title:    page.Title,
			Text:     render.Indexable(rendered),
		})
		l.Debug("built page", zap.String("page", pagePath))
	}
	res.Stats.NumberOfPages = len(pages)
	res.Stats.RenderRuntime = time.Since(start).Seconds()
	return pages, nil
}

func (b *Builder) copyStatic(ctx context.Context, l *zap.Logger) ([]string, error) {
	files, err := b.source.StaticFiles()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list static files")
	}
	staticPaths := make([]string, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Filename)
		if err != nil {
			return nil, err
		}
		if err := b.store.StoreStatic(ctx, f.Path, data); err != nil {
			return nil, err
		}
		if b.staticStorage != nil {
			if err := b.staticStorage.Write(ctx, f.Path, data); err != nil {
				return nil, errors.Wrapf(err, "failed to upload static file %q", f.Path)
			}
		}
		l.Debug("copied static file", zap.String("file", f.Path))
		staticPaths = append(staticPaths, f.Path)
	}
	return staticPaths, nil
}
