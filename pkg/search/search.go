// Package search maintains the full text index of a site
package search

import (
	"context"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/foomo/docsite/requests"
	"github.com/foomo/docsite/responses"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	KindPage   = "page"
	KindStatic = "static"
)

type (
	Index struct {
		l   *zap.Logger
		idx bleve.Index
	}
	// Page indexable text of a rendered page
	Page struct {
		PagePath string
		Title    string
		Text     string
	}
	document struct {
		Kind    string `json:"kind"`
		Path    string `json:"path"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// Create replaces any index at dir with an empty one, an empty dir creates
// an in memory index
func Create(l *zap.Logger, dir string) (*Index, error) {
	var (
		idx bleve.Index
		err error
	)
	if dir == "" {
		idx, err = bleve.NewMemOnly(newMapping())
	} else {
		if err := os.RemoveAll(dir); err != nil {
			return nil, errors.Wrap(err, "failed to remove previous index")
		}
		idx, err = bleve.New(dir, newMapping())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create index")
	}
	return &Index{l: l.Named("search"), idx: idx}, nil
}

// Open an existing index for querying
func Open(l *zap.Logger, dir string) (*Index, error) {
	idx, err := bleve.Open(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open index %q", dir)
	}
	return &Index{l: l.Named("search"), idx: idx}, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (i *Index) AddPages(pages ...Page) error {
	batch := i.idx.NewBatch()
	for _, p := range pages {
		if err := batch.Index(KindPage+":"+p.PagePath, document{
			Kind:    KindPage,
			Path:    p.PagePath,
			Title:   p.Title,
			Content: p.Text,
		}); err != nil {
			return errors.Wrapf(err, "failed to index page %q", p.PagePath)
		}
	}
	i.l.Debug("indexing pages", zap.Int("count", batch.Size()))
	return errors.Wrap(i.idx.Batch(batch), "failed to index pages")
}

// AddStatic indexes static files by their path only
func (i *Index) AddStatic(staticPaths ...string) error {
	batch := i.idx.NewBatch()
	for _, p := range staticPaths {
		if err := batch.Index(KindStatic+":"+p, document{
			Kind:    KindStatic,
			Path:    p,
			Content: strings.NewReplacer("/", " ", "_", " ", "-", " ", ".", " ").Replace(p),
		}); err != nil {
			return errors.Wrapf(err, "failed to index static file %q", p)
		}
	}
	return errors.Wrap(i.idx.Batch(batch), "failed to index static files")
}

// Count number of indexed documents
func (i *Index) Count() (uint64, error) {
	return i.idx.DocCount()
}

// Find runs a query string query, paging through the results
func (i *Index) Find(ctx context.Context, req *requests.Search) (*responses.Search, error) {
	req.Normalize()
	query := bleve.NewQueryStringQuery(req.Query)
	searchRequest := bleve.NewSearchRequestOptions(query, req.Limit, req.Offset(), false)
	searchRequest.Fields = []string{"kind", "path", "title"}

	result, err := i.idx.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, errors.Wrapf(err, "search for %q failed", req.Query)
	}

	res := &responses.Search{
		Query: req.Query,
		Page:  req.Page,
		Limit: req.Limit,
		Total: result.Total,
		Hits:  make([]responses.SearchHit, 0, len(result.Hits)),
		Took:  result.Took.Seconds(),
	}
	for _, hit := range result.Hits {
		res.Hits = append(res.Hits, responses.SearchHit{
			Kind:  field(hit.Fields, "kind"),
			Path:  field(hit.Fields, "path"),
			Title: field(hit.Fields, "title"),
			Score: hit.Score,
		})
	}
	return res, nil
}

func (i *Index) Close() error {
	return i.idx.Close()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func newMapping() mapping.IndexMapping {
	keyword := bleve.NewKeywordFieldMapping()
	keyword.IncludeInAll = false

	title := bleve.NewTextFieldMapping()

	text := bleve.NewTextFieldMapping()
	text.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("kind", keyword)
	doc.AddFieldMappingsAt("path", bleve.NewKeywordFieldMapping())
	doc.AddFieldMappingsAt("title", title)
	doc.AddFieldMappingsAt("content", text)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

func field(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}
