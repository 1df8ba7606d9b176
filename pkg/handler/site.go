package handler

import (
	"bytes"
	"html/template"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/metrics"
	"github.com/foomo/docsite/pkg/render"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/foomo/docsite/pkg/search"
	"github.com/foomo/docsite/pkg/site"
	"github.com/foomo/docsite/requests"
	"github.com/foomo/docsite/responses"
	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Site serves the pages, static files and search of a single site. It is
	// meant to be mounted at the site's root path.
	Site struct {
		l         *zap.Logger
		site      *site.Site
		urls      render.SiteURLs
		index     *search.Index
		templates *Templates
		router    chi.Router
	}
	SiteOption func(*Site)
	// Breadcrumb link to an ancestor page
	Breadcrumb struct {
		Title string
		URL   string
	}
	// PageData is passed to page and deleted templates
	PageData struct {
		Site        site.Config
		PagePath    string
		Title       string
		Content     template.HTML
		Metadata    *content.Metadata
		Breadcrumbs []Breadcrumb
		RootURL     string
		SearchURL   string
	}
	// SearchData is passed to the search template
	SearchData struct {
		Site      site.Config
		Title     string
		Query     string
		Results   *responses.Search
		RootURL   string
		SearchURL string
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// SiteWithSearchIndex enables the search route
func SiteWithSearchIndex(v *search.Index) SiteOption {
	return func(o *Site) {
		o.index = v
	}
}

func SiteWithTemplates(v *Templates) SiteOption {
	return func(o *Site) {
		o.templates = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewSite(l *zap.Logger, s *site.Site, opts ...SiteOption) (*Site, error) {
	cfg := s.Config()
	inst := &Site{
		l:    l.Named("http").With(zap.String("site", cfg.Name)),
		site: s,
		urls: render.SiteURLs{
			RootPath:  cfg.RootPath(),
			StaticURL: cfg.StaticURL,
		},
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.templates == nil {
		templates, err := NewTemplates(nil)
		if err != nil {
			return nil, err
		}
		inst.templates = templates
	}

	r := chi.NewRouter()
	if inst.index != nil {
		r.Get(string(RouteSearch), inst.serveSearch)
	}
	r.Get(string(RouteStatic), inst.serveStatic)
	r.Get(string(RouteIndex), inst.servePage)
	r.Get(string(RoutePage), inst.servePage)
	inst.router = r

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *Site) servePage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.page(w, r, strings.Trim(chi.URLParam(r, "*"), "/"))
	name := h.site.Config().Name
	metrics.PageRequestCounter.WithLabelValues(name, strconv.Itoa(status)).Inc()
	metrics.PageRequestDuration.WithLabelValues(name, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// page answers a page request and returns the status code it wrote
func (h *Site) page(w http.ResponseWriter, r *http.Request, pagePath string) int {
	if pagePath != "" && !repo.IsCleanPath(pagePath) {
		return h.notFound(w, r, errors.Errorf("invalid path %q", pagePath))
	}

	for _, ext := range []string{".html", ".htm"} {
		if bare, ok := strings.CutSuffix(pagePath, ext); ok {
			if _, err := h.site.LoadPage(r.Context(), bare); err != nil {
				return h.notFound(w, r, err)
			}
			http.Redirect(w, r, h.urls.PageURL(bare, ""), http.StatusFound)
			return http.StatusFound
		}
	}

	page, err := h.site.LoadPage(r.Context(), pagePath)
	if errors.Is(err, site.ErrPageNotFound) {
		if pagePath != "" && h.site.StaticExists(r.Context(), pagePath) {
			http.Redirect(w, r, h.urls.StaticFileURL(pagePath), http.StatusFound)
			return http.StatusFound
		}
		return h.notFound(w, r, err)
	} else if err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return http.StatusInternalServerError
	}

	meta := page.Metadata
	status := int(meta.Response.StatusCode())
	tpl := TemplatePage
	if meta.Template != "" && h.templates.Has(meta.Template) {
		tpl = meta.Template
	}
	if meta.Response != nil && meta.Response.Location != "" {
		link, err := render.Resolve(page.PagePath, meta.Response.Location)
		if err != nil {
			h.l.Warn("unresolved location", zap.String("page", page.PagePath), zap.Error(err))
		}
		w.Header().Set("Location", h.urls.URL(link))
	}
	if meta.IsDeleted() {
		status = http.StatusNotFound
		tpl = TemplateDeleted
	}

	buf := &bytes.Buffer{}
	if err := h.templates.Execute(buf, tpl, h.pageData(page)); err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return status
}

func (h *Site) pageData(page *content.Page) PageData {
	cfg := h.site.Config()
	data := PageData{
		Site:     cfg,
		PagePath: page.PagePath,
		Title:    page.Metadata.Title,
		// rendered and sanitized during the build
		Content:  template.HTML(render.Expand(page.Content, h.urls)), //nolint:gosec
		Metadata: page.Metadata,
		RootURL:  h.urls.PageURL("", ""),
	}
	if h.index != nil {
		data.SearchURL = h.searchURL()
	}
	for _, parent := range page.Metadata.Parents {
		target := parent.PagePath
		if parent.PathForReference != "" {
			target = parent.PathForReference
		}
		data.Breadcrumbs = append(data.Breadcrumbs, Breadcrumb{
			Title: parent.Title,
			URL:   h.urls.PageURL(target, ""),
		})
	}
	return data
}

func (h *Site) serveStatic(w http.ResponseWriter, r *http.Request) {
	staticPath := chi.URLParam(r, "*")
	data, err := h.site.Store().LoadStatic(r.Context(), staticPath)
	if err != nil {
		h.notFound(w, r, err)
		return
	}
	ct := mime.TypeByExtension(path.Ext(staticPath))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ct)
	_, _ = w.Write(data)
}

func (h *Site) serveSearch(w http.ResponseWriter, r *http.Request) {
	cfg := h.site.Config()
	query := r.URL.Query()
	req := requests.NewSearch(strings.TrimSpace(query.Get("q")), query.Get("l"), query.Get("p"))

	var results *responses.Search
	if req.Query != "" {
		var err error
		if results, err = h.index.Find(r.Context(), req); err != nil {
			metrics.SearchRequestCounter.WithLabelValues(cfg.Name, "error").Inc()
			httputils.BadRequestServerError(h.l, w, r, err)
			return
		}
		for i, hit := range results.Hits {
			if hit.Kind == search.KindStatic {
				results.Hits[i].URL = h.urls.StaticFileURL(hit.Path)
			} else {
				results.Hits[i].URL = h.urls.PageURL(hit.Path, "")
			}
		}
		metrics.SearchRequestCounter.WithLabelValues(cfg.Name, "success").Inc()
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		if results == nil {
			results = &responses.Search{Page: req.Page, Limit: req.Limit, Hits: []responses.SearchHit{}}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(results); err != nil {
			h.l.Error("could not encode search results", zap.Error(err))
		}
		return
	}

	buf := &bytes.Buffer{}
	err := h.templates.Execute(buf, TemplateSearch, SearchData{
		Site:      cfg,
		Title:     "Search " + cfg.ShortName(),
		Query:     req.Query,
		Results:   results,
		RootURL:   h.urls.PageURL("", ""),
		SearchURL: h.searchURL(),
	})
	if err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Site) searchURL() string {
	return strings.TrimSuffix(h.urls.RootPath, "/") + string(RouteSearch)
}

func (h *Site) notFound(w http.ResponseWriter, r *http.Request, err error) int {
	h.l.Debug("not found", zap.String("path", r.URL.Path), zap.Error(err))
	http.NotFound(w, r)
	return http.StatusNotFound
}

// PageURL link to another result page of the same query
func (d SearchData) PageURL(page int) string {
	v := url.Values{}
	v.Set("q", d.Query)
	if d.Results != nil {
		v.Set("l", strconv.Itoa(d.Results.Limit))
	}
	v.Set("p", strconv.Itoa(page))
	return d.SearchURL + "?" + v.Encode()
}
