package handler

import (
	"bytes"
	"net/http"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/sitemap"
	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type (
	// Sitemap serves the merged sitemap of all sites
	Sitemap struct {
		l         *zap.Logger
		repo      *sitemap.Repo
		templates *Templates
		router    chi.Router
	}
	SitemapData struct {
		URLSet content.URLSet
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewSitemap(l *zap.Logger, repo *sitemap.Repo, templates *Templates) *Sitemap {
	inst := &Sitemap{
		l:         l.Named("http.sitemap"),
		repo:      repo,
		templates: templates,
	}
	r := chi.NewRouter()
	r.Get(string(RouteSitemapXML), inst.serveXML)
	r.Get(string(RouteSitemapHTML), inst.serveHTML)
	inst.router = r
	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *Sitemap) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *Sitemap) serveXML(w http.ResponseWriter, r *http.Request) {
	data, err := sitemap.MarshalXML(h.repo.URLSet(URLRoot(r)))
	if err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(data)
}

func (h *Sitemap) serveHTML(w http.ResponseWriter, r *http.Request) {
	buf := &bytes.Buffer{}
	if err := h.templates.Execute(buf, TemplateSitemap, SitemapData{URLSet: h.repo.URLSet(URLRoot(r))}); err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// URLRoot scheme and host the request was made to, with a trailing slash
func URLRoot(r *http.Request) string {
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}
