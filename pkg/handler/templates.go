package handler

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/pkg/errors"
)

const (
	TemplatePage    = "page.html"
	TemplateDeleted = "deleted.html"
	TemplateSearch  = "search.html"
	TemplateSitemap = "sitemap.html"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

var funcs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"simpleDate": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"inc": func(i int) int {
		return i + 1
	},
	"dec": func(i int) int {
		return i - 1
	},
}

// Templates layouts by name. Site templates replace the embedded defaults
// of the same name.
type Templates struct {
	set map[string]*template.Template
}

// NewTemplates parses the embedded defaults and then overrides
func NewTemplates(overrides map[string][]byte) (*Templates, error) {
	t := &Templates{set: map[string]*template.Template{}}
	err := fs.WalkDir(defaultTemplates, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := defaultTemplates.ReadFile(p)
		if err != nil {
			return err
		}
		return t.add(path.Base(p), data)
	})
	if err != nil {
		return nil, err
	}
	for name, data := range overrides {
		if err := t.add(name, data); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Has whether a template called name exists
func (t *Templates) Has(name string) bool {
	_, ok := t.set[name]
	return ok
}

func (t *Templates) Execute(w io.Writer, name string, data any) error {
	tpl, ok := t.set[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return errors.Wrapf(tpl.Execute(w, data), "failed to execute template %q", name)
}

func (t *Templates) add(name string, data []byte) error {
	tpl, err := template.New(name).Funcs(funcs).Parse(string(data))
	if err != nil {
		return errors.Wrapf(err, "failed to parse template %q", name)
	}
	t.set[name] = tpl
	return nil
}
