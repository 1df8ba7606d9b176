// Package render turns markdown sources into HTML. Internal references are
// written as placeholders while rendering and expanded into served URLs when
// a page is delivered.
package render

import (
	"bytes"
	"strings"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"
)

// DefaultTableClasses css classes added to every rendered table
var DefaultTableClasses = []string{"table", "is-striped"}

var pagePathKey = parser.NewContextKey()

type (
	Renderer struct {
		l            *zap.Logger
		md           goldmark.Markdown
		tableClasses []string
	}
	RendererOption func(*Renderer)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func RendererWithTableClasses(classes ...string) RendererOption {
	return func(o *Renderer) {
		o.tableClasses = append([]string{}, classes...)
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewRenderer(l *zap.Logger, opts ...RendererOption) *Renderer {
	inst := &Renderer{
		l:            l.Named("render"),
		tableClasses: append([]string{}, DefaultTableClasses...),
	}

	for _, opt := range opts {
		opt(inst)
	}

	inst.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
			parser.WithASTTransformers(
				util.Prioritized(&referenceTransformer{l: inst.l}, 100),
				util.Prioritized(&tableClassTransformer{classes: inst.tableClasses}, 200),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(&rawHTMLRenderer{writer: html.DefaultWriter}, 100),
			),
		),
	)
	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Render converts the markdown source of the page at pagePath. Links and
// images pointing into the site are replaced by placeholders, see Expand.
func (r *Renderer) Render(pagePath string, source []byte) ([]byte, error) {
	pc := parser.NewContext()
	pc.Set(pagePathKey, pagePath)

	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf, parser.WithContext(pc)); err != nil {
		return nil, errors.Wrapf(err, "failed to render %q", pagePath)
	}
	return buf.Bytes(), nil
}

// ------------------------------------------------------------------------------------------------
// ~ Transformers
// ------------------------------------------------------------------------------------------------

type referenceTransformer struct {
	l *zap.Logger
}

func (t *referenceTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	pagePath, ok := pc.Get(pagePathKey).(string)
	if !ok {
		return
	}
	source := reader.Source()
	var autoLinks []*ast.AutoLink
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		defuseAttributes(n)
		switch node := n.(type) {
		case *ast.Link:
			node.Destination = t.rewrite(pagePath, "href", node.Destination)
		case *ast.Image:
			node.Destination = t.rewrite(pagePath, "src", node.Destination)
		case *ast.AutoLink:
			if bytes.Contains(node.URL(source), []byte(placeholderScheme)) {
				autoLinks = append(autoLinks, node)
			}
		}
		return ast.WalkContinue, nil
	})
	// autolinks print their literal URL, swap them for plain links
	for _, n := range autoLinks {
		link := ast.NewLink()
		link.Destination = defuse(n.URL(source), defusedURLScheme)
		link.AppendChild(link, ast.NewString(n.Label(source)))
		n.Parent().ReplaceChild(n.Parent(), n, link)
	}
}

func defuseAttributes(n ast.Node) {
	for _, attr := range n.Attributes() {
		if v, ok := attr.Value.([]byte); ok && bytes.Contains(v, []byte(placeholderScheme)) {
			n.SetAttribute(attr.Name, defuse(v, defusedURLScheme))
		}
	}
}

// rewrite leaves the destination alone when it cannot be resolved
func (t *referenceTransformer) rewrite(pagePath, attr string, destination []byte) []byte {
	link, err := Resolve(pagePath, string(destination))
	if err != nil {
		metrics.LinkCounter.WithLabelValues(attr, "failed").Inc()
		t.l.Warn("could not resolve reference",
			zap.String("page", pagePath),
			zap.String("attr", attr),
			zap.ByteString("destination", destination),
			zap.Error(err),
		)
		return defuse(destination, defusedURLScheme)
	}
	if link.IsExternal() {
		metrics.LinkCounter.WithLabelValues(attr, "external").Inc()
		return defuse(destination, defusedURLScheme)
	}
	metrics.LinkCounter.WithLabelValues(attr, string(link.Kind)).Inc()
	return []byte(Placeholder(link))
}

// rawHTMLRenderer writes inline and block HTML like the default renderer
// with placeholder look-alikes defused
type rawHTMLRenderer struct {
	writer html.Writer
}

func (r *rawHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
}

func (r *rawHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	segments := node.(*ast.RawHTML).Segments
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		_, _ = w.Write(defuse(segment.Value(source), defusedHTMLScheme))
	}
	return ast.WalkSkipChildren, nil
}

func (r *rawHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.HTMLBlock)
	if entering {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			r.writer.SecureWrite(w, defuse(line.Value(source), defusedHTMLScheme))
		}
	} else if n.HasClosure() {
		r.writer.SecureWrite(w, defuse(n.ClosureLine.Value(source), defusedHTMLScheme))
	}
	return ast.WalkContinue, nil
}

type tableClassTransformer struct {
	classes []string
}

func (t *tableClassTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	if len(t.classes) == 0 {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != east.KindTable {
			return ast.WalkContinue, nil
		}
		var classes []string
		if existing, ok := n.AttributeString("class"); ok {
			switch v := existing.(type) {
			case []byte:
				classes = append(classes, strings.Fields(string(v))...)
			case string:
				classes = append(classes, strings.Fields(v)...)
			}
		}
		classes = append(classes, t.classes...)
		n.SetAttributeString("class", []byte(strings.Join(classes, " ")))
		return ast.WalkSkipChildren, nil
	})
}

// Placeholder token written into rendered content for an internal link
func Placeholder(link content.Link) string {
	s := placeholderScheme + string(link.Kind) + ":" + link.Target
	if link.Anchor != "" {
		s += "#" + link.Anchor
	}
	return s
}
