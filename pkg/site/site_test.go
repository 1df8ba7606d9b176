package site

import (
	"context"
	"testing"
	"time"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testModified = time.Date(2018, 12, 18, 16, 1, 23, 0, time.UTC)

func testConfig(prefix string) Config {
	return Config{
		Name:       "docs",
		HumanName:  "Test site",
		URLPrefix:  prefix,
		SourcePath: "/src",
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		prefix, pagePath string
		parent, pattern  string
	}{
		{"/", "index", "/", "/"},
		{"/", "foo", "/", "/foo"},
		{"/", "baz/index", "/baz", "/baz"},
		{"/", "a/b/index", "/a/b", "/a/b"},
		{"/", "a/b/c", "/a/b", "/a/b/c"},
		{"/", "a//b/", "/a", "/a/b"},
		{"", "foo", "/", "/foo"},
		{"/docs", "index", "/docs", "/docs"},
		{"/docs/", "index", "/docs", "/docs"},
		{"docs", "foo", "/docs", "/docs/foo"},
		{"/docs", "baz/index", "/docs/baz", "/docs/baz"},
		{"/docs", "baz/qux", "/docs/baz", "/docs/baz/qux"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.pagePath, func(t *testing.T) {
			parent, pattern := Normalize(testConfig(tt.prefix), tt.pagePath)
			assert.Equal(t, tt.parent, parent)
			assert.Equal(t, tt.pattern, pattern)
		})
	}
}

func TestNormalizeIndexPagesContributeNoSegment(t *testing.T) {
	for _, pagePath := range []string{"x/index", "x/y/index", "x/y/z/index"} {
		parent, pattern := Normalize(testConfig("/"), pagePath)
		want := "/" + pagePath[:len(pagePath)-len("/index")]
		assert.Equal(t, want, parent)
		assert.Equal(t, parent, pattern)
	}
}

func TestBuildTree(t *testing.T) {
	cfg := testConfig("/")
	meta := func(title string) *content.Metadata {
		return &content.Metadata{Title: title, Modified: testModified}
	}
	entries := []Entry{
		NewEntry(cfg, "index", meta("Home")),
		NewEntry(cfg, "foo", meta("Foo")),
		NewEntry(cfg, "baz/index", meta("Baz")),
	}
	tree := NewTreeBuilder(zaptest.NewLogger(t), cfg).BuildTree(entries)

	modified := testModified
	expected := content.URLSet{
		"/": {
			Title:    "Home",
			Path:     "/",
			Modified: &modified,
			Children: content.URLSet{
				"/foo": {Title: "Foo", Path: "/foo", Modified: &modified, Children: content.URLSet{}},
				"/baz": {Title: "Baz", Path: "/baz", Modified: &modified, Children: content.URLSet{}},
			},
		},
	}
	assert.Equal(t, expected, tree)
}

func TestBuildTreePlaceholdersAndPrefix(t *testing.T) {
	cfg := testConfig("/docs")
	entries := []Entry{
		NewEntry(cfg, "a/b/c", &content.Metadata{Title: "C"}),
		NewEntry(cfg, "a/b/d/index", &content.Metadata{Title: "D"}),
	}
	tree := NewTreeBuilder(zaptest.NewLogger(t), cfg).BuildTree(entries)

	root := tree["/docs"]
	require.NotNil(t, root)
	assert.Equal(t, "Test site", root.Title)
	a := root.Children["/docs/a"]
	require.NotNil(t, a)
	assert.True(t, a.IsPlaceholder())
	b := a.Children["/docs/a/b"]
	require.NotNil(t, b)
	assert.True(t, b.IsPlaceholder())
	assert.Equal(t, "C", b.Children["/docs/a/b/c"].Title)
	assert.Equal(t, "D", b.Children["/docs/a/b/d"].Title)
	assert.Nil(t, b.Children["/docs/a/b/c"].Modified)

	// placeholders are filled in by later index pages
	entries = append(entries, NewEntry(cfg, "a/index", &content.Metadata{Title: "A"}))
	tree = NewTreeBuilder(zaptest.NewLogger(t), cfg).BuildTree(entries)
	assert.Equal(t, "A", tree["/docs"].Children["/docs/a"].Title)
	assert.Len(t, tree["/docs"].Children["/docs/a"].Children, 1)
}

func TestBuildTreeExcludesDeletedAndRedirects(t *testing.T) {
	cfg := testConfig("/")
	entries := []Entry{
		NewEntry(cfg, "ok", &content.Metadata{Title: "Ok"}),
		NewEntry(cfg, "gone", &content.Metadata{Title: "Gone", Response: &content.Response{Deleted: true}}),
		NewEntry(cfg, "moved", &content.Metadata{Title: "Moved", Response: &content.Response{Status: 301, Location: "ok"}}),
		NewEntry(cfg, "teapot/index", &content.Metadata{Title: "Teapot", Response: &content.Response{Status: 418}}),
	}
	tree := NewTreeBuilder(zaptest.NewLogger(t), cfg).BuildTree(entries)
	assert.Equal(t, []string{"/ok"}, tree["/"].Children.Keys())
}

func TestBuildTreeCollisionLastWins(t *testing.T) {
	cfg := testConfig("/")
	entries := []Entry{
		NewEntry(cfg, "foo/index", &content.Metadata{Title: "Index"}),
		NewEntry(cfg, "foo", &content.Metadata{Title: "Plain"}),
	}
	tree := NewTreeBuilder(zaptest.NewLogger(t), cfg).BuildTree(entries)
	// sorted by page path: "foo" < "foo/index"
	assert.Equal(t, "Index", tree["/"].Children["/foo"].Title)
	assert.Len(t, tree["/"].Children, 1)
}

func TestSite(t *testing.T) {
	ctx := context.Background()
	storage, err := repo.NewMemoryStorage(ctx)
	require.NoError(t, err)
	defer storage.Close()

	cfg := testConfig("/docs")
	store := repo.NewStore(storage, cfg.Name)
	for pagePath, title := range map[string]string{"index": "Home", "foo/index": "Foo", "foo/bar": "Bar"} {
		require.NoError(t, store.StorePageContent(ctx, pagePath, []byte("<p>"+title+"</p>")))
		require.NoError(t, store.StoreMetadata(ctx, pagePath, &content.Metadata{Title: title}))
	}
	require.NoError(t, store.StoreStatic(ctx, "logo.png", []byte("png")))
	s := New(zaptest.NewLogger(t), cfg, store)

	page, err := s.LoadPage(ctx, "foo/bar")
	require.NoError(t, err)
	assert.Equal(t, "Bar", page.Metadata.Title)

	page, err = s.LoadPage(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo/index", page.PagePath)
	assert.Equal(t, "<p>Foo</p>", string(page.Content))

	page, err = s.LoadPage(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "index", page.PagePath)

	_, err = s.LoadPage(ctx, "missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
	_, err = s.LoadPage(ctx, "../docs/index")
	assert.ErrorIs(t, err, ErrPageNotFound)

	assert.True(t, s.StaticExists(ctx, "logo.png"))

	tree, err := s.Tree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Home", tree["/docs"].Title)
	assert.Equal(t, "Foo", tree["/docs"].Children["/docs/foo"].Title)
	assert.Equal(t, "Bar", tree["/docs"].Children["/docs/foo"].Children["/docs/foo/bar"].Title)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, testConfig("/").Validate())
	assert.Error(t, Config{Name: "with-dash", HumanName: "x"}.Validate())
	assert.Error(t, Config{Name: "docs"}.Validate())
	assert.Error(t, Config{Name: "docs", HumanName: "x", URLPrefix: "https://x"}.Validate())
	assert.Equal(t, "Test site", testConfig("/").ShortName())
}
