package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/site"
	"github.com/foomo/docsite/pkg/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeVCS struct {
	commits map[string]*vcs.Commit
	calls   map[string]int
}

func (f *fakeVCS) count(name string) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeVCS) LastCommit(filename string) (*vcs.Commit, error) {
	f.count("LastCommit")
	return f.commits[filepath.Base(filename)], nil
}

func (f *fakeVCS) RevisionHistory(filename string) ([]content.Revision, error) {
	f.count("RevisionHistory")
	c, ok := f.commits[filepath.Base(filename)]
	if !ok {
		return nil, nil
	}
	return []content.Revision{{URL: c.URL, Time: c.Time, Message: c.Message}}, nil
}

func (f *fakeVCS) LastVersion() (*vcs.Version, error) {
	f.count("LastVersion")
	return &vcs.Version{Name: "v1.0.0", URL: "https://github.com/arxiv/docs/releases/tag/v1.0.0"}, nil
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
		require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	}
	return dir
}

func testSource(t *testing.T, files map[string]string, opts ...Option) *Source {
	t.Helper()
	dir := writeFiles(t, files)
	s, err := New(zaptest.NewLogger(t), site.Config{Name: "docs", HumanName: "Docs", SourcePath: dir}, opts...)
	require.NoError(t, err)
	return s
}

var testFiles = map[string]string{
	"index.md":                   "---\ntitle: Home\n---\nWelcome",
	"about.md":                   "\n\n## About us\n\ntext",
	"help/index.md":              "---\ntitle: Help\ntemplate: help.html\n---\n",
	"help/faq/questions.md":      "---\nchangefreq: weekly\nresponse:\n  status: 301\n  location: ../index.md\nauthors:\n  - name: A\n---\n# FAQ",
	"help/img/logo.png":          "png",
	"help/.hidden":               "x",
	".git/config":                "x",
	"_private/notes.txt":         "x",
	"_templates/page.html":       "{{ .Content }}",
	"_templates/partials/a.html": "a",
	"_templates/readme.txt":      "ignored",
	"empty.md":                   "",
}

func TestSourceFiles(t *testing.T) {
	s := testSource(t, testFiles, WithVCS(nil))

	pagePaths, err := s.PagePaths()
	require.NoError(t, err)
	assert.Equal(t, []string{"about", "empty", "help/faq/questions", "help/index", "index"}, pagePaths)

	static, err := s.StaticFiles()
	require.NoError(t, err)
	require.Len(t, static, 1)
	assert.Equal(t, "help/img/logo.png", static[0].Path)
	assert.Equal(t, filepath.Join(s.Root(), "help", "img", "logo.png"), static[0].Filename)

	templates, err := s.TemplateFiles()
	require.NoError(t, err)
	var keys []string
	for _, f := range templates {
		keys = append(keys, f.Path)
	}
	assert.ElementsMatch(t, []string{"page.html", "partials/a.html"}, keys)
}

func TestSourceLoadPage(t *testing.T) {
	s := testSource(t, testFiles, WithVCS(nil))

	page, err := s.LoadPage("index")
	require.NoError(t, err)
	assert.Equal(t, "Home", page.Title)
	assert.Equal(t, "Welcome", strings.TrimSpace(string(page.Content)))
	assert.Empty(t, page.Metadata.Parents)
	assert.False(t, page.Metadata.Modified.IsZero(), "falls back to the file system")

	page, err = s.LoadPage("about")
	require.NoError(t, err)
	assert.Equal(t, "About us", page.Title)

	page, err = s.LoadPage("empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", page.Title)

	page, err = s.LoadPage("help/faq/questions")
	require.NoError(t, err)
	assert.Equal(t, "FAQ", page.Title)
	assert.Equal(t, "weekly", page.Metadata.ChangeFreq)
	require.NotNil(t, page.Metadata.Response)
	assert.Equal(t, 301, page.Metadata.Response.Status)
	assert.Equal(t, "../index.md", page.Metadata.Response.Location)
	assert.Equal(t, []any{map[string]any{"name": "A"}}, page.Metadata.Extra["authors"])
	assert.Equal(t, []content.Parent{{PagePath: "help/index", Title: "Help", PathForReference: "help"}}, page.Metadata.Parents)

	page, err = s.LoadPage("help/index")
	require.NoError(t, err)
	assert.Equal(t, "help.html", page.Metadata.Template)

	_, err = s.LoadPage("missing")
	assert.Error(t, err)
}

func TestSourceVersionMetadata(t *testing.T) {
	when := time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC)
	fake := &fakeVCS{commits: map[string]*vcs.Commit{
		"index.md": {Hash: "abcdef0123", Time: when, Message: "init", URL: "https://github.com/arxiv/docs/tree/abcdef01/index.md"},
	}}
	s := testSource(t, testFiles, WithVCS(fake))

	page, err := s.LoadPage("index")
	require.NoError(t, err)
	assert.Equal(t, when, page.Metadata.Modified)
	assert.Equal(t, "https://github.com/arxiv/docs/tree/abcdef01/index.md", page.Metadata.SourceURL)
	assert.Equal(t, "v1.0.0", page.Metadata.Version)
	assert.Equal(t, "https://github.com/arxiv/docs/releases/tag/v1.0.0", page.Metadata.VersionURL)
	require.Len(t, page.Metadata.History, 1)
	assert.Equal(t, "init", page.Metadata.History[0].Message)

	page, err = s.LoadPage("about")
	require.NoError(t, err)
	assert.False(t, page.Metadata.Modified.IsZero())
	assert.Empty(t, page.Metadata.SourceURL)
}

func TestSourceVersionLookups(t *testing.T) {
	fake := &fakeVCS{commits: map[string]*vcs.Commit{}}
	s := testSource(t, testFiles, WithVCS(fake))

	for _, pagePath := range []string{"about", "empty", "index"} {
		_, err := s.LoadPage(pagePath)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fake.calls["LastCommit"])
	assert.Equal(t, 3, fake.calls["RevisionHistory"])
	assert.Equal(t, 1, fake.calls["LastVersion"])
}

func TestNewRejectsMissingSource(t *testing.T) {
	_, err := New(zaptest.NewLogger(t), site.Config{Name: "docs", SourcePath: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}
