package sitemap

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRoundTrip(t *testing.T) {
	set := Merge(Part{Tree: testTree("/help")}, Part{Tree: testTree("/labs"), Server: "https://labs.arxiv.org"})

	buf := &bytes.Buffer{}
	require.NoError(t, Encode(buf, set))
	assert.Contains(t, buf.String(), `"modified": "2024-03-01T12:00:00Z"`)

	decoded, err := Decode(buf, "")
	require.NoError(t, err)
	assert.Equal(t, set, decoded)
}

func TestDecodePrefixesRelativePaths(t *testing.T) {
	set := Merge(Part{Tree: testTree("/help")}, Part{Tree: testTree("/labs"), Server: "https://labs.arxiv.org"})
	data, err := Marshal(set)
	require.NoError(t, err)

	decoded, err := Decode(bytes.NewReader(data), "https://arxiv.org/")
	require.NoError(t, err)

	help := decoded["/help"]
	require.NotNil(t, help)
	assert.Equal(t, "https://arxiv.org/help", help.Path)
	assert.Equal(t, "https://arxiv.org/help/about", help.Children["/help/about"].Path)
	assert.Equal(t, "https://labs.arxiv.org/labs", decoded["https://labs.arxiv.org/labs"].Path)

	PrefixPaths(decoded, "https://arxiv.org")
	assert.Equal(t, "https://arxiv.org/help", decoded["/help"].Path, "prefix is applied once")
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader("{"), "")
	assert.Error(t, err)
}

func TestDecodeNaiveTimestamps(t *testing.T) {
	doc := `{"/": {"title": "arXiv", "path": "/", "modified": "2019-01-04T22:05:42", "children": {
		"/help": {"title": "Help", "path": "/help", "modified": "2019-01-05T08:00:00.123456", "children": {}},
		"/about": {"title": "About", "path": "/about", "modified": "2019-01-06T10:00:00+01:00", "children": {}},
		"/new": {"title": "New", "path": "/new", "modified": null, "children": {}}
	}}}`
	set, err := Decode(strings.NewReader(doc), "")
	require.NoError(t, err)

	root := set["/"]
	require.NotNil(t, root.Modified)
	assert.Equal(t, time.Date(2019, 1, 4, 22, 5, 42, 0, time.UTC), *root.Modified)
	assert.Equal(t, time.Date(2019, 1, 5, 8, 0, 0, 123456000, time.UTC), *root.Children["/help"].Modified)
	assert.True(t, time.Date(2019, 1, 6, 9, 0, 0, 0, time.UTC).Equal(*root.Children["/about"].Modified))
	assert.Nil(t, root.Children["/new"].Modified)

	_, err = Decode(strings.NewReader(`{"/": {"path": "/", "modified": "yesterday"}}`), "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	data, err := Marshal(testTree("/help"))
	require.NoError(t, err)
	assert.NoError(t, Validate(data))
	assert.Error(t, Validate([]byte("not json")))
	assert.Error(t, Validate([]byte(`{"/": {"modified": 42}}`)))
}
