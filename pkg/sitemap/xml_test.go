package sitemap

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalXML(t *testing.T) {
	set := testTree("/help")
	PrefixPaths(set, "https://arxiv.org")

	data, err := MarshalXML(set)
	require.NoError(t, err)
	assert.Contains(t, string(data), xml.Header)
	assert.Contains(t, string(data), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	var doc xmlURLSet
	require.NoError(t, xml.Unmarshal(data, &doc))
	assert.Equal(t, []xmlURL{
		{Loc: "https://arxiv.org/help", LastMod: "2024-03-01T12:00:00Z", ChangeFreq: "monthly"},
		{Loc: "https://arxiv.org/help/about", ChangeFreq: "weekly"},
	}, doc.URLs)
	assert.NotContains(t, string(data), "<lastmod></lastmod>")
}
