package sitemap

import (
	"encoding/xml"
	"time"

	"github.com/foomo/docsite/content"
	"github.com/pkg/errors"
)

// Namespace of the sitemap protocol
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type (
	xmlURLSet struct {
		XMLName xml.Name `xml:"urlset"`
		Xmlns   string   `xml:"xmlns,attr"`
		URLs    []xmlURL `xml:"url"`
	}
	xmlURL struct {
		Loc        string `xml:"loc"`
		LastMod    string `xml:"lastmod,omitempty"`
		ChangeFreq string `xml:"changefreq"`
	}
)

// MarshalXML renders the set as a sitemap protocol document, one url per
// node in depth-first order
func MarshalXML(set content.URLSet) ([]byte, error) {
	doc := xmlURLSet{Xmlns: Namespace}
	_ = set.Walk(func(node *content.TreeNode) error {
		u := xmlURL{
			Loc:        node.Path,
			ChangeFreq: node.ChangeFreq,
		}
		if u.ChangeFreq == "" {
			u.ChangeFreq = content.DefaultChangeFreq
		}
		if node.Modified != nil {
			u.LastMod = node.Modified.UTC().Format(time.RFC3339)
		}
		doc.URLs = append(doc.URLs, u)
		return nil
	})
	data, err := xml.MarshalIndent(doc, "", content.Indent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode sitemap xml")
	}
	return append([]byte(xml.Header), data...), nil
}
