package sitemap

import (
	"io"
	"strings"
	"time"

	"github.com/foomo/docsite/content"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// timestamps without a zone are read as UTC
var naiveTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

type (
	documentSet  map[string]*documentNode
	documentNode struct {
		Title      string      `json:"title"`
		Path       string      `json:"path"`
		Modified   *isoTime    `json:"modified"`
		ChangeFreq string      `json:"changefreq"`
		Children   documentSet `json:"children"`
	}
	// isoTime accepts RFC 3339 as well as naive ISO-8601 timestamps
	isoTime time.Time
)

func (t *isoTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = isoTime(v)
		return nil
	}
	for _, layout := range naiveTimeLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = isoTime(v)
			return nil
		}
	}
	return errors.Errorf("invalid timestamp %q", s)
}

func (s documentSet) urlSet() content.URLSet {
	set := make(content.URLSet, len(s))
	for key, n := range s {
		if n == nil {
			continue
		}
		node := &content.TreeNode{
			Title:      n.Title,
			Path:       n.Path,
			ChangeFreq: n.ChangeFreq,
			Children:   n.Children.urlSet(),
		}
		if n.Modified != nil {
			modified := time.Time(*n.Modified)
			node.Modified = &modified
		}
		set[key] = node
	}
	return set
}

// Encode writes the sitemap document
func Encode(w io.Writer, set content.URLSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", content.Indent)
	return errors.Wrap(enc.Encode(set), "failed to encode sitemap")
}

// Marshal encodes the sitemap document
func Marshal(set content.URLSet) ([]byte, error) {
	data, err := json.MarshalIndent(set, "", content.Indent)
	return data, errors.Wrap(err, "failed to encode sitemap")
}

// Decode reads a sitemap document. Paths without a protocol are prefixed with
// urlRoot, keys are left as they are.
func Decode(r io.Reader, urlRoot string) (content.URLSet, error) {
	doc := documentSet{}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode sitemap")
	}
	set := doc.urlSet()
	PrefixPaths(set, urlRoot)
	return set, nil
}

// Validate whether data is a sitemap document
func Validate(data []byte) error {
	doc := documentSet{}
	return errors.Wrap(json.Unmarshal(data, &doc), "invalid sitemap document")
}

// PrefixPaths prefixes every path lacking a protocol with urlRoot in place
func PrefixPaths(set content.URLSet, urlRoot string) {
	urlRoot = strings.TrimRight(urlRoot, "/")
	if urlRoot == "" {
		return
	}
	_ = set.Walk(func(node *content.TreeNode) error {
		if !strings.Contains(node.Path, "://") {
			node.Path = urlRoot + node.Path
		}
		if node.Children == nil {
			node.Children = content.URLSet{}
		}
		return nil
	})
}
