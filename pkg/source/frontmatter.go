package source

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/foomo/docsite/content"
)

type frontMatterEnvelope struct {
	Title      string              `yaml:"title"`
	Template   string              `yaml:"template"`
	ChangeFreq string              `yaml:"changefreq"`
	Response   *responseFrontMatter `yaml:"response"`
	Custom     map[string]any      `yaml:",inline"`
}

type responseFrontMatter struct {
	Status   int    `yaml:"status"`
	Deleted  bool   `yaml:"deleted"`
	Location string `yaml:"location"`
}

// parseFrontMatter splits a markdown source into its metadata and body
func parseFrontMatter(source []byte) (frontMatterEnvelope, []byte, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return meta, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	meta.Custom = normalizeMap(meta.Custom)
	return meta, body, nil
}

func (env frontMatterEnvelope) metadata() *content.Metadata {
	meta := &content.Metadata{
		Title:      env.Title,
		Template:   env.Template,
		ChangeFreq: env.ChangeFreq,
	}
	if env.Response != nil {
		meta.Response = &content.Response{
			Status:   env.Response.Status,
			Deleted:  env.Response.Deleted,
			Location: env.Response.Location,
		}
	}
	if len(env.Custom) > 0 {
		meta.Extra = env.Custom
	}
	return meta
}

// title front matter title, first non-empty line without heading marks or
// the base name of the page
func title(env frontMatterEnvelope, body []byte, pagePath string) string {
	if env.Title != "" {
		return env.Title
	}
	for _, line := range strings.Split(string(body), "\n") {
		if cleaned := strings.TrimSpace(strings.ReplaceAll(line, "#", "")); cleaned != "" {
			return cleaned
		}
	}
	return pagePath[strings.LastIndex(pagePath, "/")+1:]
}

// normalizeMap yaml decoders may produce maps with interface keys, those
// cannot be encoded as json
func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return normalizeMap(value)
	case map[any]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = normalizeValue(item)
		}
		return out
	case time.Time:
		return value.UTC()
	default:
		return v
	}
}
