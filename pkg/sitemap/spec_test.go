package sitemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string {
	return &s
}

func testSpec(name, prefix string) Spec {
	return Spec{
		Name:      name,
		Repo:      "git@github.com:arXiv/arxiv-docs.git",
		SourceDir: ptr("source"),
		SourceRef: "master",
		HumanName: "arXiv " + name,
		URLPrefix: ptr(prefix),
	}
}

func TestLoadSpecs(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(`sites:
  - name: help
    repo: git@github.com:arXiv/arxiv-docs.git
    source_dir: source
    source_ref: develop
    human_name: arXiv help
    url_prefix: /help
  - name: labs
    repo: git@github.com:arXiv/arxiv-labs.git
    source_dir: ""
    source_ref: v1.0
    human_name: arXiv labs
    url_prefix: ""
    server: https://labs.arxiv.org
`), 0o600))

	specs, err := LoadSpecs(filename)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "help", specs[0].Name)
	assert.Equal(t, "/help", *specs[0].URLPrefix)
	assert.Equal(t, "", *specs[1].URLPrefix)
	assert.Equal(t, "", *specs[1].SourceDir)
	assert.Equal(t, "https://labs.arxiv.org", specs[1].Server)
	require.NoError(t, ValidateSpecs(specs))
}

func TestLoadSpecsMissingFile(t *testing.T) {
	_, err := LoadSpecs(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *Spec)
		ok     bool
	}{
		{"valid", func(s *Spec) {}, true},
		{"empty prefix", func(s *Spec) { s.URLPrefix = ptr("") }, true},
		{"server", func(s *Spec) { s.Server = "https://info.arxiv.org" }, true},
		{"bad name", func(s *Spec) { s.Name = "help-2" }, false},
		{"missing name", func(s *Spec) { s.Name = "" }, false},
		{"https repo", func(s *Spec) { s.Repo = "https://github.com/arXiv/arxiv-docs" }, false},
		{"missing source dir", func(s *Spec) { s.SourceDir = nil }, false},
		{"missing ref", func(s *Spec) { s.SourceRef = "" }, false},
		{"missing human name", func(s *Spec) { s.HumanName = "" }, false},
		{"missing prefix", func(s *Spec) { s.URLPrefix = nil }, false},
		{"server without protocol", func(s *Spec) { s.Server = "info.arxiv.org" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec("help", "/help")
			tt.modify(&spec)
			err := spec.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSpec)
			}
		})
	}
}

func TestValidateSpecs(t *testing.T) {
	assert.Error(t, ValidateSpecs(nil))
	assert.NoError(t, ValidateSpecs([]Spec{testSpec("help", "/help"), testSpec("labs", "/labs")}))

	err := ValidateSpecs([]Spec{testSpec("help", "/help"), testSpec("labs", "help/")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both served at")

	other := testSpec("labs", "/help")
	other.Server = "https://labs.arxiv.org"
	assert.NoError(t, ValidateSpecs([]Spec{testSpec("help", "/help"), other}))

	err = ValidateSpecs([]Spec{testSpec("help", "/help"), testSpec("help", "/other")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestSpecSiteConfig(t *testing.T) {
	cfg := testSpec("help", "help").SiteConfig("/tmp/help")
	assert.Equal(t, "help", cfg.Name)
	assert.Equal(t, "/help", cfg.RootPath())
	assert.Equal(t, "/tmp/help", cfg.SourcePath)
	require.NoError(t, cfg.Validate())
}
