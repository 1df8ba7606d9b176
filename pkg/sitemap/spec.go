package sitemap

import (
	"fmt"
	"os"
	"strings"

	"github.com/foomo/docsite/pkg/site"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec wraps every spec validation failure
var ErrInvalidSpec = errors.New("invalid site spec")

type (
	// Spec describes one site that is part of the sitemap
	Spec struct {
		Name string `yaml:"name" json:"name"`
		// Repo git remote of the site source, e.g. git@github.com:arXiv/arxiv-docs.git
		Repo string `yaml:"repo" json:"repo"`
		// SourceDir directory of the site inside the repository, may be empty
		SourceDir *string `yaml:"source_dir" json:"source_dir"`
		// SourceRef branch or tag
		SourceRef string `yaml:"source_ref" json:"source_ref"`
		HumanName string `yaml:"human_name" json:"human_name"`
		// URLPrefix may be empty for sites served at the root of their server
		URLPrefix *string `yaml:"url_prefix" json:"url_prefix"`
		// Server optional origin the site is deployed at
		Server string `yaml:"server,omitempty" json:"server,omitempty"`
	}
	// SpecFile the document listing all sites
	SpecFile struct {
		Sites []Spec `yaml:"sites" json:"sites"`
	}
)

// LoadSpecs reads a yaml or json spec file
func LoadSpecs(filename string) ([]Spec, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read spec file")
	}
	var file SpecFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse spec file %q", filename)
	}
	return file.Sites, nil
}

func (s Spec) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Match(site.NamePattern).Error("must contain only [a-zA-Z_]")),
		validation.Field(&s.Repo, validation.Required, validation.By(func(value any) error {
			repo := value.(string)
			if !strings.Contains(repo, ":") || !strings.Contains(repo, ".git") || !strings.Contains(repo, "git@") {
				return validation.NewError("validation_git_repo", "does not look like a git repo")
			}
			return nil
		})),
		validation.Field(&s.SourceDir, validation.NotNil),
		validation.Field(&s.SourceRef, validation.Required.Error("must be a tag or branch")),
		validation.Field(&s.HumanName, validation.Required),
		validation.Field(&s.URLPrefix, validation.NotNil),
		validation.Field(&s.Server, validation.By(func(value any) error {
			if server := value.(string); server != "" && !strings.Contains(server, "://") {
				return validation.NewError("validation_server_protocol", "should have protocol")
			}
			return nil
		})),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrInvalidSpec, s.Name, err.Error())
	}
	return nil
}

// ValidateSpecs validates all specs and rejects sites sharing a server and
// url prefix, those would overwrite each other when merged
func ValidateSpecs(specs []Spec) error {
	var errs error
	if len(specs) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: no sites", ErrInvalidSpec))
	}
	seen := map[string]string{}
	names := map[string]bool{}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if names[spec.Name] {
			errs = multierr.Append(errs, fmt.Errorf("%w: duplicate name %q", ErrInvalidSpec, spec.Name))
		}
		names[spec.Name] = true
		key := spec.Server + spec.SiteConfig("").RootPath()
		if other, ok := seen[key]; ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s and %s are both served at %q", ErrInvalidSpec, other, spec.Name, key))
		}
		seen[key] = spec.Name
	}
	return errs
}

// SiteConfig configuration for building the site from sourcePath
func (s Spec) SiteConfig(sourcePath string) site.Config {
	cfg := site.Config{
		Name:       s.Name,
		HumanName:  s.HumanName,
		SourcePath: sourcePath,
	}
	if s.URLPrefix != nil {
		cfg.URLPrefix = *s.URLPrefix
	}
	return cfg
}

func (s Spec) sourceDir() string {
	if s.SourceDir == nil {
		return ""
	}
	return *s.SourceDir
}
