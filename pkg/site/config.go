package site

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NamePattern site names end up in storage keys and route names
var NamePattern = regexp.MustCompile(`^[A-Za-z_]+$`)

// Config everything a site needs to know about itself. It is passed
// explicitly to every component that works on a site.
type Config struct {
	Name           string `json:"name" yaml:"name"`
	HumanName      string `json:"human_name" yaml:"human_name"`
	HumanShortName string `json:"human_short_name" yaml:"human_short_name"`
	URLPrefix      string `json:"url_prefix" yaml:"url_prefix"`
	SourcePath     string `json:"source_path" yaml:"source_path"`
	// StaticURL optional base URL when static assets are served from a bucket or CDN
	StaticURL     string `json:"static_url" yaml:"static_url"`
	SearchEnabled bool   `json:"search_enabled" yaml:"search_enabled"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Match(NamePattern)),
		validation.Field(&c.HumanName, validation.Required),
		validation.Field(&c.URLPrefix, validation.By(func(value any) error {
			if strings.Contains(value.(string), "://") {
				return validation.NewError("validation_url_prefix", "must be a path, not an URL")
			}
			return nil
		})),
	)
}

// RootPath the configured URL prefix with a leading and without a trailing
// slash, "/" for the top level
func (c Config) RootPath() string {
	p := strings.Trim(c.URLPrefix, "/")
	if p == "" {
		return "/"
	}
	return "/" + p
}

// ShortName falls back to the human name
func (c Config) ShortName() string {
	if c.HumanShortName != "" {
		return c.HumanShortName
	}
	return c.HumanName
}
