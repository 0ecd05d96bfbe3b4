// Package content loads the structured storefront copy that does not fit a
// flat translation map: ordered how-it-works steps, testimonial entries and
// about-page statistics, per locale, from YAML files. Long-form bodies may
// be written in markdown and are sanitized before rendering.
package content

import (
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stat is a headline figure on the about section.
type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
	Icon  string `yaml:"icon"`
}

// Step is one entry of the how-it-works walkthrough, rendered in file order.
type Step struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// Testimonial is a customer quote.
type Testimonial struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Text     string `yaml:"text"`
	Rating   int    `yaml:"rating"`
}

// Contact groups the static contact channels shown in the footer and the
// contact section.
type Contact struct {
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	Location string `yaml:"location"`
}

// Site is the full localized copy for one language.
type Site struct {
	AboutBody    string        `yaml:"about_body"` // markdown
	Stats        []Stat        `yaml:"stats"`
	Steps        []Step        `yaml:"steps"`
	Testimonials []Testimonial `yaml:"testimonials"`
	Contact      Contact       `yaml:"contact"`
}

// AboutHTML returns the markdown about body rendered and sanitized.
func (s Site) AboutHTML() template.HTML {
	if strings.TrimSpace(s.AboutBody) == "" {
		return ""
	}
	return RenderMarkdown(s.AboutBody)
}

// Library holds the copy for every loaded locale with a fallback chain.
type Library struct {
	sites    map[string]Site
	fallback string
}

// Load reads site.<locale>.yaml from fsys for each locale. The fallback
// locale's file must exist; other locales may be missing and resolve to it.
func Load(fsys fs.FS, fallback string, locales []string) (*Library, error) {
	lib := &Library{sites: map[string]Site{}, fallback: fallback}
	for _, l := range locales {
		raw, err := fs.ReadFile(fsys, "site."+l+".yaml")
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("load site copy %s: %w", l, err)
			}
			continue
		}
		var s Site
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("parse site copy %s: %w", l, err)
		}
		lib.sites[l] = s
	}
	if _, ok := lib.sites[fallback]; !ok {
		return nil, fmt.Errorf("fallback site copy %s not loaded", fallback)
	}
	return lib, nil
}

// Site returns the copy for lang, falling back to the default locale.
func (l *Library) Site(lang string) Site {
	if s, ok := l.sites[lang]; ok {
		return s
	}
	return l.sites[l.fallback]
}
