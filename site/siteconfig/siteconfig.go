// Package siteconfig holds the static, compiled-in description of the site:
// its name, navigation and outbound links. It is parsed once and never changes
// for the lifetime of the process.
package siteconfig

import (
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var siteYAML []byte

type NavItem struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

type Links struct {
	GitHub   string `yaml:"github"`
	BlueSky  string `yaml:"blueSky"`
	Discord  string `yaml:"discord"`
	LinkedIn string `yaml:"linkedin"`
	Email    string `yaml:"email"`
}

type SiteConfig struct {
	Name           string    `yaml:"name"`
	Description    string    `yaml:"description"`
	Owner          string    `yaml:"owner"`
	Brand          string    `yaml:"brand"`
	BrandSuffix    string    `yaml:"brandSuffix"`
	Keywords       []string  `yaml:"keywords"`
	NavItems       []NavItem `yaml:"navItems"`
	NavMenuItems   []NavItem `yaml:"navMenuItems"`
	Links          Links     `yaml:"links"`
	ImageDomains   []string  `yaml:"imageDomains"`
	IdentityScript string    `yaml:"identityScript"`
	CMSPrefix      string    `yaml:"cmsPrefix"`
}

var (
	loadOnce sync.Once
	loaded   *SiteConfig
)

// Default returns the compiled-in configuration. The embedded file is part of
// the binary, so a parse failure is a build defect and panics.
func Default() *SiteConfig {
	loadOnce.Do(func() {
		cfg, err := parse(siteYAML)
		if err != nil {
			panic(fmt.Sprintf("siteconfig: embedded site.yaml is invalid: %v", err))
		}
		loaded = cfg
	})
	return loaded
}

func parse(data []byte) (*SiteConfig, error) {
	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing site config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *SiteConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("site name is required")
	}
	for i, item := range append(append([]NavItem{}, cfg.NavItems...), cfg.NavMenuItems...) {
		if item.Label == "" || !strings.HasPrefix(item.Href, "/") {
			return fmt.Errorf("nav item %d: label and in-site href are required", i)
		}
	}
	if cfg.CMSPrefix != "" && !strings.HasPrefix(cfg.CMSPrefix, "/") {
		return fmt.Errorf("cms prefix %q must start with /", cfg.CMSPrefix)
	}
	return nil
}

// ImageAllowed reports whether rawURL may be rendered as an image: in-site
// paths always, remote images only from the allow-listed domains over https.
func (c *SiteConfig) ImageAllowed(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return strings.HasPrefix(u.Path, "/")
	}
	if u.Scheme != "https" {
		return false
	}
	for _, d := range c.ImageDomains {
		if strings.EqualFold(u.Hostname(), d) {
			return true
		}
	}
	return false
}

// PageSlugs returns the single-segment nav targets that are served from
// markdown pages, excluding the homepage and any path in exclude.
func (c *SiteConfig) PageSlugs(exclude ...string) []string {
	skip := map[string]bool{"/": true}
	for _, e := range exclude {
		skip[e] = true
	}
	seen := map[string]bool{}
	var slugs []string
	for _, item := range c.NavItems {
		if skip[item.Href] || seen[item.Href] {
			continue
		}
		slug := strings.TrimPrefix(item.Href, "/")
		if slug == "" || strings.Contains(slug, "/") {
			continue
		}
		seen[item.Href] = true
		slugs = append(slugs, slug)
	}
	return slugs
}
