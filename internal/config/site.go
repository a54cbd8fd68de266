package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/privacyscan/internal/domain"
	"github.com/nao1215/privacyscan/internal/scoring"
)

// SiteConfig holds settings for a single scanned site.
type SiteConfig struct {
	// RootDomain overrides the root domain derived from the scan URL.
	// It must itself be a registrable domain such as "example.co.uk".
	RootDomain string `yaml:"rootDomain,omitempty"`

	// Note documents the entry. It is not used by privacyscan.
	Note string `yaml:"note,omitempty"`
}

// File represents the structure of the .privacyscan configuration file.
type File struct {
	// Labels overrides the score thresholds of the Safe and Caution labels.
	Labels *scoring.Thresholds `yaml:"labels,omitempty"`

	// Sites maps a scan URL or host name to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every site unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a scan URL, merged over the
// defaults. Entries are matched by the normalized URL first and by host
// name second.
func (cf *File) GetSiteConfig(rawURL string) SiteConfig {
	result := cf.Defaults

	site, ok := cf.lookup(rawURL)
	if !ok {
		return result
	}
	if site.RootDomain != "" {
		result.RootDomain = site.RootDomain
	}
	if site.Note != "" {
		result.Note = site.Note
	}
	return result
}

func (cf *File) lookup(rawURL string) (SiteConfig, bool) {
	if site, ok := cf.Sites[rawURL]; ok {
		return site, true
	}

	normalized, err := domain.NormalizeURL(rawURL)
	if err != nil {
		return SiteConfig{}, false
	}
	if site, ok := cf.Sites[normalized]; ok {
		return site, true
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return SiteConfig{}, false
	}
	site, ok := cf.Sites[strings.ToLower(u.Hostname())]
	return site, ok
}

// Validate checks the label thresholds and every rootDomain override.
func (cf *File) Validate() error {
	if cf.Labels != nil {
		if err := cf.Labels.Validate(); err != nil {
			return err
		}
	}

	check := func(name string, site SiteConfig) error {
		if site.RootDomain == "" {
			return nil
		}
		if _, err := domain.RootDomain(site.RootDomain); err != nil {
			return fmt.Errorf("%w for %s: %q: %w", ErrInvalidSiteRoot, name, site.RootDomain, err)
		}
		return nil
	}

	if err := check("defaults", cf.Defaults); err != nil {
		return err
	}
	for name, site := range cf.Sites {
		if err := check(name, site); err != nil {
			return err
		}
	}
	return nil
}
