package config

import "maps"

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing selectors and request headers per documentation site.
type SiteConfig struct {
	// Prefix overrides the path prefix used by discover.
	Prefix string `yaml:"prefix,omitempty"`

	// NavSelector overrides the navigation region selector.
	NavSelector string `yaml:"navSelector,omitempty"`

	// ContentSelector overrides the content container selector.
	ContentSelector string `yaml:"contentSelector,omitempty"`

	// IgnorePatterns are URL path patterns excluded from discovery.
	// Patterns use glob syntax (e.g., "/docs/archive/*", "*.pdf").
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// UserAgent overrides the browser user agent.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is an HTTP cookie sent with every request to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent with every request to this site.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .docscrape configuration file.
type File struct {
	// Sites maps hosts (with port, if any) to their site-specific configurations.
	// Keys are hosts without the scheme (e.g., "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
// The returned Headers map is a fresh copy and may be modified.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if siteConfig.Prefix != "" {
		result.Prefix = siteConfig.Prefix
	}
	if siteConfig.NavSelector != "" {
		result.NavSelector = siteConfig.NavSelector
	}
	if siteConfig.ContentSelector != "" {
		result.ContentSelector = siteConfig.ContentSelector
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(siteConfig.Headers))
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}

	return result
}

// ExtraHeaders returns the HTTP headers to send for this site, including
// the Cookie header when a cookie is configured. It returns nil when there
// is nothing to send.
func (sc SiteConfig) ExtraHeaders() map[string]string {
	if sc.Cookie == "" && len(sc.Headers) == 0 {
		return nil
	}
	headers := make(map[string]string, len(sc.Headers)+1)
	maps.Copy(headers, sc.Headers)
	if sc.Cookie != "" {
		headers["Cookie"] = sc.Cookie
	}
	return headers
}

// ApplySite copies the site's overrides into c. Options the user set
// explicitly on the command line win over the site configuration:
// explicit is asked with the flag name ("prefix", "nav-selector",
// "content-selector", "user-agent") and may be nil.
func (c *Config) ApplySite(sc SiteConfig, explicit func(flag string) bool) {
	set := func(flag string) bool {
		return explicit != nil && explicit(flag)
	}

	if sc.Prefix != "" && !set("prefix") {
		c.Prefix = sc.Prefix
	}
	if sc.NavSelector != "" && !set("nav-selector") {
		c.NavSelector = sc.NavSelector
	}
	if sc.ContentSelector != "" && !set("content-selector") {
		c.ContentSelector = sc.ContentSelector
	}
	if sc.UserAgent != "" && !set("user-agent") {
		c.UserAgent = sc.UserAgent
	}
	if len(sc.IgnorePatterns) > 0 {
		c.IgnorePatterns = sc.IgnorePatterns
	}
}
