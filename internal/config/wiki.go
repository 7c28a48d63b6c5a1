package config

// WikiConfig holds per-wiki configuration for link extraction and fetching.
// Different wiki installations place article content in different containers
// and use different path conventions, so these knobs are configurable.
// The defaults reproduce the MediaWiki/Fandom conventions.
type WikiConfig struct {
	// APIBase overrides the base URL of the wiki API.
	// When empty, the URL is derived from the wiki name
	// (https://<wiki>.fandom.com).
	APIBase string `yaml:"apiBase,omitempty"`

	// ContentSelector is the CSS selector of the main content region.
	// Links outside this region (navigation, sidebars, footers) are not
	// crawlable article links.
	ContentSelector string `yaml:"contentSelector,omitempty"`

	// ArticlePrefix is the path prefix that marks an internal article link,
	// e.g. "/wiki/". Links without this prefix are external or asset links.
	ArticlePrefix string `yaml:"articlePrefix,omitempty"`

	// StripPrefixes are non-canonical identifier prefixes folded into their
	// base article, e.g. "Lore/" so that "Lore/Grimm" crawls as "Grimm".
	StripPrefixes []string `yaml:"stripPrefixes,omitempty"`

	// Headers are custom HTTP headers to include in requests to this wiki.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .wikigraph configuration file.
type File struct {
	// Wikis maps wiki names to their specific configurations.
	Wikis map[string]WikiConfig `yaml:"wikis,omitempty"`

	// Defaults contains default wiki configuration applied to all wikis
	// unless overridden in the wiki-specific configuration.
	Defaults WikiConfig `yaml:"defaults,omitempty"`
}

// GetWikiConfig returns the configuration for a specific wiki.
// It merges the wiki-specific configuration with defaults.
func (cf *File) GetWikiConfig(wikiName string) WikiConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with wiki-specific configuration if present
	if wc, ok := cf.Wikis[wikiName]; ok {
		if wc.APIBase != "" {
			result.APIBase = wc.APIBase
		}
		if wc.ContentSelector != "" {
			result.ContentSelector = wc.ContentSelector
		}
		if wc.ArticlePrefix != "" {
			result.ArticlePrefix = wc.ArticlePrefix
		}
		if len(wc.StripPrefixes) > 0 {
			result.StripPrefixes = wc.StripPrefixes
		}
		if len(wc.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range wc.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
