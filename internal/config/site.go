package config

import "strings"

// SiteConfig holds request settings for one host.
type SiteConfig struct {
	// Cookie is sent with every request to the host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to the host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for the host.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .spider configuration file.
type File struct {
	// Defaults is applied to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps a host (with port, if non-default) to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// ForHost returns the settings for host, merging site values over the
// defaults. Host matching is case-insensitive.
func (f *File) ForHost(host string) SiteConfig {
	if f == nil {
		return SiteConfig{}
	}

	result := SiteConfig{
		Cookie:    f.Defaults.Cookie,
		UserAgent: f.Defaults.UserAgent,
	}
	if len(f.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(f.Defaults.Headers))
		for k, v := range f.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := f.Sites[host]
	if !ok {
		for key, s := range f.Sites {
			if strings.EqualFold(key, host) {
				site, ok = s, true
				break
			}
		}
	}
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}
