// Package config provides configuration structures and utilities for spider.
// It defines the crawl options, the depth policy, and the optional YAML
// configuration file with per-host request settings.
package config
