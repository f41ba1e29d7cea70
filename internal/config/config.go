package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultOutputDir is where images are written when -p is not given.
	DefaultOutputDir = "./data/"

	// DefaultMaxDepth applies when recursion is enabled without an explicit
	// positive level.
	DefaultMaxDepth = 5

	// DefaultPageTimeout bounds a single page request.
	DefaultPageTimeout = 10 * time.Second

	// DefaultImageTimeout bounds a single image request, body included.
	DefaultImageTimeout = 15 * time.Second

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "spider/1.0 (+https://github.com/nao1215/spider)"

	// DefaultWorkers keeps image downloads sequential.
	DefaultWorkers = 1

	// DefaultMaxBodySize limits how much of an HTML page is read. Images are
	// streamed to disk and are not subject to this limit.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "spider"
)

// Config holds all options of a crawl.
// It is populated from CLI flags (and the optional config file) and passed
// down explicitly; nothing reads it from global state.
type Config struct {
	// Seed is the URL the crawl starts from.
	Seed string

	// OutputDir is where downloaded images are written. It is created,
	// parents included, if it does not exist.
	OutputDir string

	// Recursive enables following same-origin links beyond the seed page.
	Recursive bool

	// Level is the depth requested with -l. Non-positive means "use the
	// default". Ignored unless Recursive is set.
	Level int

	// PageTimeout and ImageTimeout bound individual requests.
	PageTimeout  time.Duration
	ImageTimeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Workers is the number of concurrent image downloads per page.
	Workers int

	// Rate limits requests per second across the whole crawl. 0 disables it.
	Rate float64

	// MaxBodySize limits how many bytes of a page are read.
	MaxBodySize int64

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes requests through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// ReportFile, when set, receives a Markdown report of the crawl.
	ReportFile string

	// SaveHistory records the crawl in the history database under DBDir.
	SaveHistory bool
	DBDir       string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit config file given with -c.
	ConfigFilePath string

	// Sites holds the per-host settings loaded from the config file.
	Sites *File
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:         DefaultOutputDir,
		PageTimeout:       DefaultPageTimeout,
		ImageTimeout:      DefaultImageTimeout,
		UserAgent:         DefaultUserAgent,
		Workers:           DefaultWorkers,
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		Sites:             &File{Sites: make(map[string]SiteConfig)},
	}
}

// MaxDepth returns the effective maximum depth of the crawl.
// Without recursion only the seed page (depth 1) is processed. With
// recursion, a positive Level is used as is and anything else falls back
// to DefaultMaxDepth.
func (c *Config) MaxDepth() int {
	return EffectiveMaxDepth(c.Recursive, c.Level)
}

// EffectiveMaxDepth applies the depth policy to raw CLI values.
func EffectiveMaxDepth(recursive bool, level int) int {
	if !recursive {
		return 1
	}
	if level > 0 {
		return level
	}
	return DefaultMaxDepth
}

// XDGDataDir returns the XDG data directory for spider.
// On Linux: ~/.local/share/spider
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for spider.
// On Linux: ~/.config/spider
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Seed == "" {
		return ErrNoSeed
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.PageTimeout <= 0 || c.ImageTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Rate < 0 {
		return ErrInvalidRate
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.ProxyAddress != "" && c.UseTor {
		return ErrConflictingTransports
	}
	return nil
}
