package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "docscrape"

	// DefaultPrefix is the path prefix links must start with to be discovered.
	DefaultPrefix = "/docs"

	// DefaultLinksFile is the file the discovered link list is written to.
	DefaultLinksFile = "links.txt"

	// DefaultOutputDir is the directory Markdown files are written to.
	DefaultOutputDir = "."

	// DefaultNavSelector selects the navigation landmark region whose anchors
	// are collected during discovery. Only the first match is used.
	DefaultNavSelector = `div[role="navigation"]`

	// DefaultContentSelector selects the content container converted to Markdown.
	DefaultContentSelector = "#page"

	// DefaultDiscoverTimeout bounds each navigation during discovery.
	DefaultDiscoverTimeout = 45 * time.Second

	// DefaultDiscoverSettle is the pause after a page is ready, giving
	// client-side rendering time to build the navigation tree.
	DefaultDiscoverSettle = 3 * time.Second

	// DefaultConvertTimeout bounds each navigation during conversion.
	DefaultConvertTimeout = 60 * time.Second

	// DefaultWaitTimeout bounds the wait for the content container to appear.
	DefaultWaitTimeout = 30 * time.Second

	// DefaultConvertSettle is the pause after the content container appears.
	DefaultConvertSettle = 2 * time.Second

	// DefaultDiscoverUserAgent identifies discovery traffic in server logs.
	DefaultDiscoverUserAgent = "Mozilla/5.0 (compatible; link-audit/1.0)"

	// DefaultDBFile is the history database file name inside the data directory.
	DefaultDBFile = "docscrape.db"
)

// DefaultBlockedResources lists the resource types aborted during discovery.
// Navigation trees never depend on them, and skipping them keeps page loads short.
func DefaultBlockedResources() []string {
	return []string{"image", "media", "font"}
}

// Config holds all configuration options for a docscrape run.
// It is populated from CLI flags, the config file and the defaults below,
// and passed explicitly to the components that need it.
type Config struct {
	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// Headless runs Chrome without a window. Defaults to true.
	Headless bool

	// ChromePath is the Chrome/Chromium executable. Empty means auto-detect.
	ChromePath string

	// ProxyServer is passed to Chrome as --proxy-server when non-empty.
	ProxyServer string

	// UserAgent overrides the browser's user agent. Empty keeps the
	// command's default (DefaultDiscoverUserAgent for discover, Chrome's own for convert).
	UserAgent string

	// BlockedResources are resource types (image, media, font, ...) whose
	// requests are aborted by the browser.
	BlockedResources []string

	// StartURL is the first page visited by discover.
	StartURL string

	// Prefix is the raw path prefix links must start with.
	Prefix string

	// LinksFile is where discover writes the sorted link list.
	LinksFile string

	// NavSelector selects the navigation region scanned for links.
	NavSelector string

	// DiscoverTimeout bounds each navigation during discovery.
	DiscoverTimeout time.Duration

	// DiscoverSettle is the fixed pause after each discovery navigation.
	DiscoverSettle time.Duration

	// FollowLinks enqueues newly discovered links so they are visited too.
	// When false only the start page is visited.
	FollowLinks bool

	// MaxPages caps the number of visited pages. 0 means unlimited.
	MaxPages int

	// IgnorePatterns are path globs excluded from the discovered set.
	// They come from the config file only.
	IgnorePatterns []string

	// Input is a single URL or a path to a text file with one URL per line.
	Input string

	// OutputDir is where convert writes Markdown files.
	OutputDir string

	// ContentSelector selects the container whose inner HTML is converted.
	ContentSelector string

	// ConvertTimeout bounds each navigation during conversion.
	ConvertTimeout time.Duration

	// WaitTimeout bounds the wait for the content container.
	WaitTimeout time.Duration

	// ConvertSettle is the fixed pause after the content container appears.
	ConvertSettle time.Duration

	// AbsoluteLinks rewrites relative links and images in the Markdown
	// output to absolute addresses based on the page URL.
	AbsoluteLinks bool

	// ReportFile, when set, receives a Markdown report of the run.
	ReportFile string

	// DBDir is the directory of the SQLite history database.
	DBDir string

	// SaveToDB records runs in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Headless:         true,
		BlockedResources: DefaultBlockedResources(),
		Prefix:           DefaultPrefix,
		LinksFile:        DefaultLinksFile,
		NavSelector:      DefaultNavSelector,
		DiscoverTimeout:  DefaultDiscoverTimeout,
		DiscoverSettle:   DefaultDiscoverSettle,
		OutputDir:        DefaultOutputDir,
		ContentSelector:  DefaultContentSelector,
		ConvertTimeout:   DefaultConvertTimeout,
		WaitTimeout:      DefaultWaitTimeout,
		ConvertSettle:    DefaultConvertSettle,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
	}
}

// XDGDataDir returns the XDG data directory for docscrape.
// On Linux: ~/.local/share/docscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docscrape.
// On Linux: ~/.config/docscrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ValidateDiscover checks the options used by the discover command.
// It returns the first problem found.
func (c *Config) ValidateDiscover() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	if c.LinksFile == "" {
		return ErrEmptyOutput
	}
	if c.NavSelector == "" {
		return ErrEmptySelector
	}
	if c.DiscoverTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.DiscoverSettle < 0 {
		return ErrInvalidSettleDelay
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	return nil
}

// ValidateConvert checks the options used by the convert command.
// It returns the first problem found.
func (c *Config) ValidateConvert() error {
	if strings.TrimSpace(c.Input) == "" {
		return ErrNoInput
	}
	if c.OutputDir == "" {
		return ErrEmptyOutput
	}
	if c.ContentSelector == "" {
		return ErrEmptySelector
	}
	if c.ConvertTimeout <= 0 || c.WaitTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ConvertSettle < 0 {
		return ErrInvalidSettleDelay
	}
	return nil
}

// DBPath returns the history database file path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DBDir, DefaultDBFile)
}
