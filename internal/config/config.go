package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Where applicable these reproduce the behavior of the original
// Hollow Knight wiki scraper this tool grew out of.
const (
	// DefaultWikiName is the wiki queried when none is specified.
	DefaultWikiName = "hollowknight"

	// DefaultPagesSummary is the default path for the CSV summary file.
	DefaultPagesSummary = "pages.csv"

	// DefaultPageContentDir is the default directory for per-page HTML files.
	DefaultPageContentDir = "page_html"

	// DefaultTimeout is the per-request HTTP timeout. Wiki API responses
	// are small, but template-heavy pages can take several seconds to render
	// server-side on a cold cache.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDelay is the minimum spacing between requests.
	// This is a politeness setting: fan wikis are usually hosted on shared
	// infrastructure and an unthrottled crawl looks like abuse.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultUserAgent identifies wikigraph in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify crawler traffic in their logs.
	DefaultUserAgent = "wikigraph/1.0 (+https://github.com/wikigraph/wikigraph)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 10MB is generous for rendered article HTML while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultBatchSize is the number of concurrent crawl runs when multiple
	// start pages are given. Each individual crawl is still sequential;
	// this only parallelizes independent runs.
	DefaultBatchSize = 2

	// AppName is the application name used for XDG directory paths.
	AppName = "wikigraph"
)

// Config holds all configuration options for a crawl invocation.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, OutputConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// WikiName identifies which wiki to crawl. For Fandom-hosted wikis this
	// is the subdomain, e.g. "hollowknight" for hollowknight.fandom.com.
	WikiName string

	// StartPages are the page identifiers to start crawling from.
	// Each start page becomes its own crawl run.
	StartPages []string

	// MaxPages is the maximum number of pages to download per crawl run.
	// Zero means unbounded: crawl until the link frontier is exhausted.
	// Negative values are rejected by Validate.
	MaxPages int

	// PagesSummary is the output path for the CSV summary file.
	PagesSummary string

	// PageContentDir is the output directory for per-page HTML files.
	// Created on first write if it does not exist.
	PageContentDir string

	// DOTPath, when set, is where the link graph is written in DOT format.
	DOTPath string

	// ReportPath, when set, is where the Markdown crawl report is written.
	ReportPath string

	// Timeout is the HTTP timeout for each wiki API request.
	Timeout time.Duration

	// CrawlDelay is the minimum spacing between requests during crawling.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// BatchSize is the number of concurrent crawl runs when multiple
	// start pages are given.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONOutput prints crawl reports as JSON instead of the
	// human-readable terminal report.
	JSONOutput bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .wikigraph in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// WikiConfigs holds per-wiki configurations loaded from the config file.
	WikiConfigs *File

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to record the crawl run in the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, delay).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		WikiName:       DefaultWikiName,
		PagesSummary:   DefaultPagesSummary,
		PageContentDir: DefaultPageContentDir,
		Timeout:        DefaultTimeout,
		CrawlDelay:     DefaultCrawlDelay,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		BatchSize:      DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for wikigraph.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/wikigraph
// On macOS: ~/Library/Application Support/wikigraph
// On Windows: %LOCALAPPDATA%\wikigraph
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikigraph.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network activity.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one start page to crawl from
	if len(c.StartPages) == 0 {
		return ErrNoStartPage
	}

	// A wiki must be named; an empty name would produce a bogus API host
	if c.WikiName == "" {
		return ErrNoWikiName
	}

	// The page budget, when bounded, must be a positive integer
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative; zero means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// BatchSize must be positive; zero would mean no crawling at all
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	return nil
}

// Unbounded reports whether the crawl has no page budget.
func (c *Config) Unbounded() bool {
	return c.MaxPages == 0
}
