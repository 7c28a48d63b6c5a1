package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoStartPage is returned when no start page identifier is given.
	// The crawl has nowhere to begin without one.
	ErrNoStartPage = errors.New("no start page specified: provide a page identifier as an argument")

	// ErrNoWikiName is returned when the wiki name is empty.
	ErrNoWikiName = errors.New("no wiki specified: provide a wiki name with --wiki")

	// ErrInvalidMaxPages is returned when the page budget is not a positive
	// integer. Use no flag at all for an unbounded crawl.
	ErrInvalidMaxPages = errors.New("invalid max page count: must be a positive integer")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no crawl runs execute at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")
)
