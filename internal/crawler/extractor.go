package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Default extraction settings, matching MediaWiki/Fandom conventions.
const (
	// DefaultContentSelector matches the rendered article body returned by
	// the action=parse API. Older Wikia installations used #WikiaArticle;
	// both resolve to the single authoritative content region.
	DefaultContentSelector = ".mw-parser-output, #mw-content-text, #WikiaArticle"

	// DefaultArticlePrefix is the path prefix that marks an internal
	// article link.
	DefaultArticlePrefix = "/wiki/"
)

// DefaultStripPrefixes folds Fandom lore subpages ("Lore/Grimm") into
// their base article ("Grimm"). Lore subpages restate the article's
// content, so treating them as distinct pages would double-count nodes.
var DefaultStripPrefixes = []string{"Lore/"}

// ErrContentRegionNotFound is returned when the markup contains no
// recognizable content region. Such pages are treated as malformed.
var ErrContentRegionNotFound = errors.New("content region not found in markup")

// Extractor turns rendered article markup into a normalized set of
// candidate page identifiers.
//
// Design decision: We use goquery rather than walking the HTML tree by
// hand because:
//  1. Selecting the content region is a CSS-selector problem and the
//     selector is per-wiki configuration
//  2. goquery tolerates the malformed HTML that wiki templates produce
//  3. The extraction rules read as a filter chain instead of tree plumbing
type Extractor struct {
	// contentSelector locates the main content region.
	contentSelector string

	// articlePrefix marks internal article links; it is stripped to obtain
	// the bare identifier.
	articlePrefix string

	// stripPrefixes are non-canonical identifier prefixes folded into
	// their base article (e.g. "Lore/").
	stripPrefixes []string
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithContentSelector sets the CSS selector of the content region.
func WithContentSelector(selector string) ExtractorOption {
	return func(e *Extractor) {
		if selector != "" {
			e.contentSelector = selector
		}
	}
}

// WithArticlePrefix sets the internal article link prefix.
func WithArticlePrefix(prefix string) ExtractorOption {
	return func(e *Extractor) {
		if prefix != "" {
			e.articlePrefix = prefix
		}
	}
}

// WithStripPrefixes replaces the identifier prefixes that are folded
// into their base article. The default folds "Lore/".
func WithStripPrefixes(prefixes []string) ExtractorOption {
	return func(e *Extractor) {
		e.stripPrefixes = prefixes
	}
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		contentSelector: DefaultContentSelector,
		articlePrefix:   DefaultArticlePrefix,
		stripPrefixes:   DefaultStripPrefixes,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract returns the unique, sorted identifiers of articles linked from
// the markup's content region.
//
// The filter chain, in order:
//  1. Locate the content region; absence is ErrContentRegionNotFound
//  2. Collect every href within that region
//  3. Keep only targets with the article prefix; strip it
//  4. Discard identifiers containing a namespace separator (":"),
//     which denote categories, files, and other non-article content
//  5. Strip any fragment suffix ("#section")
//  6. Fold configured non-canonical prefixes into the base article
//  7. Percent-decode and normalize to NFC
//
// Malformed hrefs and identifiers that reduce to the empty string are
// silently dropped. Self-links are preserved; preventing an immediate
// re-fetch is the engine's seen-set job, not the extractor's.
func (e *Extractor) Extract(markup string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	region := doc.Find(e.contentSelector)
	if region.Length() == 0 {
		return nil, ErrContentRegionNotFound
	}

	seen := make(map[string]struct{})
	region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}

		name, ok := e.sanitize(href)
		if !ok {
			return
		}
		seen[name] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for name := range seen {
		links = append(links, name)
	}
	sort.Strings(links)

	return links, nil
}

// sanitize applies the per-link filter chain to a single href.
// The boolean result reports whether the href survived.
func (e *Extractor) sanitize(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if !strings.HasPrefix(href, e.articlePrefix) {
		return "", false
	}

	name := strings.TrimPrefix(href, e.articlePrefix)

	// Namespace separator marks categories, files, and other metadata
	// pages. The check runs before decoding, so an escaped separator
	// (%3A) in an otherwise plain title still passes through.
	if strings.Contains(name, ":") {
		return "", false
	}

	// Fragment denotes a section of the same article, not a distinct page.
	if i := strings.Index(name, "#"); i >= 0 {
		name = name[:i]
	}

	for _, prefix := range e.stripPrefixes {
		if strings.HasPrefix(name, prefix) {
			name = strings.TrimPrefix(name, prefix)
			break
		}
	}

	decoded, err := url.PathUnescape(name)
	if err != nil {
		// Malformed percent-escape; drop the link.
		return "", false
	}

	decoded = norm.NFC.String(decoded)
	if decoded == "" {
		return "", false
	}

	return decoded, true
}
