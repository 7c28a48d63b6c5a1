package model

import (
	"time"
)

// Page represents a single wiki article fetched during a crawl.
// It is constructed once by the crawl engine and never mutated afterwards.
//
// Design decision: We keep both the requested and the resolved identifier
// because:
//  1. The wiki may resolve a request to a different canonical title (redirect)
//  2. Both identifiers participate in crawl deduplication
//  3. The divergence is useful for debugging alias-heavy wikis
type Page struct {
	// Name is the canonical identifier of the page, derived from the title
	// reported by the wiki with spaces replaced by underscores.
	Name string `json:"name"`

	// RequestedName is the identifier the page was requested under.
	// It differs from Name when the wiki redirected the request.
	RequestedName string `json:"requested_name,omitempty"`

	// Title is the canonical title exactly as the wiki reported it,
	// with its original spacing.
	Title string `json:"title,omitempty"`

	// OutgoingLinks contains the sanitized identifiers of articles this
	// page links to, unique and sorted lexicographically.
	OutgoingLinks []string `json:"outgoing_links"`

	// HTML is the rendered article markup as returned by the wiki.
	// Excluded from JSON to keep reports small.
	HTML string `json:"-"`

	// HTMLPath is the local path the markup was persisted to.
	// Empty when persistence is disabled.
	HTMLPath string `json:"html_path,omitempty"`

	// Snapshot is a plain-text rendering of the article content.
	// Limited to MaxSnapshotSize bytes.
	Snapshot string `json:"snapshot,omitempty"`

	// FetchedAt is when the page was downloaded.
	FetchedAt time.Time `json:"fetched_at"`
}

// MaxSnapshotSize is the maximum size of the text snapshot in bytes.
// Article bodies are usually small, but template-heavy wiki pages can
// expand to megabytes of rendered HTML.
const MaxSnapshotSize = 256 * 1024 // 256 KB

// TruncateSnapshot ensures the snapshot doesn't exceed MaxSnapshotSize.
// Call this after setting the snapshot to enforce the size limit.
func (p *Page) TruncateSnapshot() {
	if len(p.Snapshot) > MaxSnapshotSize {
		p.Snapshot = p.Snapshot[:MaxSnapshotSize]
	}
}

// LinksTo reports whether the page links to the given identifier.
func (p *Page) LinksTo(name string) bool {
	for _, link := range p.OutgoingLinks {
		if link == name {
			return true
		}
	}
	return false
}

// Redirected reports whether the page was reached through a redirect,
// i.e. the resolved name differs from the requested one.
func (p *Page) Redirected() bool {
	return p.RequestedName != "" && p.RequestedName != p.Name
}
