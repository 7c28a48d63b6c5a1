// Package wiki provides access to MediaWiki-compatible wiki APIs.
//
// The Client fetches a single page's rendered HTML and canonical title via
// the action=parse endpoint. Redirects are resolved server-side, so the
// returned title may differ from the requested identifier; that divergence
// is what the crawler's alias bookkeeping exists for.
//
// Design decision: We fetch through the API rather than scraping article
// URLs directly because:
//  1. The API resolves redirects and reports the canonical title in one call
//  2. The response contains only the rendered content region, not site chrome
//  3. API responses are stable JSON; article page layout changes frequently
//
// # Politeness
//
// Requests are spaced by a rate limiter. Fan wikis are typically hosted on
// shared infrastructure, and an unthrottled recursive crawl is
// indistinguishable from abuse.
package wiki
