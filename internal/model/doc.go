// Package model defines the core data structures used throughout wikigraph.
//
// This package contains the following main types:
//   - Page: A single downloaded wiki article with its outgoing links
//   - CrawlReport: The accumulated result of one crawl run
//   - StopReason: Why a crawl terminated (frontier exhausted or budget hit)
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, graph, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
