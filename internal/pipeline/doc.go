// Package pipeline orchestrates a crawl run as an ordered list of steps.
//
// The CrawlStep downloads pages and fills in the report; the remaining
// steps render artifacts from it (CSV summary, DOT graph, Markdown
// report) or store the run in the history database. BatchProcessor runs
// one pipeline per start page with bounded concurrency.
package pipeline
