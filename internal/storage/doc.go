// Package storage persists fetched page content to local files.
//
// The PageWriter interface has one production implementation, the
// FilesystemWriter, plus an in-memory double for tests. Persistence is
// intentionally per-page: the crawl engine writes each page immediately
// after a successful fetch, so a failure later in the crawl does not
// discard earlier downloads.
package storage
