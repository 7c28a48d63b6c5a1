// Package crawler implements the frontier-driven crawl over a wiki's
// link graph.
//
// # Architecture
//
// The crawler package is designed around the Engine type, which owns the
// crawl frontier: a FIFO queue of page identifiers discovered but not yet
// fetched, and a seen set that prevents re-fetching. The link graph is
// revealed lazily, one fetched page at a time, and may contain cycles;
// the seen set is what guarantees termination.
//
// Design decision: We implement our own crawl loop rather than using a
// crawler framework (e.g. colly) because:
//  1. Redirect aliasing requires marking both the requested and the
//     resolved identifier as seen, which frameworks don't expose
//  2. The page budget must be checked against downloaded pages, not
//     issued requests
//  3. The frontier's ordering is part of the tool's observable behavior
//     (crawl order, which pages a bounded crawl downloads)
//
// # Components
//
//   - Engine: the crawl loop with frontier, seen set, and page budget
//   - Extractor: turns rendered article HTML into candidate identifiers
//
// # Politeness
//
// The engine issues fetches strictly one at a time; request spacing is
// the fetcher's responsibility.
package crawler
