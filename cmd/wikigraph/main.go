// Package main provides the entry point for the wikigraph CLI.
//
// Wikigraph downloads a wiki's pages starting from a given article and
// records the directed graph of links between them.
//
// Usage:
//
//	wikigraph crawl <start-page>
//	wikigraph crawl --wiki hollowknight --max-num-pages 500 Hollow_Knight
//
// See --help for all available options.
package main

// main is the entry point for wikigraph.
func main() {
	Execute()
}
