// Package report renders crawl results for people and tools.
//
// Four writers share the Writer interface: CSVWriter produces the pages
// summary, JSONWriter serves programmatic consumers, MarkdownWriter
// renders a shareable document, and SimpleWriter prints a terminal
// summary. MultiWriter fans one report out to several destinations.
package report
