package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wikigraph/wikigraph/internal/model"
)

// CSVWriter outputs the pages summary in CSV format.
// One row per downloaded page, sorted by page name so the same crawl
// always produces the same file.
//
// Design decision: Outgoing links are space-joined into a single column
// rather than normalized into one row per edge. Page identifiers never
// contain spaces (the wiki uses underscores), so the column splits back
// losslessly, and one row per page keeps the summary greppable.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one row per crawled page.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	pages := make([]*model.Page, len(report.Pages))
	copy(pages, report.Pages)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"page_name", "outgoing_links", "local_html_path"}); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range pages {
		row := []string{p.Name, strings.Join(p.OutgoingLinks, " "), p.HTMLPath}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("failed to write csv row for %q: %w", p.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}

	return w.output.Write(buf.Bytes())
}
