package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wikigraph/wikigraph/internal/model"
)

// timeRounding keeps elapsed durations readable in terminal output.
const timeRounding = 10 * time.Millisecond

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display after a crawl finishes.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-page listing in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with a per-page listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeCounts(&sb, report)
	w.writeArtifacts(&sb, report)
	if w.verbose {
		w.writePages(&sb, report)
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         WIKIGRAPH CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Wiki:        %s\n", report.WikiName))
	sb.WriteString(fmt.Sprintf("Start Page:  %s\n", report.StartPage))
	sb.WriteString(fmt.Sprintf("Run ID:      %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Started:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:     %s\n", report.Elapsed().Round(timeRounding)))

	if report.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:      ERROR - %s\n", report.ErrorMessage))
	} else {
		sb.WriteString(fmt.Sprintf("Status:      Complete (%s)\n", report.StopReason))
	}
	sb.WriteString("\n")
}

// writeCounts writes the crawl totals section.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL TOTALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  PAGES: %d\n", report.PageCount()))
	sb.WriteString(fmt.Sprintf("  LINKS: %d\n", report.EdgeCount()))
	sb.WriteString("\n")
}

// writeArtifacts writes the output file locations.
func (w *SimpleWriter) writeArtifacts(sb *strings.Builder, report *model.CrawlReport) {
	if report.SummaryPath == "" && report.GraphPath == "" && report.ReportPath == "" {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("OUTPUT FILES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.SummaryPath != "" {
		sb.WriteString(fmt.Sprintf("  [+] Pages summary: %s\n", report.SummaryPath))
	}
	if report.GraphPath != "" {
		sb.WriteString(fmt.Sprintf("  [+] Link graph:    %s\n", report.GraphPath))
	}
	if report.ReportPath != "" {
		sb.WriteString(fmt.Sprintf("  [+] Report:        %s\n", report.ReportPath))
	}
	sb.WriteString("\n")
}

// writePages writes the per-page listing.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, p := range report.Pages {
		sb.WriteString(fmt.Sprintf("  * %s (%d links)\n", p.Name, len(p.OutgoingLinks)))
	}
	sb.WriteString("\n")
}
