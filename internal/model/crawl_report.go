package model

import (
	"time"

	"github.com/google/uuid"
)

// CrawlReport accumulates the result of one crawl run as it flows
// through the pipeline. The crawl step fills in the pages, later steps
// record where their artifacts were written.
type CrawlReport struct {
	// RunID uniquely identifies this crawl run.
	RunID string `json:"run_id"`

	// WikiName identifies which wiki was crawled.
	WikiName string `json:"wiki_name"`

	// StartPage is the identifier the crawl started from.
	StartPage string `json:"start_page"`

	// Pages are the downloaded pages in crawl order.
	Pages []*Page `json:"pages"`

	// StopReason records why the crawl terminated.
	StopReason StopReason `json:"stop_reason"`

	// StartedAt and FinishedAt bound the crawl run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// SummaryPath is where the CSV summary was written, if at all.
	SummaryPath string `json:"summary_path,omitempty"`

	// GraphPath is where the DOT graph was written, if at all.
	GraphPath string `json:"graph_path,omitempty"`

	// ReportPath is where the Markdown report was written, if at all.
	ReportPath string `json:"report_path,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error holds the first critical error encountered, if any.
	// The string form is kept separately so it survives JSON round-trips.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewCrawlReport creates an empty report for one crawl run.
// Every run gets a fresh UUID so database rows from repeated crawls of
// the same wiki never collide.
func NewCrawlReport(wikiName, startPage string) *CrawlReport {
	return &CrawlReport{
		RunID:     uuid.NewString(),
		WikiName:  wikiName,
		StartPage: startPage,
		Pages:     make([]*Page, 0),
		StartedAt: time.Now(),
	}
}

// PageCount returns the number of downloaded pages.
func (r *CrawlReport) PageCount() int {
	return len(r.Pages)
}

// EdgeCount returns the total number of outgoing links across all pages,
// counting duplicates discovered from different sources separately.
func (r *CrawlReport) EdgeCount() int {
	var n int
	for _, p := range r.Pages {
		n += len(p.OutgoingLinks)
	}
	return n
}

// Elapsed returns the wall-clock duration of the crawl.
// Returns zero if the run has not finished yet.
func (r *CrawlReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
