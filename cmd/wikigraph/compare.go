package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikigraph/wikigraph/internal/config"
	"github.com/wikigraph/wikigraph/internal/database"
	"github.com/wikigraph/wikigraph/internal/model"
)

// Constants for growth direction summaries.
const (
	directionGrown     = "grown"
	directionShrunk    = "shrunk"
	directionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares two recorded crawl runs of the same wiki.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two recorded crawl runs",
		Long: `Compare displays differences between two crawl runs of the same wiki.

Wikis change over time: articles are created, renamed, and deleted, and
links between them come and go. Compare retrieves two runs from the
history database and shows:
- Pages that appeared since the earlier run
- Pages that are no longer reachable
- The change in page and link counts

By default the latest two runs of the wiki are compared. At least two
recorded runs are required. Use 'wikigraph crawl' to record runs.

Examples:
  # Compare the latest two runs of the default wiki
  wikigraph compare

  # Compare the latest two runs of a specific wiki
  wikigraph compare --wiki hogwartslegacy

  # Compare the latest run with a specific earlier run
  wikigraph compare --with-run 2f1f3c0a-...

  # Compare with the first run recorded on or after a date
  wikigraph compare --since 2026-08-01

  # Output the comparison as JSON
  wikigraph compare --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("wiki", "w", config.DefaultWikiName,
		"Wiki whose runs are compared")
	cmd.Flags().String("with-run", "",
		"Compare the latest run with this run ID (see 'wikigraph history')")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first run on or after this date (format: YYYY-MM-DD)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	wikiName, err := cmd.Flags().GetString("wiki")
	if err != nil {
		return err
	}

	withRun, err := cmd.Flags().GetString("with-run")
	if err != nil {
		return err
	}

	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// The database must already exist; compare never creates one.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found: %w", err)
	}
	defer db.Close()

	return runComparison(cmd.Context(), cmd.OutOrStdout(), db, wikiName, withRun, sinceDate, jsonOutput)
}

// runComparison selects the two runs to compare and writes the result.
func runComparison(ctx context.Context, out io.Writer, db *database.CrawlDB, wikiName, withRun, sinceDate string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, wikiName)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no recorded runs for %s", wikiName)
	}
	if len(runs) < 2 && withRun == "" && sinceDate == "" {
		return fmt.Errorf("at least 2 recorded runs are required for comparison (found %d)", len(runs))
	}

	// The latest run is always the current side of the comparison.
	currentID := runs[0].RunID
	var previousID string

	switch {
	case withRun != "":
		previousID = withRun
	case sinceDate != "":
		parsed, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		// Runs are sorted newest first, so walk backwards to find the
		// oldest run on or after the date.
		for i := len(runs) - 1; i >= 0; i-- {
			if !runs[i].StartedAt.Before(parsed) {
				previousID = runs[i].RunID
				break
			}
		}
		if previousID == "" {
			return fmt.Errorf("no runs found since %s", sinceDate)
		}
		if previousID == currentID {
			return fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison", sinceDate)
		}
	default:
		previousID = runs[1].RunID
	}

	previous, err := db.GetRun(ctx, previousID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", previousID, err)
	}
	if previous == nil {
		return fmt.Errorf("run not found: %s", previousID)
	}
	if previous.WikiName != wikiName {
		return fmt.Errorf("run %s belongs to %s, not %s", previousID, previous.WikiName, wikiName)
	}

	current, err := db.GetLatestRun(ctx, wikiName)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", currentID, err)
	}
	if current == nil {
		return fmt.Errorf("run not found: %s", currentID)
	}

	comparison := compareRuns(previous, current)

	if jsonOutput {
		return outputComparisonJSON(out, comparison)
	}
	return outputComparisonText(out, comparison)
}

// ComparisonResult holds the result of comparing two crawl runs.
type ComparisonResult struct {
	// Wiki is the wiki both runs crawled.
	Wiki string `json:"wiki"`

	// PreviousRun and CurrentRun describe the two compared runs.
	PreviousRun RunSummary `json:"previous_run"`
	CurrentRun  RunSummary `json:"current_run"`

	// NewPages are pages present in the current run but not the previous.
	NewPages []string `json:"new_pages,omitempty"`

	// RemovedPages are pages present in the previous run but not the current.
	RemovedPages []string `json:"removed_pages,omitempty"`

	// UnchangedCount is the number of pages present in both runs.
	UnchangedCount int `json:"unchanged_count"`

	// Growth describes the overall change between the runs.
	Growth Growth `json:"growth"`
}

// RunSummary describes one side of a comparison.
type RunSummary struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`

	// StartPage is the identifier the run started from.
	StartPage string `json:"start_page"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// PageCount is the number of pages downloaded by the run.
	PageCount int `json:"page_count"`

	// EdgeCount is the total number of outgoing links across all pages.
	EdgeCount int `json:"edge_count"`
}

// Growth describes the change in graph size between two runs.
type Growth struct {
	// Direction is "grown", "shrunk", or "unchanged".
	Direction string `json:"direction"`

	// PageDelta is the change in page count.
	PageDelta int `json:"page_delta"`

	// EdgeDelta is the change in link edge count.
	EdgeDelta int `json:"edge_delta"`
}

// compareRuns compares two crawl runs page by page.
func compareRuns(previous, current *model.CrawlReport) *ComparisonResult {
	result := &ComparisonResult{
		Wiki:        current.WikiName,
		PreviousRun: summarizeRun(previous),
		CurrentRun:  summarizeRun(current),
	}

	previousPages := make(map[string]bool, len(previous.Pages))
	for _, p := range previous.Pages {
		previousPages[p.Name] = true
	}
	currentPages := make(map[string]bool, len(current.Pages))
	for _, p := range current.Pages {
		currentPages[p.Name] = true
	}

	for name := range currentPages {
		if !previousPages[name] {
			result.NewPages = append(result.NewPages, name)
		}
	}
	for name := range previousPages {
		if !currentPages[name] {
			result.RemovedPages = append(result.RemovedPages, name)
		} else {
			result.UnchangedCount++
		}
	}
	sort.Strings(result.NewPages)
	sort.Strings(result.RemovedPages)

	result.Growth = calculateGrowth(result.PreviousRun, result.CurrentRun)

	return result
}

// summarizeRun extracts the comparison-relevant metadata of a run.
func summarizeRun(r *model.CrawlReport) RunSummary {
	return RunSummary{
		RunID:     r.RunID,
		StartPage: r.StartPage,
		StartedAt: r.StartedAt,
		PageCount: r.PageCount(),
		EdgeCount: r.EdgeCount(),
	}
}

// calculateGrowth calculates the change in graph size between two runs.
// Pages weigh more than edges when deciding the overall direction: a
// wiki that lost articles has shrunk even if the survivors gained links.
func calculateGrowth(previous, current RunSummary) Growth {
	growth := Growth{
		PageDelta: current.PageCount - previous.PageCount,
		EdgeDelta: current.EdgeCount - previous.EdgeCount,
	}

	previousScore := previous.PageCount*10 + previous.EdgeCount
	currentScore := current.PageCount*10 + current.EdgeCount

	switch {
	case currentScore > previousScore:
		growth.Direction = directionGrown
	case currentScore < previousScore:
		growth.Direction = directionShrunk
	default:
		growth.Direction = directionUnchanged
	}

	return growth
}

// outputComparisonJSON writes the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText writes the comparison result in human-readable form.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Crawl Comparison: %s\n", result.Wiki)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nGraph: %s\n", formatDirection(result.Growth.Direction))

	fmt.Fprintf(out, "\nPrevious run: %s (%s, from %q)\n",
		result.PreviousRun.RunID,
		result.PreviousRun.StartedAt.Format("2006-01-02 15:04:05"),
		result.PreviousRun.StartPage,
	)
	fmt.Fprintf(out, "Current run:  %s (%s, from %q)\n",
		result.CurrentRun.RunID,
		result.CurrentRun.StartedAt.Format("2006-01-02 15:04:05"),
		result.CurrentRun.StartPage,
	)

	fmt.Fprintln(out, "\nGraph Size:")
	fmt.Fprintf(out, "  %-10s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Pages",
		result.PreviousRun.PageCount, result.CurrentRun.PageCount,
		formatDelta(result.Growth.PageDelta))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Links",
		result.PreviousRun.EdgeCount, result.CurrentRun.EdgeCount,
		formatDelta(result.Growth.EdgeDelta))

	if len(result.NewPages) > 0 {
		fmt.Fprintf(out, "\nNew Pages (%d):\n", len(result.NewPages))
		for _, name := range result.NewPages {
			fmt.Fprintf(out, "  [+] %s\n", name)
		}
	}

	if len(result.RemovedPages) > 0 {
		fmt.Fprintf(out, "\nRemoved Pages (%d):\n", len(result.RemovedPages))
		for _, name := range result.RemovedPages {
			fmt.Fprintf(out, "  [-] %s\n", name)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d pages\n", result.UnchangedCount)
	}

	return nil
}

// formatDirection formats the growth direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionGrown:
		return "GROWN (more pages or links)"
	case directionShrunk:
		return "SHRUNK (fewer pages or links)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
