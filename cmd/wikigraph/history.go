package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wikigraph/wikigraph/internal/config"
	"github.com/wikigraph/wikigraph/internal/database"
	"github.com/wikigraph/wikigraph/internal/graph"
	"github.com/wikigraph/wikigraph/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and inspect recorded crawl runs",
		Long: `History lists the crawl runs recorded in the local database.

Without flags it prints one line per run. Use --run to print the full
report of a single run, --links to dump a run's edges, or --dot to
re-render a run's link graph in Graphviz DOT format.

Examples:
  # List all recorded runs
  wikigraph history

  # List runs for one wiki
  wikigraph history --wiki hollowknight

  # List the wikis with recorded runs
  wikigraph history --wikis

  # Show the full report of a run
  wikigraph history --run 2f1f3c0a-...

  # Dump a run's link edges
  wikigraph history --run 2f1f3c0a-... --links

  # Re-render a run's link graph as DOT
  wikigraph history --run 2f1f3c0a-... --dot > graph.dot`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("wiki", "w", "", "Only list runs for this wiki")
	cmd.Flags().Bool("wikis", false, "List the wikis with recorded runs")
	cmd.Flags().StringP("run", "r", "", "Show the full report of a single run")
	cmd.Flags().Bool("links", false, "With --run, dump the run's link edges")
	cmd.Flags().Bool("dot", false, "With --run, re-render the run's link graph as DOT")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	wikiFilter, err := cmd.Flags().GetString("wiki")
	if err != nil {
		return err
	}

	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return err
	}

	showLinks, err := cmd.Flags().GetBool("links")
	if err != nil {
		return err
	}

	showDOT, err := cmd.Flags().GetBool("dot")
	if err != nil {
		return err
	}

	// The database must already exist; history never creates one.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found: %w", err)
	}
	defer db.Close()

	listWikisOnly, err := cmd.Flags().GetBool("wikis")
	if err != nil {
		return err
	}

	if runID != "" {
		return showRun(cmd, db, runID, showLinks, showDOT)
	}
	if listWikisOnly {
		return listWikis(cmd, db)
	}

	return listRuns(cmd, db, wikiFilter)
}

// listWikis prints the wikis that have at least one recorded run.
func listWikis(cmd *cobra.Command, db *database.CrawlDB) error {
	wikis, err := db.ListWikis(cmd.Context())
	if err != nil {
		return err
	}

	if len(wikis) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded wikis (%d):\n", len(wikis))
	for _, wiki := range wikis {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", wiki)
	}
	return nil
}

// listRuns prints one line per recorded run.
func listRuns(cmd *cobra.Command, db *database.CrawlDB, wiki string) error {
	runs, err := db.ListRuns(cmd.Context(), wiki)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tWIKI\tSTART PAGE\tPAGES\tSTOP REASON\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.RunID,
			r.Wiki,
			r.StartPage,
			r.PageCount,
			r.StopReason,
			r.StartedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

// showRun prints a single run's full report, its link edges, or its
// graph in DOT format.
func showRun(cmd *cobra.Command, db *database.CrawlDB, runID string, showLinks, showDOT bool) error {
	if showDOT {
		crawlReport, err := db.GetRun(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if crawlReport == nil {
			return fmt.Errorf("run not found: %s", runID)
		}
		return graph.Build(crawlReport.Pages).WriteDOT(cmd.OutOrStdout())
	}

	if showLinks {
		links, err := db.GetRunLinks(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			return fmt.Errorf("no links recorded for run %s", runID)
		}

		for _, l := range links {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", l.Source, l.Dest)
		}
		return nil
	}

	crawlReport, err := db.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if crawlReport == nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	out := cmd.OutOrStdout()
	writer := report.NewSimpleWriter(out, report.WithVerbose(true))
	if _, err := writer.Write(crawlReport); err != nil {
		return err
	}
	return nil
}
