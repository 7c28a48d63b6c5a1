package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikigraph/wikigraph/internal/config"
	"github.com/wikigraph/wikigraph/internal/crawler"
	"github.com/wikigraph/wikigraph/internal/database"
	"github.com/wikigraph/wikigraph/internal/log"
	"github.com/wikigraph/wikigraph/internal/model"
	"github.com/wikigraph/wikigraph/internal/pipeline"
	"github.com/wikigraph/wikigraph/internal/report"
	"github.com/wikigraph/wikigraph/internal/storage"
	"github.com/wikigraph/wikigraph/internal/wiki"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [start-page...]",
		Short: "Crawl a wiki starting from the given pages",
		Long: `Crawl downloads wiki pages breadth-first starting from the given
article identifiers and records the links between them.

Every downloaded page's HTML is saved to the content directory, and the
crawl produces a CSV summary listing each page with its outgoing links.

Examples:
  # Crawl the Hollow Knight wiki from its main article
  wikigraph crawl Hollow_Knight

  # Bound the crawl to 500 pages
  wikigraph crawl --max-num-pages 500 Hollow_Knight

  # Crawl a different wiki and also write a DOT graph
  wikigraph crawl --wiki hogwartslegacy --dot graph.dot Hogwarts

  # Crawl from several start pages concurrently
  wikigraph crawl --batch 2 Hollow_Knight Quirrel Hornet

Configuration file (.wikigraph) example:
  wikis:
    hollowknight:
      stripPrefixes:
        - "Lore/"
    oldwiki:
      contentSelector: "#WikiaArticle"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringP("wiki", "w", config.DefaultWikiName,
		"Wiki to crawl (the Fandom subdomain, e.g. \"hollowknight\")")
	cmd.Flags().IntP("max-num-pages", "m", 0,
		"Maximum number of pages to download (omit for an unbounded crawl)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each wiki API request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Minimum spacing between requests")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Output flags
	cmd.Flags().String("pages-summary", config.DefaultPagesSummary,
		"Output path for the CSV pages summary")
	cmd.Flags().String("page-content-dir", config.DefaultPageContentDir,
		"Output directory for per-page HTML files")
	cmd.Flags().String("dot", "",
		"Write the link graph in Graphviz DOT format to this path")
	cmd.Flags().String("report", "",
		"Write a Markdown crawl report to this path")
	cmd.Flags().BoolP("json", "j", false,
		"Print crawl reports as JSON instead of text")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawl runs when multiple start pages are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikigraph in current or home directory)")

	// History database flags
	cmd.Flags().Bool("no-db", false,
		"Skip recording this run in the history database")
	cmd.Flags().String("db-dir", "",
		"Directory for the history database (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
//
// Precedence is flags > environment > config file > built-in defaults:
// the environment (including .env) is applied first, and flag values
// overwrite it only where the user actually passed the flag.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	config.LoadEnv(cfg)

	var err error

	if cmd.Flags().Changed("wiki") {
		cfg.WikiName, err = cmd.Flags().GetString("wiki")
		if err != nil {
			return nil, err
		}
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-num-pages")
	if err != nil {
		return nil, err
	}
	// An explicitly given budget must be positive. The flag's zero default
	// means "unbounded", but asking for zero or fewer pages is a mistake.
	if cmd.Flags().Changed("max-num-pages") && cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("max-num-pages must be positive, got %d", cfg.MaxPages)
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
		if err != nil {
			return nil, err
		}
	}

	cfg.PagesSummary, err = cmd.Flags().GetString("pages-summary")
	if err != nil {
		return nil, err
	}

	cfg.PageContentDir, err = cmd.Flags().GetString("page-content-dir")
	if err != nil {
		return nil, err
	}

	cfg.DOTPath, err = cmd.Flags().GetString("dot")
	if err != nil {
		return nil, err
	}

	cfg.ReportPath, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONOutput, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-wiki configurations from the config file.
	// If the user explicitly specified a path, error if not found.
	// If no path was specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.WikiConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.WikiConfigs = &config.File{
			Wikis: make(map[string]config.WikiConfig),
		}
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	if cmd.Flags().Changed("db-dir") {
		cfg.DBDir, err = cmd.Flags().GetString("db-dir")
		if err != nil {
			return nil, err
		}
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the start pages
	cfg.StartPages = args

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"wiki", cfg.WikiName,
		"startPages", cfg.StartPages,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Multiple start pages run as a concurrent batch
	if len(cfg.StartPages) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, db, logger)
	}

	return runSequentialCrawl(ctx, cfg, db, logger)
}

// terminalWriter returns the report writer for terminal output,
// honoring the --json flag.
func terminalWriter(cfg *config.Config, out io.Writer) report.Writer {
	if cfg.JSONOutput {
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	}
	return report.NewSimpleWriter(out)
}

// runSequentialCrawl crawls start pages one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	writer := terminalWriter(cfg, os.Stdout)

	for _, startPage := range cfg.StartPages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Progress display only makes sense when crawls don't interleave,
		// and would corrupt JSON output.
		var progress func(int)
		if !cfg.JSONOutput {
			progress = func(downloaded int) {
				fmt.Printf("\rDownloaded %d pages", downloaded)
			}
		}

		p := createPipeline(cfg, db, logger, progress)
		crawlReport := model.NewCrawlReport(cfg.WikiName, startPage)

		if !cfg.JSONOutput {
			fmt.Printf("Crawling %s from %q...\n", cfg.WikiName, startPage)
		}
		startTime := time.Now()

		err := p.Execute(ctx, crawlReport)
		if !cfg.JSONOutput {
			fmt.Println()
		}

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("crawl failed", "start_page", startPage, "error", err)
			return fmt.Errorf("crawl of %q failed: %w", startPage, err)
		}

		if !cfg.JSONOutput {
			elapsed := time.Since(startTime)
			printStopReason(crawlReport, cfg)
			fmt.Printf("Crawl completed in %s\n", elapsed.Round(time.Millisecond))
		}

		if _, err := writer.Write(crawlReport); err != nil {
			logger.Error("report output failed", "start_page", startPage, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple start pages concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// No progress callback: interleaved counters from concurrent
			// crawls would be unreadable.
			return createPipeline(cfg, db, logger, nil)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// JSON output waits for the whole batch and emits the reports in
	// start-page order, so consumers get a stable document stream.
	if cfg.JSONOutput {
		reports, err := bp.ProcessBatch(ctx, cfg.WikiName, cfg.StartPages)
		writer := terminalWriter(cfg, os.Stdout)
		for _, crawlReport := range reports {
			// Cancellation can leave slots for crawls that never started.
			if crawlReport == nil {
				continue
			}
			if _, werr := writer.Write(crawlReport); werr != nil {
				logger.Error("report output failed", "start_page", crawlReport.StartPage, "error", werr)
			}
		}
		return err
	}

	fmt.Printf("Starting batch crawl of %d start pages (concurrency: %d)...\n\n",
		len(cfg.StartPages), cfg.BatchSize)

	startTime := time.Now()

	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.WikiName, cfg.StartPages,
		func(crawlReport *model.CrawlReport, index int) {
			mu.Lock()
			defer mu.Unlock()

			fmt.Printf("[%d/%d] Crawl completed: %s (%d pages)\n",
				index+1, len(cfg.StartPages), crawlReport.StartPage, crawlReport.PageCount())
			printStopReason(crawlReport, cfg)

			if _, err := report.NewSimpleWriter(os.Stdout).Write(crawlReport); err != nil {
				logger.Error("report output failed", "start_page", crawlReport.StartPage, "error", err)
			}
		})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// printStopReason tells the user why a bounded crawl stopped early.
func printStopReason(r *model.CrawlReport, cfg *config.Config) {
	if r.StopReason == model.StopLimitReached {
		fmt.Printf("Reached limit of max number of pages to download (%d)\n", cfg.MaxPages)
	}
}

// createPipeline assembles the crawl pipeline for the configured wiki.
func createPipeline(cfg *config.Config, db *database.CrawlDB, logger *slog.Logger, progress func(int)) *pipeline.Pipeline {
	wikiCfg := cfg.WikiConfigs.GetWikiConfig(cfg.WikiName)

	// Fetcher
	clientOpts := []wiki.ClientOption{
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithDelay(cfg.CrawlDelay),
		wiki.WithMaxBodySize(cfg.MaxBodySize),
	}
	if wikiCfg.APIBase != "" {
		clientOpts = append(clientOpts, wiki.WithBaseURL(wikiCfg.APIBase))
	}
	if len(wikiCfg.Headers) > 0 {
		clientOpts = append(clientOpts, wiki.WithHeaders(wikiCfg.Headers))
	}
	client := wiki.NewClient(cfg.WikiName, cfg.Timeout, clientOpts...)

	// Link extraction
	extractorOpts := []crawler.ExtractorOption{}
	if wikiCfg.ContentSelector != "" {
		extractorOpts = append(extractorOpts, crawler.WithContentSelector(wikiCfg.ContentSelector))
	}
	if wikiCfg.ArticlePrefix != "" {
		extractorOpts = append(extractorOpts, crawler.WithArticlePrefix(wikiCfg.ArticlePrefix))
	}
	if len(wikiCfg.StripPrefixes) > 0 {
		extractorOpts = append(extractorOpts, crawler.WithStripPrefixes(wikiCfg.StripPrefixes))
	}

	engineOpts := []crawler.EngineOption{
		crawler.WithExtractor(crawler.NewExtractor(extractorOpts...)),
		crawler.WithStore(storage.NewFilesystemWriter(cfg.PageContentDir)),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithLogger(logger),
	}
	if progress != nil {
		engineOpts = append(engineOpts, crawler.WithProgress(progress))
	}
	engine := crawler.NewEngine(client, engineOpts...)

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineSummaryPath(cfg.PagesSummary),
	}
	if cfg.DOTPath != "" {
		configOpts = append(configOpts, pipeline.WithPipelineGraphPath(cfg.DOTPath))
	}
	if cfg.ReportPath != "" {
		configOpts = append(configOpts, pipeline.WithPipelineReportPath(cfg.ReportPath))
	}
	if db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineDatabase(db))
	}

	return pipeline.DefaultPipeline(engine, pipelineOpts, configOpts...)
}
