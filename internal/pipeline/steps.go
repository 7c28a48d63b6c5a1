package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wikigraph/wikigraph/internal/crawler"
	"github.com/wikigraph/wikigraph/internal/database"
	"github.com/wikigraph/wikigraph/internal/graph"
	"github.com/wikigraph/wikigraph/internal/model"
	"github.com/wikigraph/wikigraph/internal/report"
)

// CrawlStep downloads the wiki starting from the report's start page.
// It fills in the report's pages and stop reason; everything after it
// only renders or stores what it collected.
type CrawlStep struct {
	// engine performs the actual crawl.
	engine *crawler.Engine

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step around a configured engine.
func NewCrawlStep(engine *crawler.Engine, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		engine: engine,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, r *model.CrawlReport) error {
	result, err := s.engine.Crawl(ctx, r.StartPage)
	if err != nil {
		r.FinishedAt = time.Now()
		return fmt.Errorf("crawl of %q failed: %w", r.StartPage, err)
	}

	r.Pages = result.Pages
	r.StopReason = result.StopReason
	r.FinishedAt = time.Now()

	s.logger.Info("crawl completed",
		"wiki", r.WikiName,
		"start_page", r.StartPage,
		"pages", r.PageCount(),
		"links", r.EdgeCount(),
		"stop_reason", r.StopReason.String(),
	)

	return nil
}

// SummaryStep writes the pages summary CSV.
type SummaryStep struct {
	// path is the output file location.
	path string
}

// NewSummaryStep creates a step writing the CSV summary to path.
func NewSummaryStep(path string) *SummaryStep {
	return &SummaryStep{path: path}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do writes the CSV summary file.
func (s *SummaryStep) Do(_ context.Context, r *model.CrawlReport) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	if _, err := report.NewCSVWriter(f).Write(r); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close summary file: %w", err)
	}

	r.SummaryPath = s.path
	return nil
}

// GraphStep writes the link graph in Graphviz DOT form.
type GraphStep struct {
	// path is the output file location.
	path string
}

// NewGraphStep creates a step writing the DOT graph to path.
func NewGraphStep(path string) *GraphStep {
	return &GraphStep{path: path}
}

// Name returns the step name.
func (s *GraphStep) Name() string {
	return "graph"
}

// Do writes the DOT graph file.
func (s *GraphStep) Do(_ context.Context, r *model.CrawlReport) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	defer f.Close()

	if err := graph.Build(r.Pages).WriteDOT(f); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close graph file: %w", err)
	}

	r.GraphPath = s.path
	return nil
}

// MarkdownStep writes the Markdown crawl report.
type MarkdownStep struct {
	// path is the output file location.
	path string
}

// NewMarkdownStep creates a step writing the Markdown report to path.
func NewMarkdownStep(path string) *MarkdownStep {
	return &MarkdownStep{path: path}
}

// Name returns the step name.
func (s *MarkdownStep) Name() string {
	return "markdown"
}

// Do writes the Markdown report file.
func (s *MarkdownStep) Do(_ context.Context, r *model.CrawlReport) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if _, err := report.NewMarkdownWriter(f).Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}

	r.ReportPath = s.path
	return nil
}

// DatabaseStep stores the finished run in the crawl history database.
type DatabaseStep struct {
	// db is the open history database.
	db *database.CrawlDB

	// logger for structured logging.
	logger *slog.Logger
}

// DatabaseStepOption configures a DatabaseStep.
type DatabaseStepOption func(*DatabaseStep)

// WithDatabaseLogger sets a custom logger for the database step.
func WithDatabaseLogger(logger *slog.Logger) DatabaseStepOption {
	return func(s *DatabaseStep) {
		s.logger = logger
	}
}

// NewDatabaseStep creates a step persisting runs to db.
func NewDatabaseStep(db *database.CrawlDB, opts ...DatabaseStepOption) *DatabaseStep {
	s := &DatabaseStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DatabaseStep) Name() string {
	return "database"
}

// Do persists the run.
func (s *DatabaseStep) Do(ctx context.Context, r *model.CrawlReport) error {
	if err := s.db.SaveCrawlReport(ctx, r); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	s.logger.Debug("run stored", "run_id", r.RunID, "wiki", r.WikiName)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// SummaryPath is where the CSV summary is written. Empty disables it.
	SummaryPath string

	// GraphPath is where the DOT graph is written. Empty disables it.
	GraphPath string

	// ReportPath is where the Markdown report is written. Empty disables it.
	ReportPath string

	// DB, when non-nil, enables run persistence.
	DB *database.CrawlDB
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineSummaryPath sets the CSV summary output path.
func WithPipelineSummaryPath(path string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SummaryPath = path
	}
}

// WithPipelineGraphPath sets the DOT graph output path.
func WithPipelineGraphPath(path string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.GraphPath = path
	}
}

// WithPipelineReportPath sets the Markdown report output path.
func WithPipelineReportPath(path string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ReportPath = path
	}
}

// WithPipelineDatabase enables run persistence through db.
func WithPipelineDatabase(db *database.CrawlDB) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DB = db
	}
}

// DefaultPipeline creates a pipeline with the standard steps configured.
// The crawl always runs first; output steps are added only for the
// artifacts the configuration asks for.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the standard artifact set
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
func DefaultPipeline(engine *crawler.Engine, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddStep(NewCrawlStep(engine))
	if cfg.SummaryPath != "" {
		p.AddStep(NewSummaryStep(cfg.SummaryPath))
	}
	if cfg.GraphPath != "" {
		p.AddStep(NewGraphStep(cfg.GraphPath))
	}
	if cfg.ReportPath != "" {
		p.AddStep(NewMarkdownStep(cfg.ReportPath))
	}
	if cfg.DB != nil {
		p.AddStep(NewDatabaseStep(cfg.DB))
	}

	return p
}
