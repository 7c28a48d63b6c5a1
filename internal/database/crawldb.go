package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wikigraph/wikigraph/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl run history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all wikis rather
// than one file per wiki. This simplifies cross-wiki queries and
// backup/restore operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "wikigraph.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections mostly
	// buy lock contention here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per crawl invocation, with the full report as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		wiki TEXT NOT NULL,
		start_page TEXT NOT NULL,
		stop_reason TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_wiki ON runs(wiki);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages store individual downloads, normalized for querying
	CREATE TABLE IF NOT EXISTS pages (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		requested_name TEXT,
		title TEXT,
		html_path TEXT,
		snapshot TEXT,
		fetched_at DATETIME,
		UNIQUE(run_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_name ON pages(name);

	-- Links store one row per directed edge discovered in a run
	CREATE TABLE IF NOT EXISTS links (
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		dest TEXT NOT NULL,
		UNIQUE(run_id, source, dest)
	);

	CREATE INDEX IF NOT EXISTS idx_links_run ON links(run_id);
	CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlReport persists a finished crawl run: the run row with the
// full report serialized as JSON, plus normalized page and link rows.
// Everything lands in one transaction so a run is stored completely or
// not at all.
func (cdb *CrawlDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	runQuery := `
	INSERT INTO runs (id, wiki, start_page, stop_reason, page_count, started_at, finished_at, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		stop_reason = excluded.stop_reason,
		page_count = excluded.page_count,
		finished_at = excluded.finished_at,
		report_json = excluded.report_json
	`
	_, err = tx.ExecContext(ctx, runQuery,
		report.RunID,
		report.WikiName,
		report.StartPage,
		report.StopReason.String(),
		report.PageCount(),
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	pageQuery := `
	INSERT INTO pages (run_id, name, requested_name, title, html_path, snapshot, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, name) DO UPDATE SET
		requested_name = excluded.requested_name,
		title = excluded.title,
		html_path = excluded.html_path,
		snapshot = excluded.snapshot,
		fetched_at = excluded.fetched_at
	`
	linkQuery := `
	INSERT INTO links (run_id, source, dest)
	VALUES (?, ?, ?)
	ON CONFLICT(run_id, source, dest) DO NOTHING
	`

	for _, p := range report.Pages {
		_, err = tx.ExecContext(ctx, pageQuery,
			report.RunID,
			p.Name,
			p.RequestedName,
			p.Title,
			p.HTMLPath,
			p.Snapshot,
			p.FetchedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert page %q: %w", p.Name, err)
		}

		for _, dest := range p.OutgoingLinks {
			if _, err := tx.ExecContext(ctx, linkQuery, report.RunID, p.Name, dest); err != nil {
				return fmt.Errorf("failed to insert link %q -> %q: %w", p.Name, dest, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunMetadata contains summary information about a stored crawl run.
// This is used for displaying run history without loading the full report.
type RunMetadata struct {
	// RunID is the unique identifier of the run.
	RunID string

	// Wiki is the crawled wiki name.
	Wiki string

	// StartPage is the identifier the crawl started from.
	StartPage string

	// StopReason records why the crawl terminated.
	StopReason string

	// PageCount is the number of pages downloaded.
	PageCount int

	// StartedAt is when the crawl began.
	StartedAt time.Time
}

// ListRuns retrieves run metadata, newest first. When wiki is non-empty
// only that wiki's runs are returned.
func (cdb *CrawlDB) ListRuns(ctx context.Context, wiki string) ([]RunMetadata, error) {
	query := `
	SELECT id, wiki, start_page, stop_reason, page_count, started_at
	FROM runs
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if wiki != "" {
		query += " AND wiki = ?"
		args = append(args, wiki)
	}
	query += " ORDER BY started_at DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string

		err := rows.Scan(
			&meta.RunID,
			&meta.Wiki,
			&meta.StartPage,
			&meta.StopReason,
			&meta.PageCount,
			&startedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves a stored crawl report by run ID.
// Returns nil without error when the run does not exist.
func (cdb *CrawlDB) GetRun(ctx context.Context, runID string) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE id = ?
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, runID).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetLatestRun retrieves the most recent crawl report for a wiki.
// Returns nil without error when the wiki has no stored runs.
func (cdb *CrawlDB) GetLatestRun(ctx context.Context, wiki string) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE wiki = ?
	ORDER BY started_at DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, wiki).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// Link is one directed edge stored for a run.
type Link struct {
	// Source is the page the link was found on.
	Source string

	// Dest is the page the link points to.
	Dest string
}

// GetRunLinks retrieves the directed edges of a run, ordered by source
// then destination.
func (cdb *CrawlDB) GetRunLinks(ctx context.Context, runID string) ([]Link, error) {
	query := `
	SELECT source, dest FROM links
	WHERE run_id = ?
	ORDER BY source, dest
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run links: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.Source, &l.Dest); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, l)
	}

	return links, rows.Err()
}

// ListWikis returns the distinct wikis that have stored runs.
func (cdb *CrawlDB) ListWikis(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT wiki FROM runs
	ORDER BY wiki
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list wikis: %w", err)
	}
	defer rows.Close()

	var wikis []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan wiki: %w", err)
		}
		wikis = append(wikis, w)
	}

	return wikis, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
