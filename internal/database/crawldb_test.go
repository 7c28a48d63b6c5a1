package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wikigraph/wikigraph/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// testReport builds a finished report for storage tests.
func testReport(wiki, start string) *model.CrawlReport {
	r := model.NewCrawlReport(wiki, start)
	r.Pages = []*model.Page{
		{
			Name:          start,
			RequestedName: start,
			Title:         start,
			OutgoingLinks: []string{"Charms", "Nail"},
			HTMLPath:      "page_html/" + start + ".html",
			FetchedAt:     time.Now(),
		},
		{
			Name:          "Nail",
			RequestedName: "Nail",
			Title:         "Nail",
			OutgoingLinks: []string{start},
			FetchedAt:     time.Now(),
		},
	}
	r.StopReason = model.StopExhausted
	r.FinishedAt = r.StartedAt.Add(2 * time.Second)
	return r
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, "wikigraph.db")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		if _, err := Open(filepath.Join(t.TempDir(), "missing"), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()

		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()
	})
}

// TestSaveCrawlReport tests run persistence.
func TestSaveCrawlReport(t *testing.T) {
	t.Parallel()

	t.Run("saves and reloads a run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		report := testReport("hollowknight", "Hollow_Knight")

		if err := db.SaveCrawlReport(ctx, report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		loaded, err := db.GetRun(ctx, report.RunID)
		if err != nil {
			t.Fatalf("failed to load run: %v", err)
		}
		if loaded == nil {
			t.Fatal("expected stored run, got nil")
		}
		if loaded.WikiName != "hollowknight" {
			t.Errorf("unexpected wiki %q", loaded.WikiName)
		}
		if loaded.PageCount() != 2 {
			t.Errorf("expected 2 pages, got %d", loaded.PageCount())
		}
		if loaded.StopReason != model.StopExhausted {
			t.Errorf("unexpected stop reason %s", loaded.StopReason)
		}
	})

	t.Run("saving the same run twice updates in place", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		report := testReport("hollowknight", "Hollow_Knight")

		if err := db.SaveCrawlReport(ctx, report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		report.StopReason = model.StopLimitReached
		if err := db.SaveCrawlReport(ctx, report); err != nil {
			t.Fatalf("failed to resave report: %v", err)
		}

		runs, err := db.ListRuns(ctx, "hollowknight")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		if runs[0].StopReason != "limit_reached" {
			t.Errorf("expected updated stop reason, got %q", runs[0].StopReason)
		}
	})

	t.Run("stores normalized links", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		report := testReport("hollowknight", "Hollow_Knight")

		if err := db.SaveCrawlReport(ctx, report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		links, err := db.GetRunLinks(ctx, report.RunID)
		if err != nil {
			t.Fatalf("failed to load links: %v", err)
		}

		want := []Link{
			{Source: "Hollow_Knight", Dest: "Charms"},
			{Source: "Hollow_Knight", Dest: "Nail"},
			{Source: "Nail", Dest: "Hollow_Knight"},
		}
		if len(links) != len(want) {
			t.Fatalf("expected %d links, got %d", len(want), len(links))
		}
		for i, l := range links {
			if l != want[i] {
				t.Errorf("link %d: expected %+v, got %+v", i, want[i], l)
			}
		}
	})
}

// TestListRuns tests history queries.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	first := testReport("hollowknight", "Hollow_Knight")
	first.StartedAt = time.Now().Add(-time.Hour)
	second := testReport("hollowknight", "Charms")
	other := testReport("hogwartslegacy", "Hogwarts")

	for _, r := range []*model.CrawlReport{first, second, other} {
		if err := db.SaveCrawlReport(ctx, r); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	t.Run("filters by wiki, newest first", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "hollowknight")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].RunID != second.RunID {
			t.Errorf("expected newest run first, got %q", runs[0].RunID)
		}
	})

	t.Run("empty wiki lists all runs", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Errorf("expected 3 runs, got %d", len(runs))
		}
	})

	t.Run("latest run per wiki", func(t *testing.T) {
		latest, err := db.GetLatestRun(ctx, "hollowknight")
		if err != nil {
			t.Fatalf("failed to get latest run: %v", err)
		}
		if latest == nil || latest.RunID != second.RunID {
			t.Errorf("expected latest run %q, got %+v", second.RunID, latest)
		}
	})

	t.Run("lists distinct wikis", func(t *testing.T) {
		wikis, err := db.ListWikis(ctx)
		if err != nil {
			t.Fatalf("failed to list wikis: %v", err)
		}

		want := []string{"hogwartslegacy", "hollowknight"}
		if len(wikis) != len(want) {
			t.Fatalf("expected %v, got %v", want, wikis)
		}
		for i := range want {
			if wikis[i] != want[i] {
				t.Errorf("expected %v, got %v", want, wikis)
			}
		}
	})
}

// TestGetRun tests missing-run behavior.
func TestGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	run, err := db.GetRun(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil for missing run, got %+v", run)
	}
}

// TestParseTimestamp tests the format fallback list.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "sqlite default",
			input: "2026-08-25 12:30:45",
			want:  time.Date(2026, 8, 25, 12, 30, 45, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			input: "2026-08-25T12:30:45Z",
			want:  time.Date(2026, 8, 25, 12, 30, 45, 0, time.UTC),
		},
		{
			name:  "unparseable",
			input: "not a timestamp",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
