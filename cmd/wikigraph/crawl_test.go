package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wikigraph/wikigraph/internal/config"
	"github.com/wikigraph/wikigraph/internal/model"
	"github.com/wikigraph/wikigraph/internal/report"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [start-page...]" {
			t.Errorf("expected use 'crawl [start-page...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has wiki flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("wiki")
		if flag == nil {
			t.Fatal("expected wiki flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultWikiName {
			t.Errorf("expected default %q, got %q", config.DefaultWikiName, flag.DefValue)
		}
	})

	t.Run("has max-num-pages flag defaulting to unbounded", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-num-pages")
		if flag == nil {
			t.Fatal("expected max-num-pages flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
		if flag.DefValue != "0" {
			t.Errorf("expected default '0', got %q", flag.DefValue)
		}
	})

	t.Run("has output flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"pages-summary", "page-content-dir", "dot", "report"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has database flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"no-db", "db-dir"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestBuildConfig tests flag to config translation.
func TestBuildConfig(t *testing.T) {
	// No t.Parallel: buildConfig reads environment variables.

	t.Run("defaults with start pages from args", func(t *testing.T) {
		cmd := NewCrawlCmd()

		cfg, err := buildConfig(cmd, []string{"Hollow_Knight"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}

		if cfg.WikiName != config.DefaultWikiName {
			t.Errorf("expected wiki %q, got %q", config.DefaultWikiName, cfg.WikiName)
		}
		if len(cfg.StartPages) != 1 || cfg.StartPages[0] != "Hollow_Knight" {
			t.Errorf("unexpected start pages %v", cfg.StartPages)
		}
		if !cfg.Unbounded() {
			t.Errorf("expected unbounded crawl by default, got max %d", cfg.MaxPages)
		}
		if !cfg.SaveToDB {
			t.Error("expected database persistence enabled by default")
		}
	})

	t.Run("explicit zero page budget is rejected", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("max-num-pages", "0"); err != nil {
			t.Fatal(err)
		}

		_, err := buildConfig(cmd, []string{"Hollow_Knight"})
		if err == nil {
			t.Fatal("expected error for explicit zero budget")
		}
		if !strings.Contains(err.Error(), "max-num-pages") {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("negative page budget is rejected", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("max-num-pages", "-3"); err != nil {
			t.Fatal(err)
		}

		if _, err := buildConfig(cmd, []string{"Hollow_Knight"}); err == nil {
			t.Fatal("expected error for negative budget")
		}
	})

	t.Run("positive page budget is accepted", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("max-num-pages", "500"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"Hollow_Knight"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if cfg.MaxPages != 500 {
			t.Errorf("expected budget 500, got %d", cfg.MaxPages)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
			t.Fatal(err)
		}

		if _, err := buildConfig(cmd, []string{"Hollow_Knight"}); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("loads wiki settings from config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wikigraph.yaml")
		content := `wikis:
  hollowknight:
    stripPrefixes:
      - "Lore/"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"Hollow_Knight"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}

		wc := cfg.WikiConfigs.GetWikiConfig("hollowknight")
		if len(wc.StripPrefixes) != 1 || wc.StripPrefixes[0] != "Lore/" {
			t.Errorf("unexpected strip prefixes %v", wc.StripPrefixes)
		}
	})

	t.Run("json flag selects JSON reports", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("json", "true"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"Hollow_Knight"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if !cfg.JSONOutput {
			t.Error("expected JSON output enabled")
		}
	})

	t.Run("no-db disables persistence", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("no-db", "true"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"Hollow_Knight"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if cfg.SaveToDB {
			t.Error("expected persistence disabled")
		}
	})

	t.Run("environment overrides wiki name", func(t *testing.T) {
		t.Setenv("WIKIGRAPH_WIKI", "hogwartslegacy")

		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"Hogwarts"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if cfg.WikiName != "hogwartslegacy" {
			t.Errorf("expected env override, got %q", cfg.WikiName)
		}
	})

	t.Run("explicit wiki flag beats environment", func(t *testing.T) {
		t.Setenv("WIKIGRAPH_WIKI", "hogwartslegacy")

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("wiki", "hollowknight"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"Hollow_Knight"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if cfg.WikiName != "hollowknight" {
			t.Errorf("expected flag to win over environment, got %q", cfg.WikiName)
		}
	})

	t.Run("explicit db-dir flag beats environment", func(t *testing.T) {
		t.Setenv("WIKIGRAPH_DB_DIR", "/tmp/from-env")

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("db-dir", "/tmp/from-flag"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"Hollow_Knight"})
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if cfg.DBDir != "/tmp/from-flag" {
			t.Errorf("expected flag to win over environment, got %q", cfg.DBDir)
		}
	})

	t.Run("missing start page fails validation", func(t *testing.T) {
		cmd := NewCrawlCmd()

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if err := cfg.Validate(); err == nil {
			t.Error("expected validation error without start pages")
		}
	})
}

// TestTerminalWriter tests report writer selection for terminal output.
func TestTerminalWriter(t *testing.T) {
	t.Parallel()

	t.Run("default is the text report", func(t *testing.T) {
		t.Parallel()

		w := terminalWriter(config.NewConfig(), &bytes.Buffer{})
		if _, ok := w.(*report.SimpleWriter); !ok {
			t.Errorf("expected *report.SimpleWriter, got %T", w)
		}
	})

	t.Run("json output selects the JSON writer", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONOutput = true

		out := &bytes.Buffer{}
		w := terminalWriter(cfg, out)
		if _, ok := w.(*report.JSONWriter); !ok {
			t.Fatalf("expected *report.JSONWriter, got %T", w)
		}

		r := model.NewCrawlReport("hollowknight", "Hollow_Knight")
		r.StopReason = model.StopExhausted
		if _, err := w.Write(r); err != nil {
			t.Fatalf("failed to write report: %v", err)
		}
		if !strings.Contains(out.String(), `"wiki_name": "hollowknight"`) {
			t.Errorf("expected pretty-printed JSON, got %q", out.String())
		}
	})
}
