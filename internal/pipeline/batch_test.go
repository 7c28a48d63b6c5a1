package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/wikigraph/wikigraph/internal/model"
)

// TestBatchProcessor tests concurrent crawls from multiple start pages.
func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	factory := func() *Pipeline {
		p := New()
		p.AddStep(NewCrawlStep(testEngine()))
		return p
	}

	t.Run("results keep start page order", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory, WithConcurrency(2))
		starts := []string{"Hollow_Knight", "Nail"}

		reports, err := bp.ProcessBatch(context.Background(), "hollowknight", starts)
		if err != nil {
			t.Fatalf("failed to process batch: %v", err)
		}

		if len(reports) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(reports))
		}
		for i, start := range starts {
			if reports[i].StartPage != start {
				t.Errorf("report %d: expected start page %q, got %q", i, start, reports[i].StartPage)
			}
			if reports[i].PageCount() != 2 {
				t.Errorf("report %d: expected 2 pages, got %d", i, reports[i].PageCount())
			}
		}
	})

	t.Run("failed crawl is recorded, not fatal", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory)
		reports, err := bp.ProcessBatch(context.Background(), "hollowknight",
			[]string{"No_Such_Page", "Hollow_Knight"})
		if err != nil {
			t.Fatalf("failed to process batch: %v", err)
		}

		if reports[0].ErrorMessage == "" {
			t.Error("expected error recorded for missing start page")
		}
		if reports[1].ErrorMessage != "" {
			t.Errorf("unexpected error for valid start page: %q", reports[1].ErrorMessage)
		}
	})

	t.Run("callback receives every report", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory)

		var mu sync.Mutex
		got := make(map[int]*model.CrawlReport)

		err := bp.ProcessBatchWithCallback(context.Background(), "hollowknight",
			[]string{"Hollow_Knight", "Nail"},
			func(report *model.CrawlReport, index int) {
				mu.Lock()
				got[index] = report
				mu.Unlock()
			})
		if err != nil {
			t.Fatalf("failed to process batch: %v", err)
		}

		if len(got) != 2 {
			t.Fatalf("expected 2 callbacks, got %d", len(got))
		}
		if got[1].StartPage != "Nail" {
			t.Errorf("expected index 1 to be Nail, got %q", got[1].StartPage)
		}
	})

	t.Run("cancelled context aborts the batch", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(factory)
		if _, err := bp.ProcessBatch(ctx, "hollowknight", []string{"Hollow_Knight"}); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
