package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaytaylor/html2text"

	"github.com/wikigraph/wikigraph/internal/model"
	"github.com/wikigraph/wikigraph/internal/storage"
	"github.com/wikigraph/wikigraph/internal/wiki"
)

// Fetcher retrieves one page's rendered markup and canonical title.
// The wiki.Client satisfies this; tests supply fakes.
type Fetcher interface {
	FetchPage(ctx context.Context, name string) (*wiki.PageData, error)
}

// Result is the outcome of one crawl run.
type Result struct {
	// Pages are the downloaded pages in crawl order.
	Pages []*model.Page

	// StopReason records whether the frontier ran empty or the page
	// budget was hit.
	StopReason model.StopReason
}

// Engine performs the bounded breadth-first crawl over the wiki's link
// graph. It owns the frontier and the seen set for the duration of one
// Crawl call; no state survives between calls.
//
// Design decision: The frontier is an explicit FIFO queue rather than a
// set with arbitrary removal order because:
//  1. Crawl order becomes reproducible and therefore testable
//  2. A bounded crawl downloads the pages closest to the start page,
//     which is the least surprising subset
type Engine struct {
	// fetcher retrieves page markup.
	fetcher Fetcher

	// extractor turns markup into candidate identifiers.
	extractor *Extractor

	// store, when non-nil, persists each page immediately after fetch.
	// Incremental persistence means a mid-crawl failure keeps earlier work.
	store storage.PageWriter

	// maxPages limits the number of downloaded pages.
	// Zero means unbounded.
	maxPages int

	// snapshots controls whether a plain-text snapshot is rendered
	// for each page.
	snapshots bool

	// progress, when non-nil, is called with the running page count
	// after each successful download.
	progress func(downloaded int)

	// logger is used for structured logging.
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithExtractor replaces the default link extractor.
func WithExtractor(e *Extractor) EngineOption {
	return func(eng *Engine) {
		if e != nil {
			eng.extractor = e
		}
	}
}

// WithStore enables incremental page persistence through the given writer.
func WithStore(store storage.PageWriter) EngineOption {
	return func(eng *Engine) {
		eng.store = store
	}
}

// WithMaxPages sets the page budget. Zero means unbounded.
func WithMaxPages(n int) EngineOption {
	return func(eng *Engine) {
		eng.maxPages = n
	}
}

// WithSnapshots controls plain-text snapshot rendering.
func WithSnapshots(enabled bool) EngineOption {
	return func(eng *Engine) {
		eng.snapshots = enabled
	}
}

// WithProgress sets a callback invoked with the running page count after
// each successful download.
func WithProgress(fn func(downloaded int)) EngineOption {
	return func(eng *Engine) {
		eng.progress = fn
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(eng *Engine) {
		if logger != nil {
			eng.logger = logger
		}
	}
}

// NewEngine creates a crawl engine using the given fetcher.
func NewEngine(fetcher Fetcher, opts ...EngineOption) *Engine {
	eng := &Engine{
		fetcher:   fetcher,
		extractor: NewExtractor(),
		snapshots: true,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(eng)
	}

	return eng
}

// Crawl downloads pages starting from startPage until the frontier is
// exhausted or the page budget is reached.
//
// Redirect handling: the wiki may resolve a requested identifier to a
// different canonical title. Both names are marked seen so a second link
// using the old spelling is not re-fetched. Aliases already sitting in
// the frontier are not rewritten; a page reachable through two distinct
// unresolved aliases can therefore be downloaded twice. This mirrors the
// wiki's own loose naming and is accepted rather than corrected.
//
// Error handling: a fetch failure aborts the crawl and is returned to the
// caller; pages persisted so far remain on disk. A page whose markup has
// no recognizable content region is skipped with a warning.
func (e *Engine) Crawl(ctx context.Context, startPage string) (*Result, error) {
	queue := []string{startPage}
	pending := map[string]bool{startPage: true}
	seen := make(map[string]bool)
	pages := make([]*model.Page, 0)

	var reason model.StopReason

	for {
		// Drop frontier entries that were resolved as seen after they
		// were enqueued (redirect targets), so the emptiness check below
		// only counts identifiers that would actually be fetched.
		for len(queue) > 0 && seen[queue[0]] {
			delete(pending, queue[0])
			queue = queue[1:]
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if len(queue) == 0 {
			reason = model.StopExhausted
			break
		}

		if e.maxPages > 0 && len(pages) >= e.maxPages {
			reason = model.StopLimitReached
			break
		}

		name := queue[0]
		queue = queue[1:]
		delete(pending, name)

		data, err := e.fetcher.FetchPage(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %q: %w", name, err)
		}

		// The requested name is seen before its links are examined, so no
		// identifier is fetched twice within one crawl.
		seen[name] = true

		resolved := wiki.NormalizeTitle(data.Title)

		links, err := e.extractor.Extract(data.HTML)
		if err != nil {
			if errors.Is(err, ErrContentRegionNotFound) {
				e.logger.Warn("skipping page without content region",
					"page", name,
					"resolved", resolved,
				)
				seen[resolved] = true
				continue
			}
			return nil, fmt.Errorf("failed to extract links from %q: %w", name, err)
		}

		page := &model.Page{
			Name:          resolved,
			RequestedName: name,
			Title:         data.Title,
			OutgoingLinks: links,
			HTML:          data.HTML,
			FetchedAt:     time.Now(),
		}

		if e.snapshots {
			if text, err := html2text.FromString(data.HTML, html2text.Options{OmitLinks: true, TextOnly: true}); err == nil {
				page.Snapshot = text
				page.TruncateSnapshot()
			} else {
				e.logger.Debug("snapshot rendering failed", "page", resolved, "error", err)
			}
		}

		if e.store != nil {
			path, err := e.store.WriteHTML(resolved, data.HTML)
			if err != nil {
				return nil, fmt.Errorf("failed to persist %q: %w", resolved, err)
			}
			page.HTMLPath = path
		}

		pages = append(pages, page)
		seen[resolved] = true

		for _, link := range links {
			if !seen[link] && !pending[link] {
				pending[link] = true
				queue = append(queue, link)
			}
		}

		e.logger.Debug("page downloaded",
			"page", resolved,
			"requested", name,
			"links", len(links),
			"frontier", len(queue),
			"downloaded", len(pages),
		)

		if e.progress != nil {
			e.progress(len(pages))
		}
	}

	return &Result{Pages: pages, StopReason: reason}, nil
}
