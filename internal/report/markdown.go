package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/wikigraph/wikigraph/internal/model"
)

// topLinkedLimit bounds the hub chart and table size.
const topLinkedLimit = 10

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeHubs(md, report)
	w.writePages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Wikigraph Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Wiki", "`" + report.WikiName + "`"},
			{"Start Page", "`" + report.StartPage + "`"},
			{"Run ID", "`" + report.RunID + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Downloaded", strconv.Itoa(report.PageCount())},
			{"Links Discovered", strconv.Itoa(report.EdgeCount())},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")

	switch {
	case report.ErrorMessage != "":
		md.Cautionf("The crawl aborted early: %s. Pages downloaded before the failure are included below.", report.ErrorMessage)
	case report.StopReason == model.StopLimitReached:
		md.Warningf("The page budget was reached before the wiki was exhausted. The graph covers only the pages closest to the start page.")
	default:
		md.Tip("All pages reachable from the start page were downloaded.")
	}
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	if report.StopReason == model.StopLimitReached {
		return "⚠️ Page limit reached (partial graph)"
	}
	return "✅ Complete"
}

// writeHubs writes the most-linked pages section with a distribution chart.
func (w *MarkdownWriter) writeHubs(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Most Linked Pages")
	md.PlainText("")

	hubs := topLinked(report.Pages, topLinkedLimit)
	if len(hubs) == 0 {
		md.PlainText("No links discovered.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(hubs))
	for i, h := range hubs {
		rows[i] = []string{"`" + h.name + "`", strconv.Itoa(h.count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Incoming Links"},
		Rows:   rows,
	})

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Incoming Link Distribution"),
		piechart.WithShowData(true),
	)
	for _, h := range hubs {
		chart.LabelAndIntValue(h.name, uint64(h.count))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePages writes the per-page table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages downloaded.")
		md.PlainText("")
		return
	}

	pages := make([]*model.Page, len(report.Pages))
	copy(pages, report.Pages)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })

	rows := make([][]string, len(pages))
	for i, p := range pages {
		rows[i] = []string{
			"`" + p.Name + "`",
			strconv.Itoa(len(p.OutgoingLinks)),
			p.HTMLPath,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Outgoing Links", "Saved Markup"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wikigraph](https://github.com/wikigraph/wikigraph)*")
}

// hub is one page with its incoming link count.
type hub struct {
	name  string
	count int
}

// topLinked returns up to limit pages ordered by incoming link count,
// ties broken by name.
func topLinked(pages []*model.Page, limit int) []hub {
	incoming := make(map[string]int)
	for _, p := range pages {
		for _, dest := range p.OutgoingLinks {
			incoming[dest]++
		}
	}

	hubs := make([]hub, 0, len(incoming))
	for name, count := range incoming {
		hubs = append(hubs, hub{name: name, count: count})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].count != hubs[j].count {
			return hubs[i].count > hubs[j].count
		}
		return hubs[i].name < hubs[j].name
	})

	if len(hubs) > limit {
		hubs = hubs[:limit]
	}
	return hubs
}
