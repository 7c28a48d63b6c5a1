// Package graph builds the directed link graph discovered by a crawl and
// renders it in Graphviz DOT form.
package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wikigraph/wikigraph/internal/model"
)

// DirectedGraph is the page link graph. Sources keep insertion order so
// DOT output follows crawl order; each source's destinations are kept
// sorted and unique.
type DirectedGraph struct {
	// edges maps a source page to the set of pages it links to.
	edges map[string]map[string]bool

	// order records sources in first-insertion order.
	order []string
}

// NewDirectedGraph creates an empty graph.
func NewDirectedGraph() *DirectedGraph {
	return &DirectedGraph{
		edges: make(map[string]map[string]bool),
	}
}

// Build constructs the link graph from crawled pages. Every page becomes
// a source node even when it has no outgoing links.
func Build(pages []*model.Page) *DirectedGraph {
	g := NewDirectedGraph()
	for _, p := range pages {
		g.AddNode(p.Name)
		for _, dest := range p.OutgoingLinks {
			g.AddEdge(p.Name, dest)
		}
	}
	return g
}

// AddNode ensures the named page exists as a source, with no edges yet.
func (g *DirectedGraph) AddNode(name string) {
	if _, ok := g.edges[name]; !ok {
		g.edges[name] = make(map[string]bool)
		g.order = append(g.order, name)
	}
}

// AddEdge records a link from source to dest. Adding the same edge twice
// is a no-op.
func (g *DirectedGraph) AddEdge(source, dest string) {
	g.AddNode(source)
	g.edges[source][dest] = true
}

// NodeCount reports the number of source pages.
func (g *DirectedGraph) NodeCount() int {
	return len(g.order)
}

// EdgeCount reports the total number of distinct edges.
func (g *DirectedGraph) EdgeCount() int {
	n := 0
	for _, dests := range g.edges {
		n += len(dests)
	}
	return n
}

// Destinations returns the sorted link targets of the named source.
func (g *DirectedGraph) Destinations(source string) []string {
	dests := make([]string, 0, len(g.edges[source]))
	for d := range g.edges[source] {
		dests = append(dests, d)
	}
	sort.Strings(dests)
	return dests
}

// WriteDOT renders the graph in Graphviz DOT form. Sources appear in
// insertion order and each source's edges in sorted destination order,
// so the same crawl always produces byte-identical output.
func (g *DirectedGraph) WriteDOT(w io.Writer) error {
	if _, err := io.WriteString(w, "digraph {\n"); err != nil {
		return fmt.Errorf("failed to write graph header: %w", err)
	}

	for _, source := range g.order {
		for _, dest := range g.Destinations(source) {
			line := fmt.Sprintf("  %s -> %s;\n", quote(source), quote(dest))
			if _, err := io.WriteString(w, line); err != nil {
				return fmt.Errorf("failed to write edge: %w", err)
			}
		}
	}

	if _, err := io.WriteString(w, "}\n"); err != nil {
		return fmt.Errorf("failed to write graph footer: %w", err)
	}
	return nil
}

// quote wraps an identifier in double quotes, escaping embedded quotes
// and backslashes so the output stays valid DOT.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
