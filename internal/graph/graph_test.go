package graph

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/wikigraph/wikigraph/internal/model"
)

// TestDirectedGraph tests edge bookkeeping.
func TestDirectedGraph(t *testing.T) {
	t.Parallel()

	t.Run("counts nodes and edges", func(t *testing.T) {
		t.Parallel()

		g := NewDirectedGraph()
		g.AddEdge("A", "B")
		g.AddEdge("A", "C")
		g.AddEdge("B", "A")

		if g.NodeCount() != 2 {
			t.Errorf("expected 2 source nodes, got %d", g.NodeCount())
		}
		if g.EdgeCount() != 3 {
			t.Errorf("expected 3 edges, got %d", g.EdgeCount())
		}
	})

	t.Run("duplicate edges collapse", func(t *testing.T) {
		t.Parallel()

		g := NewDirectedGraph()
		g.AddEdge("A", "B")
		g.AddEdge("A", "B")

		if g.EdgeCount() != 1 {
			t.Errorf("expected 1 edge, got %d", g.EdgeCount())
		}
	})

	t.Run("destinations are sorted", func(t *testing.T) {
		t.Parallel()

		g := NewDirectedGraph()
		g.AddEdge("A", "Nail")
		g.AddEdge("A", "Charms")
		g.AddEdge("A", "Vessel")

		want := []string{"Charms", "Nail", "Vessel"}
		if got := g.Destinations("A"); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("self loops are kept", func(t *testing.T) {
		t.Parallel()

		g := NewDirectedGraph()
		g.AddEdge("A", "A")

		if g.EdgeCount() != 1 {
			t.Errorf("expected self loop kept, got %d edges", g.EdgeCount())
		}
	})
}

// TestBuild tests graph construction from crawled pages.
func TestBuild(t *testing.T) {
	t.Parallel()

	pages := []*model.Page{
		{Name: "A", OutgoingLinks: []string{"B", "C"}},
		{Name: "B", OutgoingLinks: []string{"A"}},
		{Name: "C"},
	}

	g := Build(pages)

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 3 {
		t.Errorf("expected 3 edges, got %d", g.EdgeCount())
	}
	if got := g.Destinations("C"); len(got) != 0 {
		t.Errorf("expected no destinations for C, got %v", got)
	}
}

// TestWriteDOT tests the Graphviz rendering.
func TestWriteDOT(t *testing.T) {
	t.Parallel()

	t.Run("empty graph", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewDirectedGraph().WriteDOT(&buf); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		want := "digraph {\n}\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})

	t.Run("edges follow insertion and sorted destination order", func(t *testing.T) {
		t.Parallel()

		g := NewDirectedGraph()
		g.AddEdge("B", "A")
		g.AddEdge("A", "C")
		g.AddEdge("A", "B")

		var buf bytes.Buffer
		if err := g.WriteDOT(&buf); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		want := "digraph {\n" +
			"  \"B\" -> \"A\";\n" +
			"  \"A\" -> \"B\";\n" +
			"  \"A\" -> \"C\";\n" +
			"}\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})

	t.Run("quotes special characters", func(t *testing.T) {
		t.Parallel()

		g := NewDirectedGraph()
		g.AddEdge(`Page"With"Quotes`, "B")

		var buf bytes.Buffer
		if err := g.WriteDOT(&buf); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		want := "digraph {\n  \"Page\\\"With\\\"Quotes\" -> \"B\";\n}\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})
}
