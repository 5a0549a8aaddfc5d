package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func edgePairs(g *Graph) [][2]string {
	var pairs [][2]string
	for _, e := range g.Edges() {
		pairs = append(pairs, [2]string{e.Source, e.Target})
	}
	return pairs
}

func TestGraph_AddNodeMerges(t *testing.T) {
	g := New()
	if i := g.AddNode("A", Attrs{"x": 1}); i != 0 {
		t.Errorf("AddNode() = %d, want 0", i)
	}
	if i := g.AddNode("B", nil); i != 1 {
		t.Errorf("AddNode() = %d, want 1", i)
	}
	if i := g.AddNode("A", Attrs{"y": 2}); i != 0 {
		t.Errorf("AddNode() on existing id = %d, want 0", i)
	}

	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if diff := cmp.Diff(Attrs{"x": 1, "y": 2}, g.Node("A").Attrs); diff != "" {
		t.Errorf("merged attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestGraph_AddEdgeCreatesEndpoints(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", Attrs{"date": "2020"})

	if !g.HasNode("A") || !g.HasNode("B") {
		t.Fatal("AddEdge() should create both endpoints")
	}
	if len(g.Node("B").Attrs) != 0 {
		t.Errorf("created endpoint attrs = %v, want empty", g.Node("B").Attrs)
	}

	g.AddEdge("A", "B", Attrs{"weight": 1.5})
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	want := Attrs{"date": "2020", "weight": 1.5}
	if diff := cmp.Diff(want, g.Edge("A", "B").Attrs); diff != "" {
		t.Errorf("edge attrs mismatch (-want +got):\n%s", diff)
	}
	if g.Edge("B", "A") != nil {
		t.Error("edges are directed")
	}
}

func TestGraph_EdgesGroupedBySource(t *testing.T) {
	g := New()
	g.AddNode("A", nil)
	g.AddNode("B", nil)
	g.AddNode("C", nil)
	g.AddEdge("B", "A", nil)
	g.AddEdge("A", "C", nil)
	g.AddEdge("C", "C", nil)
	g.AddEdge("A", "B", nil)

	want := [][2]string{{"A", "C"}, {"A", "B"}, {"B", "A"}, {"C", "C"}}
	if diff := cmp.Diff(want, edgePairs(g)); diff != "" {
		t.Errorf("Edges() order mismatch (-want +got):\n%s", diff)
	}
}

func TestGraph_Empty(t *testing.T) {
	g := New()
	if !g.IsEmpty() {
		t.Error("IsEmpty() = false for new graph")
	}
	if g.Node("A") != nil || g.Edge("A", "B") != nil {
		t.Error("lookups on empty graph should return nil")
	}
	if len(g.Edges()) != 0 {
		t.Errorf("Edges() = %d, want 0", len(g.Edges()))
	}
}

func TestAttrs_SortedKeys(t *testing.T) {
	a := Attrs{"weight": 1, "date": "x", "numerator": 2}
	want := []string{"date", "numerator", "weight"}
	if diff := cmp.Diff(want, a.SortedKeys()); diff != "" {
		t.Errorf("SortedKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"gml", FormatGML, false},
		{"GML", FormatGML, false},
		{"graphml", FormatGraphML, false},
		{"GraphML", FormatGraphML, false},
		{"xml", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
