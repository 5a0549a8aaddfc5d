package graph

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/citegraph/internal/work"
)

type parsedGraphML struct {
	Keys  []graphmlKey `xml:"key"`
	Graph graphmlGraph `xml:"graph"`
}

func writeAndParseGraphML(t *testing.T, g *Graph) (string, parsedGraphML) {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteGraphML(&buf, g); err != nil {
		t.Fatalf("WriteGraphML() error = %v", err)
	}
	var doc parsedGraphML
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, buf.String())
	}
	return buf.String(), doc
}

func TestWriteGraphML_AuthorsGraph(t *testing.T) {
	works := []work.Work{
		newWork("W1", "2020-01-01", []string{"A"}, nil),
		newWork("W2", "2021-01-01", []string{"B"}, []string{"W1"}),
	}
	out, doc := writeAndParseGraphML(t, BuildAuthors(works, FormatGraphML))

	if !strings.HasPrefix(out, xml.Header) {
		t.Error("output should start with the XML header")
	}
	if !strings.Contains(out, `edgedefault="directed"`) {
		t.Error("graph should be directed")
	}

	wantKeys := []graphmlKey{
		{ID: "d0", For: "node", AttrName: "display_name", AttrType: "string"},
		{ID: "d1", For: "node", AttrName: "id", AttrType: "string"},
		{ID: "d2", For: "node", AttrName: "works", AttrType: "long"},
		{ID: "d3", For: "edge", AttrName: "denominator", AttrType: "long"},
		{ID: "d4", For: "edge", AttrName: "numerator", AttrType: "long"},
		{ID: "d5", For: "edge", AttrName: "weight", AttrType: "double"},
	}
	if diff := cmp.Diff(wantKeys, doc.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	if len(doc.Graph.Nodes) != 2 || len(doc.Graph.Edges) != 4 {
		t.Fatalf("got %d nodes, %d edges; want 2, 4", len(doc.Graph.Nodes), len(doc.Graph.Edges))
	}

	wantNode := graphmlNode{ID: "A", Data: []graphmlData{
		{Key: "d0", Value: "Author A"},
		{Key: "d1", Value: "A"},
		{Key: "d2", Value: "1"},
	}}
	if diff := cmp.Diff(wantNode, doc.Graph.Nodes[0]); diff != "" {
		t.Errorf("node A mismatch (-want +got):\n%s", diff)
	}

	wantEdge := graphmlEdge{Source: "B", Target: "A", Data: []graphmlData{
		{Key: "d3", Value: "1"},
		{Key: "d4", Value: "1"},
		{Key: "d5", Value: "100.0"},
	}}
	if diff := cmp.Diff(wantEdge, doc.Graph.Edges[2]); diff != "" {
		t.Errorf("edge B -> A mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteGraphML_MixedTypes(t *testing.T) {
	g := New()
	g.AddNode("W1", Attrs{"score": 1, "tag": 7, "ok": true})
	g.AddNode("W2", Attrs{"score": 2.5, "tag": "seven"})
	g.AddEdge("W1", "W2", Attrs{"date": "2020-01-01"})

	_, doc := writeAndParseGraphML(t, g)

	wantKeys := []graphmlKey{
		{ID: "d0", For: "node", AttrName: "ok", AttrType: "boolean"},
		{ID: "d1", For: "node", AttrName: "score", AttrType: "double"},
		{ID: "d2", For: "node", AttrName: "tag", AttrType: "string"},
		{ID: "d3", For: "edge", AttrName: "date", AttrType: "string"},
	}
	if diff := cmp.Diff(wantKeys, doc.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	wantW1 := []graphmlData{
		{Key: "d0", Value: "true"},
		{Key: "d1", Value: "1.0"},
		{Key: "d2", Value: "7"},
	}
	if diff := cmp.Diff(wantW1, doc.Graph.Nodes[0].Data); diff != "" {
		t.Errorf("W1 data mismatch (-want +got):\n%s", diff)
	}
	wantW2 := []graphmlData{
		{Key: "d1", Value: "2.5"},
		{Key: "d2", Value: "seven"},
	}
	if diff := cmp.Diff(wantW2, doc.Graph.Nodes[1].Data); diff != "" {
		t.Errorf("W2 data mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteGraphML_EscapesText(t *testing.T) {
	g := New()
	g.AddNode("W1", Attrs{"title": `Cats & "dogs" <3`})

	out, doc := writeAndParseGraphML(t, g)

	if strings.Contains(out, "& ") {
		t.Error("ampersand should be escaped")
	}
	if got := doc.Graph.Nodes[0].Data[0].Value; got != `Cats & "dogs" <3` {
		t.Errorf("round-tripped title = %q", got)
	}
}

func TestWrite_DispatchesByFormat(t *testing.T) {
	g := New()
	g.AddNode("W1", nil)

	var gml, graphml bytes.Buffer
	if err := Write(&gml, g, FormatGML); err != nil {
		t.Fatalf("Write(gml) error = %v", err)
	}
	if err := Write(&graphml, g, FormatGraphML); err != nil {
		t.Fatalf("Write(graphml) error = %v", err)
	}
	if !strings.HasPrefix(gml.String(), "graph [") {
		t.Errorf("gml output = %q", gml.String())
	}
	if !strings.Contains(graphml.String(), "<graphml") {
		t.Errorf("graphml output = %q", graphml.String())
	}
	if err := Write(&bytes.Buffer{}, g, Format(9)); err == nil {
		t.Error("Write() expected error for unknown format")
	}
}
