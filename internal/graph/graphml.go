package graph

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

const (
	graphmlNS             = "http://graphml.graphdrawing.org/xmlns"
	graphmlXSI            = "http://www.w3.org/2001/XMLSchema-instance"
	graphmlSchemaLocation = "http://graphml.graphdrawing.org/xmlns http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd"
)

type graphmlDoc struct {
	XMLName        xml.Name     `xml:"graphml"`
	XMLNS          string       `xml:"xmlns,attr"`
	XSI            string       `xml:"xmlns:xsi,attr"`
	SchemaLocation string       `xml:"xsi:schemaLocation,attr"`
	Keys           []graphmlKey `xml:"key"`
	Graph          graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// keyTable assigns GraphML key ids to (domain, attribute) pairs and decides each
// attribute's declared type from all of its values.
type keyTable struct {
	ids   map[string]string
	kinds map[string]valueKind
	keys  []graphmlKey
}

func newKeyTable() *keyTable {
	return &keyTable{
		ids:   make(map[string]string),
		kinds: make(map[string]valueKind),
	}
}

func (kt *keyTable) declare(domain string, attrs []Attrs) {
	var names []string
	for _, a := range attrs {
		for k, v := range a {
			kind := classify(v)
			if kind == kindNil {
				continue
			}
			id := domain + "\x00" + k
			if _, seen := kt.kinds[id]; !seen {
				names = append(names, k)
			}
			kt.kinds[id] = mergeKind(kt.kinds[id], kind)
		}
	}
	sort.Strings(names)

	for _, k := range names {
		id := domain + "\x00" + k
		keyID := fmt.Sprintf("d%d", len(kt.keys))
		kt.ids[id] = keyID
		kt.keys = append(kt.keys, graphmlKey{
			ID:       keyID,
			For:      domain,
			AttrName: k,
			AttrType: graphmlType(kt.kinds[id]),
		})
	}
}

func (kt *keyTable) data(domain string, attrs Attrs) []graphmlData {
	var data []graphmlData
	for _, k := range attrs.SortedKeys() {
		v := attrs[k]
		if classify(v) == kindNil {
			continue
		}
		id := domain + "\x00" + k
		data = append(data, graphmlData{
			Key:   kt.ids[id],
			Value: graphmlValue(v, kt.kinds[id]),
		})
	}
	return data
}

// mergeKind widens the declared kind of an attribute seen with several types.
func mergeKind(prev, next valueKind) valueKind {
	switch {
	case prev == kindNil || prev == next:
		return next
	case (prev == kindInt && next == kindFloat) || (prev == kindFloat && next == kindInt):
		return kindFloat
	}
	return kindString
}

func graphmlType(k valueKind) string {
	switch k {
	case kindBool:
		return "boolean"
	case kindInt:
		return "long"
	case kindFloat:
		return "double"
	}
	return "string"
}

func graphmlValue(v any, declared valueKind) string {
	if declared == kindFloat {
		return formatFloat(toFloat64(v))
	}
	return toString(v)
}

// WriteGraphML writes g as a directed GraphML document.
//
// GraphML attributes are scalar; a nested value that reaches the writer is
// stored as its JSON text in a string attribute.
func WriteGraphML(w io.Writer, g *Graph) error {
	nodeAttrs := make([]Attrs, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodeAttrs = append(nodeAttrs, n.Attrs)
	}
	edges := g.Edges()
	edgeAttrs := make([]Attrs, 0, len(edges))
	for _, e := range edges {
		edgeAttrs = append(edgeAttrs, e.Attrs)
	}

	kt := newKeyTable()
	kt.declare("node", nodeAttrs)
	kt.declare("edge", edgeAttrs)

	doc := graphmlDoc{
		XMLNS:          graphmlNS,
		XSI:            graphmlXSI,
		SchemaLocation: graphmlSchemaLocation,
		Keys:           kt.keys,
		Graph: graphmlGraph{
			EdgeDefault: "directed",
			Nodes:       make([]graphmlNode, 0, g.NodeCount()),
			Edges:       make([]graphmlEdge, 0, len(edges)),
		},
	}
	for _, n := range g.Nodes() {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID:   n.ID,
			Data: kt.data("node", n.Attrs),
		})
	}
	for _, e := range edges {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: e.Source,
			Target: e.Target,
			Data:   kt.data("edge", e.Attrs),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing GraphML: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing GraphML: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing GraphML: %w", err)
	}
	return nil
}
