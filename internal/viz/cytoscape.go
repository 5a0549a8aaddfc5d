package viz

import (
	"encoding/json"
	"fmt"
)

// element is one entry of a Cytoscape.js elements array.
type element struct {
	Group string `json:"group"` // "nodes" or "edges"
	Data  any    `json:"data"`
}

type edgeData struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Weight  float64 `json:"weight"`
	Summary string  `json:"summary,omitempty"`
}

// ToCytoscapeJSON encodes the graph as a Cytoscape.js elements array, nodes
// first. Edge ids are "e0", "e1", ... in edge order.
func (g *GraphData) ToCytoscapeJSON() (string, error) {
	elements := make([]element, 0, len(g.Nodes)+len(g.Edges))
	for _, n := range g.Nodes {
		elements = append(elements, element{Group: "nodes", Data: n})
	}
	for i, e := range g.Edges {
		elements = append(elements, element{Group: "edges", Data: edgeData{
			ID:      fmt.Sprintf("e%d", i),
			Source:  e.Source,
			Target:  e.Target,
			Weight:  e.Weight,
			Summary: e.Summary,
		}})
	}

	b, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("encoding graph elements: %w", err)
	}
	return string(b), nil
}
