// Package viz renders citation graphs as interactive HTML pages (Cytoscape.js).
package viz

// Node kinds.
const (
	KindWork   = "work"
	KindAuthor = "author"
)

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Title string `json:"-"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a work or an author.
type Node struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // KindWork or KindAuthor

	// Display
	Label string `json:"label"`
	// Size is the citations received within the graph (works) or the number
	// of works (authors).
	Size int `json:"size"`

	// Details are the scalar attributes shown in the tooltip, sorted by key.
	Details []Detail `json:"details,omitempty"`
}

// Detail is one key/value line of a tooltip.
type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Edge is a citation (works) or a weighted author → author relation.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	// Summary describes the edge in the tooltip, e.g. "3/4 (75.0%)".
	Summary string `json:"summary,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
