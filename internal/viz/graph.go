package viz

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matsen/citegraph/internal/graph"
)

// DefaultLabelLen is the default maximum length of a node label.
const DefaultLabelLen = 40

// Options configures the conversion of a citation graph.
type Options struct {
	Title string
	// MinWeight drops author edges whose weight is below it. Author edges
	// without any realized citation are always dropped.
	MinWeight float64
	LabelLen  int
}

func (o Options) labelLen() int {
	if o.LabelLen <= 0 {
		return DefaultLabelLen
	}
	return o.LabelLen
}

// FromWorks converts a works graph. Nodes are labeled by title and sized by the
// citations they receive within the graph.
func FromWorks(g *graph.Graph, opts Options) *GraphData {
	cited := make(map[string]int, g.NodeCount())
	edges := make([]Edge, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		cited[e.Target]++
		edges = append(edges, Edge{
			Source:  e.Source,
			Target:  e.Target,
			Weight:  1,
			Summary: stringAttr(e.Attrs, "date"),
		})
	}

	nodes := make([]Node, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes = append(nodes, Node{
			ID:      n.ID,
			Kind:    KindWork,
			Label:   label(n, "title", opts.labelLen()),
			Size:    cited[n.ID],
			Details: details(n.Attrs),
		})
	}

	return &GraphData{Title: opts.Title, Nodes: nodes, Edges: edges}
}

// FromAuthors converts an authors graph. Nodes are labeled by display name and
// sized by their number of works; only edges with at least one realized citation
// and a weight of at least opts.MinWeight are kept.
func FromAuthors(g *graph.Graph, opts Options) *GraphData {
	nodes := make([]Node, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes = append(nodes, Node{
			ID:      n.ID,
			Kind:    KindAuthor,
			Label:   label(n, "display_name", opts.labelLen()),
			Size:    intAttr(n.Attrs, graph.AttrWorks),
			Details: details(n.Attrs),
		})
	}

	var edges []Edge
	for _, e := range g.Edges() {
		num := intAttr(e.Attrs, graph.AttrNumerator)
		w := floatAttr(e.Attrs, graph.AttrWeight)
		if num == 0 || w < opts.MinWeight {
			continue
		}
		edges = append(edges, Edge{
			Source:  e.Source,
			Target:  e.Target,
			Weight:  w,
			Summary: fmt.Sprintf("%d/%d (%.1f%%)", num, intAttr(e.Attrs, graph.AttrDenominator), w),
		})
	}

	return &GraphData{Title: opts.Title, Nodes: nodes, Edges: edges}
}

// label returns the node's key attribute truncated to n runes, or its id.
func label(node *graph.Node, key string, n int) string {
	s := stringAttr(node.Attrs, key)
	if s == "" {
		return node.ID
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// details lists the scalar attributes; nested values are left out.
func details(attrs graph.Attrs) []Detail {
	var out []Detail
	for _, k := range attrs.SortedKeys() {
		if s, ok := scalarString(attrs[k]); ok {
			out = append(out, Detail{Key: k, Value: s})
		}
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	}
	return "", false
}

func stringAttr(attrs graph.Attrs, key string) string {
	s, _ := attrs[key].(string)
	return s
}

func intAttr(attrs graph.Attrs, key string) int {
	switch x := attrs[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case json.Number:
		n, _ := x.Int64()
		return int(n)
	}
	return 0
}

func floatAttr(attrs graph.Attrs, key string) float64 {
	switch x := attrs[key].(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	}
	return 0
}
