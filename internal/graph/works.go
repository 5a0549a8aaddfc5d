package graph

import (
	"github.com/matsen/citegraph/internal/sanitize"
	"github.com/matsen/citegraph/internal/work"
)

// DefaultWorkMetadata is the default allow-list of work fields kept on nodes.
var DefaultWorkMetadata = []string{"title", "publication_date", "authorships", "primary_location"}

// Clean sanitizes a record for the given output format.
func Clean(v any, f Format) any {
	if f == FormatGraphML {
		return sanitize.ForGraphML(v)
	}
	return sanitize.ForGML(v)
}

// cleanAttrs sanitizes a record object and returns it as attributes.
func cleanAttrs(raw map[string]any, f Format) Attrs {
	cleaned, _ := Clean(raw, f).(map[string]any)
	return Attrs(cleaned)
}

// BuildWorks builds a citation graph with one node per work.
//
// Each node carries the metadata fields named in the allow-list that survive
// sanitizing. Each reference to another work in the input becomes an edge from
// the citing to the cited work, with the citing work's publication date as the
// "date" attribute when known. References to works outside the input are dropped.
func BuildWorks(works []work.Work, metadata []string, f Format) *Graph {
	g := New()

	for _, w := range works {
		if w.ID == "" {
			continue
		}
		cleaned := cleanAttrs(w.Raw, f)
		attrs := make(Attrs, len(metadata))
		for _, m := range metadata {
			if v, ok := cleaned[m]; ok {
				attrs[m] = v
			}
		}
		g.AddNode(w.ID, attrs)
	}

	for _, w := range works {
		if w.ID == "" {
			continue
		}
		for _, r := range w.ReferencedWorks {
			if !g.HasNode(r) {
				continue
			}
			var attrs Attrs
			if w.PublicationDate != "" {
				attrs = Attrs{"date": w.PublicationDate}
			}
			g.AddEdge(w.ID, r, attrs)
		}
	}

	return g
}
