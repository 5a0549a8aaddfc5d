package graph

import (
	"sort"

	"github.com/matsen/citegraph/internal/work"
)

// Attribute names written by BuildAuthors.
const (
	AttrWorks       = "works"
	AttrNumerator   = "numerator"
	AttrDenominator = "denominator"
	AttrWeight      = "weight"
)

// AuthorsOption configures BuildAuthors.
type AuthorsOption func(*authorsConfig)

type authorsConfig struct {
	interleaved bool
}

// WithInterleavedCounts bumps each author's works counter as soon as that author
// has been processed, instead of after all authors of the work. Co-authors
// processed later in the same work then see the bumped counter. This matches
// graphs produced by earlier versions of the tool.
func WithInterleavedCounts() AuthorsOption {
	return func(c *authorsConfig) {
		c.interleaved = true
	}
}

// tally accumulates the weight terms of one author → author edge.
type tally struct {
	numerator   int
	denominator int
}

// BuildAuthors builds a graph with one node per author.
//
// Works are processed in ascending publication date (ties keep input order). For
// each author a of a work, every author b receives an opportunity count on edge
// a → b equal to the number of works b had published before; every author of a
// work cited by the current work receives a realized citation on a → b. Each
// author's counter is bumped once all authors of the work have been processed.
// The edge weight is numerator / denominator * 100, or 0 when the denominator is 0.
func BuildAuthors(works []work.Work, f Format, opts ...AuthorsOption) *Graph {
	var cfg authorsConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	g := New()
	addAuthorNodes(g, works, f)

	ordered, byID := chronological(works)

	n := g.NodeCount()
	counts := make([]int, n)
	rows := make([][]tally, n) // rows[a][b] is the tally for a → b; nil until a publishes

	for _, w := range ordered {
		authors := authorIndices(g, w)

		for _, a := range authors {
			if rows[a] == nil {
				rows[a] = make([]tally, n)
			}
			row := rows[a]

			for b := range row {
				row[b].denominator += counts[b]
			}

			for _, r := range w.ReferencedWorks {
				cited, ok := byID[r]
				if !ok {
					continue
				}
				for _, b := range authorIndices(g, cited) {
					row[b].numerator++
				}
			}

			if cfg.interleaved {
				counts[a]++
			}
		}

		if !cfg.interleaved {
			for _, a := range authors {
				counts[a]++
			}
		}
	}

	for a, row := range rows {
		g.nodes[a].Attrs[AttrWorks] = counts[a]
		for b, t := range row {
			g.addEdgeAt(a, b, Attrs{
				AttrNumerator:   t.numerator,
				AttrDenominator: t.denominator,
				AttrWeight:      weight(t),
			})
		}
	}

	return g
}

// addAuthorNodes adds one node per distinct author id. The first occurrence fixes
// the node position; the last occurrence supplies the metadata.
func addAuthorNodes(g *Graph, works []work.Work, f Format) {
	var order []string
	latest := make(map[string]map[string]any)
	for _, w := range works {
		for _, a := range w.Authorships {
			if a.Author.ID == "" {
				continue
			}
			if _, seen := latest[a.Author.ID]; !seen {
				order = append(order, a.Author.ID)
			}
			latest[a.Author.ID] = a.Author.Raw
		}
	}

	for _, id := range order {
		attrs := cleanAttrs(latest[id], f)
		if attrs == nil {
			attrs = Attrs{}
		}
		attrs[AttrWorks] = 0
		g.AddNode(id, attrs)
	}
}

// chronological de-duplicates works by id (the last record wins, the first keeps
// its position) and sorts them by publication date, keeping input order on ties.
func chronological(works []work.Work) ([]work.Work, map[string]work.Work) {
	unique := make([]work.Work, 0, len(works))
	pos := make(map[string]int, len(works))
	for _, w := range works {
		if w.ID == "" {
			unique = append(unique, w)
			continue
		}
		if i, ok := pos[w.ID]; ok {
			unique[i] = w
			continue
		}
		pos[w.ID] = len(unique)
		unique = append(unique, w)
	}

	byID := make(map[string]work.Work, len(pos))
	for id, i := range pos {
		byID[id] = unique[i]
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].SortKey() < unique[j].SortKey()
	})
	return unique, byID
}

func authorIndices(g *Graph, w work.Work) []int {
	ids := w.AuthorIDs()
	idx := make([]int, 0, len(ids))
	for _, id := range ids {
		idx = append(idx, g.nodeIndex[id])
	}
	return idx
}

func weight(t tally) float64 {
	if t.denominator == 0 {
		return 0.0
	}
	return float64(t.numerator) / float64(t.denominator) * 100
}
