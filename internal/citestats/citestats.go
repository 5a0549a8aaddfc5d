// Package citestats counts the citations received by a set of works per year,
// optionally broken down by the cited or the citing work.
package citestats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/citegraph/internal/work"
)

// Series names that are not work ids.
const (
	OtherSeries = "Other"
	TotalSeries = "Citations"
)

// DefaultColors is the default number of series when coloring.
const DefaultColors = 10

// Color selects how citations are split into series.
type Color int

const (
	// ColorNone puts every citation in a single series.
	ColorNone Color = iota
	// ColorWorks splits citations by the cited work.
	ColorWorks
	// ColorCites splits citations by the citing work.
	ColorCites
)

// ValidColors lists the accepted color names.
var ValidColors = []string{"works", "cites"}

// ParseColor parses a color name. The empty string and "none" mean no coloring.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ColorNone, nil
	case "works":
		return ColorWorks, nil
	case "cites":
		return ColorCites, nil
	}
	return ColorNone, fmt.Errorf("invalid color: %s (valid: %v)", s, ValidColors)
}

func (c Color) String() string {
	switch c {
	case ColorWorks:
		return "works"
	case ColorCites:
		return "cites"
	}
	return "none"
}

// Options configures Count.
type Options struct {
	// PerYearOfCitation bins citations by the citing work's year instead of the
	// cited work's year.
	PerYearOfCitation bool
	Color             Color
	// NColors is the number of series when coloring; the NColors-1 most
	// prominent works get their own series and the rest share OtherSeries.
	NColors int
}

// Table holds citation counts per year and series.
type Table struct {
	Years  []int    // ascending
	Series []string // ranked works, then OtherSeries; or just TotalSeries
	counts map[int]map[string]int
}

// Count returns the number of citations in year for series.
func (t *Table) Count(year int, series string) int {
	return t.counts[year][series]
}

// YearTotal returns the number of citations in year across all series.
func (t *Table) YearTotal(year int) int {
	total := 0
	for _, n := range t.counts[year] {
		total += n
	}
	return total
}

// Total returns the number of citations counted.
func (t *Table) Total() int {
	total := 0
	for _, y := range t.Years {
		total += t.YearTotal(y)
	}
	return total
}

// MaxYearTotal returns the largest per-year total.
func (t *Table) MaxYearTotal() int {
	m := 0
	for _, y := range t.Years {
		if n := t.YearTotal(y); n > m {
			m = n
		}
	}
	return m
}

// citer is a citing work reduced to its references into the studied set.
type citer struct {
	id   string
	year int
	refs []string
}

// Count tallies the citations from cites to works.
//
// Works and citing works are de-duplicated by id (the last record wins). Each
// reference from a citing work to a studied work counts once, in the year of the
// cited work or, with PerYearOfCitation, of the citing work. References outside
// works are ignored.
func Count(works, cites []work.Work, opts Options) *Table {
	years := make(map[string]int, len(works))
	for _, w := range works {
		years[w.ID] = w.PublicationYear
	}

	citers := dedupeCiters(cites, years)

	t := &Table{counts: make(map[int]map[string]int)}
	var top map[string]bool
	if opts.Color == ColorNone {
		t.Series = []string{TotalSeries}
	} else {
		ranked := rank(citers, opts.Color, opts.NColors-1)
		top = make(map[string]bool, len(ranked))
		for _, id := range ranked {
			top[id] = true
		}
		t.Series = append(ranked, OtherSeries)
	}

	for _, c := range citers {
		for _, r := range c.refs {
			y := years[r]
			if opts.PerYearOfCitation {
				y = c.year
			}
			row, ok := t.counts[y]
			if !ok {
				row = make(map[string]int, len(t.Series))
				for _, s := range t.Series {
					row[s] = 0
				}
				t.counts[y] = row
				t.Years = append(t.Years, y)
			}

			series := TotalSeries
			if opts.Color != ColorNone {
				key := r
				if opts.Color == ColorCites {
					key = c.id
				}
				series = OtherSeries
				if top[key] {
					series = key
				}
			}
			row[series]++
		}
	}

	sort.Ints(t.Years)
	return t
}

// dedupeCiters keeps one entry per citing id, at the position of its first record
// with the contents of its last, and drops references outside studied.
func dedupeCiters(cites []work.Work, studied map[string]int) []citer {
	var out []citer
	pos := make(map[string]int, len(cites))
	for _, w := range cites {
		c := citer{id: w.ID, year: w.PublicationYear}
		for _, r := range w.ReferencedWorks {
			if _, ok := studied[r]; ok {
				c.refs = append(c.refs, r)
			}
		}
		if i, ok := pos[w.ID]; ok {
			out[i] = c
			continue
		}
		pos[w.ID] = len(out)
		out = append(out, c)
	}
	return out
}

// rank returns up to n ids ordered by decreasing weight: references made per
// citing work for ColorCites, citations received per studied work for ColorWorks.
// Ties keep first-appearance order.
func rank(citers []citer, color Color, n int) []string {
	var order []string
	weight := make(map[string]int)
	add := func(id string, w int) {
		if _, seen := weight[id]; !seen {
			order = append(order, id)
		}
		weight[id] += w
	}

	for _, c := range citers {
		if color == ColorCites {
			add(c.id, len(c.refs))
			continue
		}
		for _, r := range c.refs {
			add(r, 1)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return weight[order[i]] > weight[order[j]]
	})
	if n < 0 {
		n = 0
	}
	if len(order) > n {
		order = order[:n]
	}
	return order
}
