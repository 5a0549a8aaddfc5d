package openalex

import (
	"math"
	"strings"
)

// MaxValuesPerFilter is how many values are OR-combined in one filter expression.
// OpenAlex accepts at most 50; one is left as margin.
const MaxValuesPerFilter = 49

// Entity names used as API paths.
const (
	EntityWorks   = "works"
	EntityAuthors = "authors"
)

// Query selects the records of one entity matching a single filter.
type Query struct {
	Entity string
	Filter string // filter name, e.g. "cites"
	Value  string // filter value; alternatives are separated by "|"
}

// filterParam renders the filter query parameter.
func (q Query) filterParam() string {
	return q.Filter + ":" + q.Value
}

func (q Query) String() string {
	return q.Entity + "?filter=" + q.filterParam()
}

// AuthorsByName searches authors by display name.
func AuthorsByName(name string) Query {
	return Query{Entity: EntityAuthors, Filter: "display_name.search", Value: name}
}

// WorksByAuthors selects the works of any of the authors in expr.
func WorksByAuthors(expr string) Query {
	return Query{Entity: EntityWorks, Filter: "author.id", Value: expr}
}

// WorksCiting selects the works that cite any of the works in expr.
func WorksCiting(expr string) Query {
	return Query{Entity: EntityWorks, Filter: "cites", Value: expr}
}

// WorksCitedBy selects the works cited by any of the works in expr.
func WorksCitedBy(expr string) Query {
	return Query{Entity: EntityWorks, Filter: "cited_by", Value: expr}
}

// ChunkValues joins values into OR expressions of at most size values each.
// A size below 1 uses MaxValuesPerFilter.
func ChunkValues(values []string, size int) []string {
	if size < 1 {
		size = MaxValuesPerFilter
	}
	exprs := make([]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		exprs = append(exprs, strings.Join(values[start:end], "|"))
	}
	return exprs
}

// pageCount is the number of pages needed for count results.
func pageCount(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(perPage)))
}
