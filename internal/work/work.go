// Package work defines the scholarly-work records consumed by the graph builders
// and the citation statistics.
//
// Records arrive as OpenAlex JSON objects. Only the fields the builders need are
// lifted into typed struct fields; the full decoded object is kept in Raw so any
// other metadata can still be attached to graph nodes.
package work

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Work is a scholarly publication record.
type Work struct {
	ID              string
	PublicationDate string // YYYY-MM-DD, may be empty
	PublicationYear int    // 0 if unknown
	ReferencedWorks []string
	Authorships     []Authorship

	// Raw is the complete decoded record.
	Raw map[string]any
}

// Authorship links a work to one of its authors.
type Authorship struct {
	Author Author
}

// Author is an author as embedded in an authorship entry.
type Author struct {
	ID          string
	DisplayName string
	Institution string // display name of the last known institution, if any

	// Raw is the decoded author object.
	Raw map[string]any
}

// SortKey returns the value works are ordered by chronologically. Works with only
// a year sort before dated works of the same year.
func (w Work) SortKey() string {
	if w.PublicationDate != "" {
		return w.PublicationDate
	}
	if w.PublicationYear != 0 {
		return strconv.Itoa(w.PublicationYear)
	}
	return ""
}

// AuthorIDs returns the identifiers of the work's authors in authorship order.
// Authorships without an author id are skipped.
func (w Work) AuthorIDs() []string {
	ids := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		if a.Author.ID != "" {
			ids = append(ids, a.Author.ID)
		}
	}
	return ids
}

// FromRecord lifts the typed fields out of a decoded record.
// Missing or mistyped fields are left at their zero value.
func FromRecord(raw map[string]any) Work {
	w := Work{
		ID:              stringField(raw, "id"),
		PublicationDate: stringField(raw, "publication_date"),
		PublicationYear: intField(raw, "publication_year"),
		Raw:             raw,
	}

	if refs, ok := raw["referenced_works"].([]any); ok {
		w.ReferencedWorks = make([]string, 0, len(refs))
		for _, r := range refs {
			if s, ok := r.(string); ok && s != "" {
				w.ReferencedWorks = append(w.ReferencedWorks, s)
			}
		}
	}

	if auths, ok := raw["authorships"].([]any); ok {
		w.Authorships = make([]Authorship, 0, len(auths))
		for _, a := range auths {
			entry, ok := a.(map[string]any)
			if !ok {
				continue
			}
			author, ok := entry["author"].(map[string]any)
			if !ok {
				continue
			}
			w.Authorships = append(w.Authorships, Authorship{Author: AuthorFromRecord(author)})
		}
	}

	return w
}

// AuthorFromRecord lifts the typed fields out of a decoded author object.
func AuthorFromRecord(raw map[string]any) Author {
	a := Author{
		ID:          stringField(raw, "id"),
		DisplayName: stringField(raw, "display_name"),
		Raw:         raw,
	}
	if inst, ok := raw["last_known_institution"].(map[string]any); ok {
		a.Institution = stringField(inst, "display_name")
	} else if insts, ok := raw["last_known_institutions"].([]any); ok && len(insts) > 0 {
		if inst, ok := insts[0].(map[string]any); ok {
			a.Institution = stringField(inst, "display_name")
		}
	}
	return a
}

// UniqueIDs returns the distinct non-empty work ids in lexical order.
func UniqueIDs(works []Work) []string {
	seen := make(map[string]bool, len(works))
	ids := make([]string, 0, len(works))
	for _, w := range works {
		if w.ID == "" || seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		ids = append(ids, w.ID)
	}
	sort.Strings(ids)
	return ids
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
