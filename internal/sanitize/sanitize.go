// Package sanitize strips empty values from decoded JSON records so they can be
// stored as graph attributes.
//
// Records are the generic values produced by encoding/json: map[string]any,
// []any and scalars (string, json.Number, float64, bool, nil). Both cleaners return
// fresh values and never modify their input.
package sanitize

// ExcludedKey is dropped from every mapping when cleaning for GML. OpenAlex
// ships abstracts as an inverted index that dwarfs the rest of the record.
const ExcludedKey = "abstract_inverted_index"

// ForGML cleans a record for a format that can hold nested attributes.
//
// Keys whose cleaned value is nil are dropped, ExcludedKey is dropped, and a
// mapping or sequence that ends up empty collapses to nil so that its parent drops
// it too. Scalars are returned unchanged.
func ForGML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			if k == ExcludedKey {
				continue
			}
			if c := ForGML(child); c != nil {
				out[k] = c
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, child := range x {
			if c := ForGML(child); c != nil {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return v
	}
}

// ForGraphML cleans a record for a format that only holds scalar attributes.
//
// A top-level mapping keeps its scalar values with nil values removed; nested
// mappings and sequences are dropped. The result for a mapping is always a
// (possibly empty) mapping. A top-level sequence has no representation and yields
// nil; a scalar is returned unchanged.
func ForGraphML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			if c := flatScalar(child); c != nil {
				out[k] = c
			}
		}
		return out
	case []any:
		return nil
	default:
		return v
	}
}

func flatScalar(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		return nil
	default:
		return v
	}
}
