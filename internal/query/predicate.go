// Package query is the catalog query engine: predicate building, filtering,
// category counts, pagination and autocomplete suggestions over immutable
// record slices.
//
// Every function here is pure. Inputs are never mutated, output order always
// follows the input (store) order, and malformed input yields an empty
// result rather than an error.
package query

import "github.com/HerbHall/lankaportal/pkg/content"

// All is the sentinel that disables the category or location clause.
const All = "all"

// Spec is the user-facing filter selection.
type Spec struct {
	Category   content.Category `json:"category"`
	Location   string           `json:"location"`
	SearchText string           `json:"search_text"`
}

// Predicate decides whether a record is part of a result.
type Predicate[R content.Record] func(R) bool

// Build converts a Spec into the AND of its category, location and search
// clauses. An empty category or location is treated as All. Values that no
// record carries simply match nothing.
func Build[R content.Record](s Spec) Predicate[R] {
	category := categoryClause[R](s.Category)
	location := locationClause[R](s.Location)
	search := s.SearchText
	return func(r R) bool {
		return category(r) && location(r) && MatchText(r.RecordName(), search)
	}
}

func categoryClause[R content.Record](c content.Category) Predicate[R] {
	if isAll(string(c)) {
		return func(R) bool { return true }
	}
	return func(r R) bool { return r.RecordCategory() == c }
}

func locationClause[R content.Record](loc string) Predicate[R] {
	if isAll(loc) {
		return func(R) bool { return true }
	}
	return func(r R) bool { return r.RecordLocation() == loc }
}

func isAll(v string) bool {
	return v == "" || v == All
}
