package query

import (
	"iter"
	"slices"
	"unicode/utf8"

	"github.com/HerbHall/lankaportal/pkg/content"
)

// Suggestion limits.
const (
	DefaultSuggestLimit = 5
	MinSuggestRunes     = 2
	DefaultRelatedLimit = 3
)

// Suggestions yields at most limit records whose name matches partial, in
// store order. Nothing is yielded for fewer than MinSuggestRunes characters.
// The sequence is computed lazily and should be ranged over once.
func Suggestions[R content.Record](records []R, partial string, limit int) iter.Seq[R] {
	return func(yield func(R) bool) {
		if limit <= 0 || utf8.RuneCountInString(partial) < MinSuggestRunes {
			return
		}
		n := 0
		for i := range records {
			if !MatchText(records[i].RecordName(), partial) {
				continue
			}
			if !yield(records[i]) {
				return
			}
			n++
			if n == limit {
				return
			}
		}
	}
}

// Suggest collects Suggestions into a slice. It never returns nil.
func Suggest[R content.Record](records []R, partial string, limit int) []R {
	out := slices.Collect(Suggestions(records, partial, limit))
	if out == nil {
		out = []R{}
	}
	return out
}

// Related returns up to limit records sharing self's category or location,
// excluding self, in store order.
func Related[R content.Record](records []R, self R, limit int) []R {
	out := make([]R, 0, limit)
	if limit <= 0 {
		return out
	}
	loc := self.RecordLocation()
	for i := range records {
		r := records[i]
		if r.RecordID() == self.RecordID() {
			continue
		}
		if r.RecordCategory() == self.RecordCategory() || (loc != "" && r.RecordLocation() == loc) {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Locations returns the distinct non-empty locations in store order.
func Locations[R content.Record](records []R) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range records {
		loc := records[i].RecordLocation()
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	return out
}
