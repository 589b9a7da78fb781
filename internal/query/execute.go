package query

import "github.com/HerbHall/lankaportal/pkg/content"

// Execute returns the records matching pred in their original order.
// The result never aliases records.
func Execute[R content.Record](records []R, pred Predicate[R]) []R {
	out := make([]R, 0, len(records))
	for i := range records {
		if pred(records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// CountByCategory returns, for each category in categories plus All, how many
// records match the location and search filters. The active category filter is
// deliberately not applied, so every tab can show what it would yield.
func CountByCategory[R content.Record](records []R, categories []content.Category, location, searchText string) map[content.Category]int {
	counts := make(map[content.Category]int, len(categories)+1)
	counts[content.CategoryAll] = 0
	for _, c := range categories {
		counts[c] = 0
	}

	matched := Execute(records, Build[R](Spec{Location: location, SearchText: searchText}))
	counts[content.CategoryAll] = len(matched)
	for i := range matched {
		c := matched[i].RecordCategory()
		if _, tracked := counts[c]; tracked {
			counts[c]++
		}
	}
	return counts
}
