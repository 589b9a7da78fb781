package query

import "github.com/HerbHall/lankaportal/pkg/content"

// DefaultPageSize is the grid page size used by the content sections.
const DefaultPageSize = 6

// Page is one slice of a filtered sequence.
type Page[R content.Record] struct {
	Items      []R `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// Paginate slices seq into pages of pageSize and returns the 1-indexed page
// pageNumber. Pages outside 1..TotalPages, and non-positive page sizes, yield
// an empty Items slice rather than an error.
func Paginate[R content.Record](seq []R, pageSize, pageNumber int) Page[R] {
	p := Page[R]{
		Items:    []R{},
		Page:     pageNumber,
		PageSize: pageSize,
		Total:    len(seq),
	}
	if pageSize <= 0 {
		return p
	}

	p.TotalPages = (len(seq) + pageSize - 1) / pageSize
	if pageNumber < 1 || pageNumber > p.TotalPages {
		return p
	}

	start := (pageNumber - 1) * pageSize
	end := min(start+pageSize, len(seq))
	p.Items = append(p.Items, seq[start:end]...)
	return p
}
