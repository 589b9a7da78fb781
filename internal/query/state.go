package query

import "github.com/HerbHall/lankaportal/pkg/content"

// State is the serializable query state a view holds between interactions.
type State struct {
	Spec
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewState returns the initial state: every filter at All, first page.
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{
		Spec:     Spec{Category: content.CategoryAll, Location: All},
		Page:     1,
		PageSize: pageSize,
	}
}

// WithCategory selects a category tab. A change resets the page to 1.
func (s State) WithCategory(c content.Category) State {
	if c == "" {
		c = content.CategoryAll
	}
	if c != s.Category {
		s.Category = c
		s.Page = 1
	}
	return s
}

// WithLocation selects a region. A change resets the page to 1.
func (s State) WithLocation(loc string) State {
	if loc == "" {
		loc = All
	}
	if loc != s.Location {
		s.Location = loc
		s.Page = 1
	}
	return s
}

// WithSearch updates the search text. A change resets the page to 1.
func (s State) WithSearch(text string) State {
	if text != s.SearchText {
		s.SearchText = text
		s.Page = 1
	}
	return s
}

// WithPage moves to page n. Values below 1 are clamped to 1.
func (s State) WithPage(n int) State {
	s.Page = max(n, 1)
	return s
}

// Run executes the state against records and returns the visible page.
// A page past the end yields empty Items with the real TotalPages; the
// With* methods are what bring a view back to page 1.
func Run[R content.Record](records []R, s State) Page[R] {
	return Paginate(Execute(records, Build[R](s.Spec)), s.PageSize, s.Page)
}
