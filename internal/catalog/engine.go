// Package catalog binds the query engine to the embedded content library and
// serves it over HTTP: filtered and paginated listings, category counts,
// autocomplete, record detail with related records, and spreadsheet export.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/HerbHall/lankaportal/internal/query"
	"github.com/HerbHall/lankaportal/pkg/content"
)

// Errors returned by Engine lookups.
var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrRecordNotFound    = errors.New("record not found")
)

// Request is one listing query. Empty Category and Location mean all.
// Page is 1-indexed.
type Request struct {
	Category content.Category
	Location string
	Search   string
	Page     int
	PageSize int
}

// Result is one page of a listing plus the per-category counts shown on
// the filter tabs.
type Result struct {
	Collection content.CollectionName   `json:"collection"`
	Items      []content.Record         `json:"items"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
	Total      int                      `json:"total"`
	Counts     map[content.Category]int `json:"counts"`
	Query      query.State              `json:"query"`
}

// Engine answers catalog queries against a content Library.
type Engine struct {
	lib *content.Library
}

// NewEngine creates an engine over lib.
func NewEngine(lib *content.Library) *Engine {
	return &Engine{lib: lib}
}

// Collections returns every collection with its category set.
func (e *Engine) Collections() []content.CollectionInfo {
	return slices.Clone(content.Collections)
}

// records resolves a collection by name. Unknown names wrap ErrUnknownCollection.
func (e *Engine) records(name content.CollectionName) (content.CollectionInfo, []content.Record, error) {
	info, ok := content.LookupCollection(name)
	if !ok {
		return content.CollectionInfo{}, nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	recs, err := e.lib.Records(name)
	if err != nil {
		return info, nil, err
	}
	return info, recs, nil
}

// Query filters, counts and paginates a collection. A page outside the
// result yields empty Items, not an error.
func (e *Engine) Query(name content.CollectionName, req Request) (*Result, error) {
	info, recs, err := e.records(name)
	if err != nil {
		return nil, err
	}

	st := query.NewState(req.PageSize).
		WithCategory(req.Category).
		WithLocation(req.Location).
		WithSearch(req.Search)
	st.Page = req.Page

	page := query.Run(recs, st)

	return &Result{
		Collection: name,
		Items:      page.Items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Counts:     query.CountByCategory(recs, info.Categories, st.Location, st.SearchText),
		Query:      st,
	}, nil
}

// Matching returns every record of a collection that satisfies req's
// filters, ignoring pagination.
func (e *Engine) Matching(name content.CollectionName, req Request) ([]content.Record, error) {
	_, recs, err := e.records(name)
	if err != nil {
		return nil, err
	}
	spec := query.Spec{Category: req.Category, Location: req.Location, SearchText: req.Search}
	return query.Execute(recs, query.Build[content.Record](spec)), nil
}

// Suggest returns up to limit autocomplete matches for partial.
// A non-positive limit uses query.DefaultSuggestLimit.
func (e *Engine) Suggest(name content.CollectionName, partial string, limit int) ([]content.Record, error) {
	_, recs, err := e.records(name)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = query.DefaultSuggestLimit
	}
	return query.Suggest(recs, partial, limit), nil
}

// Find returns a record by id.
func (e *Engine) Find(name content.CollectionName, id string) (content.Record, error) {
	_, recs, err := e.records(name)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, name, id)
}

// Item returns a record and up to query.DefaultRelatedLimit related records.
func (e *Engine) Item(name content.CollectionName, id string) (content.Record, []content.Record, error) {
	rec, err := e.Find(name, id)
	if err != nil {
		return nil, nil, err
	}
	_, recs, _ := e.records(name)
	return rec, query.Related(recs, rec, query.DefaultRelatedLimit), nil
}

// Locations returns the distinct regions of a collection in store order.
// Collections without locations yield an empty slice.
func (e *Engine) Locations(name content.CollectionName) ([]string, error) {
	_, recs, err := e.records(name)
	if err != nil {
		return nil, err
	}
	return query.Locations(recs), nil
}

// Subset returns the records of a collection whose ids are in ids, in store
// order. Ids that do not exist are ignored.
func (e *Engine) Subset(name content.CollectionName, ids []string) ([]content.Record, error) {
	_, recs, err := e.records(name)
	if err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return query.Execute(recs, func(r content.Record) bool {
		_, ok := want[r.RecordID()]
		return ok
	}), nil
}
