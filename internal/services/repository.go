// Package services holds the repositories that persist LankaPortal data in
// the shared SQLite store. The static travel content is not stored here; it
// is embedded and served from memory by pkg/content.
package services

import (
	"errors"
	"fmt"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidSort = errors.New("invalid sort column")
)

// ListOptions pages and orders a list query. SortBy names a key of the
// repository's sort allow-list; the empty key selects its default column.
type ListOptions struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string // "asc", anything else sorts descending
}

// ListResult is one page of rows plus the unpaginated total.
type ListResult[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// resolve clamps paging and maps SortBy through columns, returning the
// SQL column and direction that are safe to interpolate.
func (o ListOptions) resolve(columns map[string]string) (ListOptions, string, string, error) {
	col, ok := columns[o.SortBy]
	if !ok {
		return o, "", "", fmt.Errorf("%w: %q", ErrInvalidSort, o.SortBy)
	}
	o.Limit = min(max(o.Limit, 0), maxPageLimit)
	if o.Limit == 0 {
		o.Limit = defaultPageLimit
	}
	o.Offset = max(o.Offset, 0)
	dir := "DESC"
	if o.SortOrder == "asc" {
		dir = "ASC"
	}
	return o, col, dir, nil
}
