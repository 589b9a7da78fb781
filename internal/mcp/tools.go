// Package mcp exposes the catalog to AI agents as Model Context Protocol
// tools over streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/HerbHall/lankaportal/internal/catalog"
	"github.com/HerbHall/lankaportal/internal/query"
	"github.com/HerbHall/lankaportal/pkg/content"
)

const maxToolPageSize = 50

// Hit is the compact record shape returned to agents.
type Hit struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	NameSI   string           `json:"name_si,omitempty"`
	Category content.Category `json:"category"`
	Location string           `json:"location,omitempty"`
}

// SearchInput is the catalog_search argument object.
type SearchInput struct {
	Collection string `json:"collection" jsonschema:"collection name: destinations, foods, festivals, hiking, map, phrases or music"`
	Query      string `json:"query,omitempty" jsonschema:"search text matched against English and Sinhala names"`
	Category   string `json:"category,omitempty" jsonschema:"category filter, or all"`
	Location   string `json:"location,omitempty" jsonschema:"region filter, or all"`
	Page       int    `json:"page,omitempty" jsonschema:"1-indexed page, default 1"`
	PageSize   int    `json:"page_size,omitempty" jsonschema:"results per page, default 6, at most 50"`
}

// SearchOutput is one page of catalog_search results.
type SearchOutput struct {
	Collection string                   `json:"collection"`
	Page       int                      `json:"page"`
	TotalPages int                      `json:"total_pages"`
	Total      int                      `json:"total"`
	Counts     map[content.Category]int `json:"counts"`
	Items      []Hit                    `json:"items"`
}

// SuggestInput is the catalog_suggest argument object.
type SuggestInput struct {
	Collection string `json:"collection" jsonschema:"collection name"`
	Query      string `json:"query" jsonschema:"partial text, at least 2 characters"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum suggestions, default 5"`
}

// SuggestOutput lists autocomplete matches.
type SuggestOutput struct {
	Suggestions []Hit `json:"suggestions"`
}

// ItemInput is the catalog_item argument object.
type ItemInput struct {
	Collection string `json:"collection" jsonschema:"collection name"`
	ID         string `json:"id" jsonschema:"record id"`
}

// ItemOutput carries one full record and compact related records.
type ItemOutput struct {
	Item    content.Record `json:"item"`
	Related []Hit          `json:"related"`
}

// Tools implements the catalog tool handlers.
type Tools struct {
	engine *catalog.Engine
}

// NewTools creates tool handlers over engine.
func NewTools(engine *catalog.Engine) *Tools {
	return &Tools{engine: engine}
}

// Register adds every catalog tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "catalog_search",
		Description: "Search a Sri Lanka travel catalog collection with optional category, location and text filters. Results are paginated.",
	}, t.Search)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "catalog_suggest",
		Description: "Autocomplete record names in a catalog collection from partial English or Sinhala text.",
	}, t.Suggest)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "catalog_item",
		Description: "Fetch one catalog record with its related records.",
	}, t.Item)
}

// Search handles catalog_search.
func (t *Tools) Search(_ context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if in.PageSize < 0 || in.PageSize > maxToolPageSize {
		return nil, SearchOutput{}, fmt.Errorf("page_size must be between 1 and %d", maxToolPageSize)
	}
	if in.Page < 0 {
		return nil, SearchOutput{}, errors.New("page must be at least 1")
	}
	page := in.Page
	if page == 0 {
		page = 1
	}

	name := content.CollectionName(in.Collection)
	res, err := t.engine.Query(name, catalog.Request{
		Category: content.Category(in.Category),
		Location: in.Location,
		Search:   strings.TrimSpace(in.Query),
		Page:     page,
		PageSize: in.PageSize,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{
		Collection: string(name),
		Page:       res.Page,
		TotalPages: res.TotalPages,
		Total:      res.Total,
		Counts:     res.Counts,
		Items:      hits(res.Items),
	}, nil
}

// Suggest handles catalog_suggest.
func (t *Tools) Suggest(_ context.Context, _ *mcp.CallToolRequest, in SuggestInput) (*mcp.CallToolResult, SuggestOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = query.DefaultSuggestLimit
	}
	recs, err := t.engine.Suggest(content.CollectionName(in.Collection), strings.TrimSpace(in.Query), limit)
	if err != nil {
		return nil, SuggestOutput{}, err
	}
	return nil, SuggestOutput{Suggestions: hits(recs)}, nil
}

// Item handles catalog_item.
func (t *Tools) Item(_ context.Context, _ *mcp.CallToolRequest, in ItemInput) (*mcp.CallToolResult, ItemOutput, error) {
	rec, related, err := t.engine.Item(content.CollectionName(in.Collection), in.ID)
	if err != nil {
		return nil, ItemOutput{}, err
	}
	return nil, ItemOutput{Item: rec, Related: hits(related)}, nil
}

func hits(recs []content.Record) []Hit {
	out := make([]Hit, 0, len(recs))
	for _, r := range recs {
		name := r.RecordName()
		h := Hit{
			ID:       r.RecordID(),
			Name:     name.Get(content.LangEN),
			Category: r.RecordCategory(),
			Location: r.RecordLocation(),
		}
		if si := name.Get(content.LangSI); si != h.Name {
			h.NameSI = si
		}
		out = append(out, h)
	}
	return out
}
