package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/HerbHall/lankaportal/internal/metrics"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/query"
	"github.com/HerbHall/lankaportal/internal/server"
	"github.com/HerbHall/lankaportal/pkg/content"
	"go.uber.org/zap"
)

const maxSuggestLimit = 20

// SuggestResponse is the response for GET /collections/{collection}/suggest.
type SuggestResponse struct {
	Query       string           `json:"query"`
	Suggestions []content.Record `json:"suggestions"`
}

// ItemResponse is the response for GET /collections/{collection}/items/{id}.
type ItemResponse struct {
	Item    content.Record   `json:"item"`
	Related []content.Record `json:"related"`
}

// Handler serves the catalog query API.
type Handler struct {
	engine      *Engine
	logger      *zap.Logger
	metrics     *metrics.Metrics
	pageSize    int
	maxPageSize int
}

// NewHandler creates a catalog API handler. Non-positive sizes fall back to
// query.DefaultPageSize and 100.
func NewHandler(engine *Engine, logger *zap.Logger, m *metrics.Metrics, pageSize, maxPageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &Handler{
		engine:      engine,
		logger:      logger,
		metrics:     m,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

// Routes returns the catalog routes relative to the module mount point.
func (h *Handler) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/collections", Handler: h.handleCollections},
		{Method: "GET", Path: "/collections/{collection}", Handler: h.handleQuery},
		{Method: "GET", Path: "/collections/{collection}/suggest", Handler: h.handleSuggest},
		{Method: "GET", Path: "/collections/{collection}/items/{id}", Handler: h.handleItem},
		{Method: "GET", Path: "/collections/{collection}/locations", Handler: h.handleLocations},
		{Method: "GET", Path: "/collections/{collection}/export", Handler: h.handleExport},
	}
}

// handleCollections lists the collections and their category sets.
//
//	@Summary		List collections
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {array} content.CollectionInfo
//	@Router			/catalog/collections [get]
func (h *Handler) handleCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Collections())
}

// handleQuery returns one page of a filtered collection.
//
//	@Summary		Query a collection
//	@Description	Filters by category, location and search text, then paginates. Counts per category ignore the category filter.
//	@Tags			catalog
//	@Produce		json
//	@Param			collection path string true "Collection name (destinations, foods, festivals, hiking, map, phrases, music)"
//	@Param			category query string false "Category or 'all'" default(all)
//	@Param			location query string false "Region or 'all'" default(all)
//	@Param			q query string false "Search text, matched against EN and SI names"
//	@Param			page query int false "1-indexed page; past the last page returns empty items" default(1)
//	@Param			page_size query int false "Items per page" default(6)
//	@Success		200 {object} Result
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/catalog/collections/{collection} [get]
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	name := content.CollectionName(r.PathValue("collection"))
	res, err := h.engine.Query(name, req)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	h.metrics.Query(string(name), "list")
	writeJSON(w, http.StatusOK, res)
}

// handleSuggest returns autocomplete matches for a partial search.
//
//	@Summary		Autocomplete suggestions
//	@Tags			catalog
//	@Produce		json
//	@Param			collection path string true "Collection name"
//	@Param			q query string true "Partial text, at least 2 characters"
//	@Param			limit query int false "Maximum suggestions" default(5)
//	@Success		200 {object} SuggestResponse
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/catalog/collections/{collection}/suggest [get]
func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", query.DefaultSuggestLimit, 1, maxSuggestLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	name := content.CollectionName(r.PathValue("collection"))
	partial := strings.TrimSpace(r.URL.Query().Get("q"))
	recs, err := h.engine.Suggest(name, partial, limit)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	h.metrics.Query(string(name), "suggest")
	writeJSON(w, http.StatusOK, SuggestResponse{Query: partial, Suggestions: recs})
}

// handleItem returns one record and its related records.
//
//	@Summary		Get a record
//	@Tags			catalog
//	@Produce		json
//	@Param			collection path string true "Collection name"
//	@Param			id path string true "Record id"
//	@Success		200 {object} ItemResponse
//	@Failure		404 {object} server.Problem
//	@Router			/catalog/collections/{collection}/items/{id} [get]
func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	name := content.CollectionName(r.PathValue("collection"))
	rec, related, err := h.engine.Item(name, r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	h.metrics.Query(string(name), "item")
	writeJSON(w, http.StatusOK, ItemResponse{Item: rec, Related: related})
}

// handleLocations returns the distinct regions of a collection.
//
//	@Summary		List locations
//	@Tags			catalog
//	@Produce		json
//	@Param			collection path string true "Collection name"
//	@Success		200 {array} string
//	@Failure		404 {object} server.Problem
//	@Router			/catalog/collections/{collection}/locations [get]
func (h *Handler) handleLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.engine.Locations(content.CollectionName(r.PathValue("collection")))
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locs)
}

// handleExport streams every record matching the filters as an xlsx workbook.
//
//	@Summary		Export a filtered collection
//	@Tags			catalog
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			collection path string true "Collection name"
//	@Param			category query string false "Category or 'all'"
//	@Param			location query string false "Region or 'all'"
//	@Param			q query string false "Search text"
//	@Success		200 {file} binary
//	@Failure		404 {object} server.Problem
//	@Router			/catalog/collections/{collection}/export [get]
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	name := content.CollectionName(r.PathValue("collection"))
	q := r.URL.Query()
	recs, err := h.engine.Matching(name, Request{
		Category: content.Category(q.Get("category")),
		Location: q.Get("location"),
		Search:   strings.TrimSpace(q.Get("q")),
	})
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, name))
	if err := WriteWorkbook(w, name, recs); err != nil {
		// Headers are already sent; log only.
		h.logger.Error("export failed", zap.String("collection", string(name)), zap.Error(err))
		return
	}
	h.metrics.Query(string(name), "export")
}

func (h *Handler) parseRequest(r *http.Request) (Request, error) {
	q := r.URL.Query()
	page, err := intParam(r, "page", 1, 1, 0)
	if err != nil {
		return Request{}, err
	}
	size, err := intParam(r, "page_size", h.pageSize, 1, h.maxPageSize)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Category: content.Category(q.Get("category")),
		Location: q.Get("location"),
		Search:   strings.TrimSpace(q.Get("q")),
		Page:     page,
		PageSize: size,
	}, nil
}

func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnknownCollection), errors.Is(err, ErrRecordNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("catalog query failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load catalog")
	}
}

// intParam parses an optional integer query parameter. A max of 0 means
// unbounded.
func intParam(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi > 0 && v > hi) {
		if hi > 0 {
			return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
		}
		return 0, fmt.Errorf("%s must be an integer >= %d", key, lo)
	}
	return v, nil
}

// -- helpers --

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	server.Error(w, r, status, detail)
}
