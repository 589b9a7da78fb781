package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/auth"
	"github.com/HerbHall/lankaportal/internal/catalog"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/query"
	"github.com/HerbHall/lankaportal/internal/server"
	"github.com/HerbHall/lankaportal/pkg/content"
)

// SessionResolver identifies the visitor behind a request.
type SessionResolver interface {
	Resolve(r *http.Request) (*auth.Session, error)
}

// View is the response of GET /favorites/{collection}: the favorited
// records run through the catalog query engine.
type View struct {
	Collection content.CollectionName   `json:"collection"`
	IDs        []string                 `json:"ids"`
	Items      []content.Record         `json:"items"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
	Total      int                      `json:"total"`
	Counts     map[content.Category]int `json:"counts"`
	Query      query.State              `json:"query"`
}

// Handler serves the favorites API.
type Handler struct {
	store    *Store
	engine   *catalog.Engine
	sessions SessionResolver
	logger   *zap.Logger
}

// NewHandler creates a favorites handler.
func NewHandler(store *Store, engine *catalog.Engine, sessions SessionResolver, logger *zap.Logger) *Handler {
	return &Handler{store: store, engine: engine, sessions: sessions, logger: logger}
}

// Routes returns the favorites routes relative to the module mount point.
func (h *Handler) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/{collection}", Handler: h.handleList},
		{Method: "PUT", Path: "/{collection}/{id}", Handler: h.handleAdd},
		{Method: "DELETE", Path: "/{collection}/{id}", Handler: h.handleRemove},
	}
}

// handleAdd favorites a record.
//
//	@Summary		Add a favorite
//	@Tags			favorites
//	@Security		BearerAuth
//	@Param			collection path string true "Collection name"
//	@Param			id path string true "Record id"
//	@Success		204
//	@Failure		401 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/favorites/{collection}/{id} [put]
func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	name := content.CollectionName(r.PathValue("collection"))
	id := r.PathValue("id")
	if _, err := h.engine.Find(name, id); err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	if h.store.Add(user, name, id) {
		h.logger.Debug("favorite added", zap.String("collection", string(name)), zap.String("id", id))
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRemove unfavorites a record. Removing a record that is not a
// favorite succeeds.
//
//	@Summary		Remove a favorite
//	@Tags			favorites
//	@Security		BearerAuth
//	@Param			collection path string true "Collection name"
//	@Param			id path string true "Record id"
//	@Success		204
//	@Failure		401 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/favorites/{collection}/{id} [delete]
func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	name := content.CollectionName(r.PathValue("collection"))
	if _, known := content.LookupCollection(name); !known {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("unknown collection %q", name))
		return
	}
	h.store.Remove(user, name, r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleList returns the caller's favorites filtered and paginated like a
// catalog query. A page beyond the end returns empty items.
//
//	@Summary		List favorites
//	@Tags			favorites
//	@Security		BearerAuth
//	@Produce		json
//	@Param			collection path string true "Collection name"
//	@Param			category query string false "Category or 'all'"
//	@Param			location query string false "Region or 'all'"
//	@Param			q query string false "Search text"
//	@Param			page query int false "1-indexed page; past the last page returns empty items" default(1)
//	@Param			page_size query int false "Items per page" default(6)
//	@Success		200 {object} View
//	@Failure		400 {object} server.Problem
//	@Failure		401 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/favorites/{collection} [get]
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	name := content.CollectionName(r.PathValue("collection"))
	info, known := content.LookupCollection(name)
	if !known {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("unknown collection %q", name))
		return
	}

	page, err := intParam(r, "page", 1, 1, 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	size, err := intParam(r, "page_size", query.DefaultPageSize, 1, 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ids := h.store.IDs(user, name)
	subset, err := h.engine.Subset(name, ids)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	q := r.URL.Query()
	st := query.NewState(size).
		WithCategory(content.Category(q.Get("category"))).
		WithLocation(q.Get("location")).
		WithSearch(strings.TrimSpace(q.Get("q"))).
		WithPage(page)
	res := query.Run(subset, st)

	writeJSON(w, http.StatusOK, View{
		Collection: name,
		IDs:        ids,
		Items:      res.Items,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
		Total:      res.Total,
		Counts:     query.CountByCategory(subset, info.Categories, st.Location, st.SearchText),
		Query:      st,
	})
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (string, bool) {
	s, err := h.sessions.Resolve(r)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeError(w, r, http.StatusUnauthorized, "sign in to keep favorites")
		} else {
			h.logger.Error("session lookup failed", zap.Error(err))
			writeError(w, r, http.StatusBadGateway, "session lookup is unavailable")
		}
		return "", false
	}
	return s.User.ID, true
}

func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownCollection), errors.Is(err, catalog.ErrRecordNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("favorites lookup failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load catalog")
	}
}

func intParam(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi > 0 && v > hi) {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	server.Error(w, r, status, detail)
}
