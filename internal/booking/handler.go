package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/catalog"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/server"
	"github.com/HerbHall/lankaportal/pkg/content"
)

const maxBodyBytes = 16 << 10

// CreateRequest starts a checkout for a catalog item.
type CreateRequest struct {
	Collection content.CollectionName `json:"collection"`
	ItemID     string                 `json:"item_id"`
}

// Handler serves the checkout wizard API.
type Handler struct {
	manager *Manager
	engine  *catalog.Engine
	logger  *zap.Logger
}

// NewHandler creates a checkout API handler.
func NewHandler(manager *Manager, engine *catalog.Engine, logger *zap.Logger) *Handler {
	return &Handler{manager: manager, engine: engine, logger: logger}
}

// Routes returns the booking routes relative to the module mount point.
func (h *Handler) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/checkouts", Handler: h.handleCreate},
		{Method: "GET", Path: "/checkouts/{id}", Handler: h.handleGet},
		{Method: "POST", Path: "/checkouts/{id}/details", Handler: h.handleDetails},
		{Method: "POST", Path: "/checkouts/{id}/payment", Handler: h.handlePayment},
		{Method: "POST", Path: "/checkouts/{id}/cancel", Handler: h.handleCancel},
	}
}

// handleCreate starts a checkout.
//
//	@Summary		Start a checkout
//	@Tags			booking
//	@Accept			json
//	@Produce		json
//	@Param			request body CreateRequest true "Catalog item to book"
//	@Success		201 {object} Checkout
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/booking/checkouts [post]
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Collection == "" {
		req.Collection = content.CollectionDestinations
	}
	rec, err := h.engine.Find(req.Collection, req.ItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownCollection) || errors.Is(err, catalog.ErrRecordNotFound) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("checkout item lookup failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	writeJSON(w, http.StatusCreated, h.manager.Create(req.Collection, rec))
}

// handleGet returns a checkout.
//
//	@Summary		Get a checkout
//	@Tags			booking
//	@Produce		json
//	@Param			id path string true "Checkout ID"
//	@Success		200 {object} Checkout
//	@Failure		404 {object} server.Problem
//	@Router			/booking/checkouts/{id} [get]
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.manager.Get(r.PathValue("id"))
	h.respond(w, r, http.StatusOK, c, err)
}

// handleDetails submits traveller details.
//
//	@Summary		Submit traveller details
//	@Tags			booking
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Checkout ID"
//	@Param			request body Details true "Traveller details"
//	@Success		200 {object} Checkout
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Failure		409 {object} server.Problem
//	@Router			/booking/checkouts/{id}/details [post]
func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	var d Details
	if !decode(w, r, &d) {
		return
	}
	c, err := h.manager.SubmitDetails(r.PathValue("id"), d)
	h.respond(w, r, http.StatusOK, c, err)
}

// handlePayment submits a test card and starts processing.
//
//	@Summary		Pay for a checkout
//	@Description	Starts processing and returns immediately. Cards ending in 0002 are declined.
//	@Tags			booking
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Checkout ID"
//	@Param			request body Card true "Card details"
//	@Success		202 {object} Checkout
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Failure		409 {object} server.Problem
//	@Router			/booking/checkouts/{id}/payment [post]
func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var card Card
	if !decode(w, r, &card) {
		return
	}
	c, err := h.manager.Pay(r.PathValue("id"), card)
	h.respond(w, r, http.StatusAccepted, c, err)
}

// handleCancel abandons a checkout.
//
//	@Summary		Cancel a checkout
//	@Tags			booking
//	@Produce		json
//	@Param			id path string true "Checkout ID"
//	@Success		200 {object} Checkout
//	@Failure		404 {object} server.Problem
//	@Failure		409 {object} server.Problem
//	@Router			/booking/checkouts/{id}/cancel [post]
func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	c, err := h.manager.Cancel(r.PathValue("id"))
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, c Checkout, err error) {
	var inputErr *InputError
	switch {
	case err == nil:
		writeJSON(w, status, c)
	case errors.Is(err, ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.As(err, &inputErr):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("checkout step failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "checkout failed")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
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
