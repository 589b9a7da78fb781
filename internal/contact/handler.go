// Package contact stores contact form submissions and relays them to a
// third-party form endpoint.
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/metrics"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/ratelimit"
	"github.com/HerbHall/lankaportal/internal/server"
	"github.com/HerbHall/lankaportal/internal/services"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

// TopicSubmitted is published with a *services.ContactMessage payload once
// delivery has been attempted.
const TopicSubmitted = "contact.submitted"

const (
	maxBodyBytes = 64 << 10

	deliveryFailedDetail = "Your message was saved but could not be delivered right now. Please try again later or email us directly."
)

// Handler serves the contact API.
type Handler struct {
	repo    services.ContactRepository
	relay   *Relay
	limiter *ratelimit.Keyed
	bus     pkgplugin.EventBus
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// Routes returns the contact routes relative to the module mount point.
func (h *Handler) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "", Handler: h.handleSubmit},
		{Method: "GET", Path: "/messages", Handler: h.handleList},
		{Method: "GET", Path: "/messages/{id}", Handler: h.handleGet},
	}
}

// handleSubmit validates, stores and relays a contact message.
//
//	@Summary		Submit the contact form
//	@Tags			contact
//	@Accept			json
//	@Produce		json
//	@Param			request body Submission true "Contact form"
//	@Success		201 {object} services.ContactMessage
//	@Failure		400 {object} server.Problem
//	@Failure		429 {object} server.Problem
//	@Failure		502 {object} server.Problem
//	@Router			/contact [post]
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	addr := remoteHost(r)
	if h.limiter != nil && !h.limiter.Allow(addr) {
		writeError(w, r, http.StatusTooManyRequests, "too many messages, please wait a minute and try again")
		return
	}

	var sub Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sub); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	sub = sub.Normalize()
	if err := sub.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	msg := &services.ContactMessage{
		Name:       sub.Name,
		Email:      sub.Email,
		Subject:    sub.Subject,
		Message:    sub.Message,
		Status:     services.ContactStored,
		RemoteAddr: addr,
	}
	if err := h.repo.Create(r.Context(), msg); err != nil {
		h.logger.Error("failed to store contact message", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to save message")
		return
	}

	if h.relay != nil {
		h.deliver(r.Context(), msg)
	}
	h.metrics.Contact(string(msg.Status))
	if h.bus != nil {
		h.bus.PublishAsync(context.WithoutCancel(r.Context()), pkgplugin.Event{
			Topic:     TopicSubmitted,
			Source:    "contact",
			Timestamp: msg.UpdatedAt,
			Payload:   msg,
		})
	}

	if msg.Status == services.ContactFailed {
		writeError(w, r, http.StatusBadGateway, deliveryFailedDetail)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// deliver forwards msg and records the outcome on msg and in the store.
func (h *Handler) deliver(ctx context.Context, msg *services.ContactMessage) {
	fctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	msg.Status, msg.Error = services.ContactSent, ""
	if err := h.relay.Forward(fctx, msg); err != nil {
		h.logger.Warn("contact relay failed", zap.String("id", msg.ID), zap.Error(err))
		msg.Status, msg.Error = services.ContactFailed, err.Error()
	}

	// The outcome is recorded even if the caller went away.
	if err := h.repo.UpdateStatus(context.WithoutCancel(ctx), msg.ID, msg.Status, msg.Error); err != nil {
		h.logger.Error("failed to record contact status", zap.String("id", msg.ID), zap.Error(err))
	}
}

// handleList returns stored messages, newest first.
//
//	@Summary		List contact messages
//	@Tags			contact
//	@Produce		json
//	@Param			limit query int false "Page size" default(50)
//	@Param			offset query int false "Rows to skip" default(0)
//	@Param			sort query string false "created_at, name or status"
//	@Param			order query string false "asc or desc" default(desc)
//	@Success		200 {object} services.ListResult[services.ContactMessage]
//	@Failure		400 {object} server.Problem
//	@Router			/contact/messages [get]
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := optionalInt(q.Get("limit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := optionalInt(q.Get("offset"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "offset must be an integer")
		return
	}

	res, err := h.repo.List(r.Context(), services.ListOptions{
		Limit:     limit,
		Offset:    offset,
		SortBy:    q.Get("sort"),
		SortOrder: q.Get("order"),
	})
	if errors.Is(err, services.ErrInvalidSort) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to list contact messages", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to list messages")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGet returns one stored message.
//
//	@Summary		Get a contact message
//	@Tags			contact
//	@Produce		json
//	@Param			id path string true "Message id"
//	@Success		200 {object} services.ContactMessage
//	@Failure		404 {object} server.Problem
//	@Router			/contact/messages/{id} [get]
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	msg, err := h.repo.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get contact message", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to get message")
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	return v, nil
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	server.Error(w, r, status, detail)
}
