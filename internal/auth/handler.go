package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/server"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

// TopicSessionChanged is published on the event bus with a Change payload.
const TopicSessionChanged = "auth.session.changed"

const (
	eventBuffer  = 16
	writeTimeout = 5 * time.Second
)

// Handler serves the auth API.
type Handler struct {
	provider Provider
	bus      pkgplugin.EventBus
	logger   *zap.Logger
}

// NewHandler creates an auth handler. bus may be nil, which disables the
// event stream.
func NewHandler(p Provider, bus pkgplugin.EventBus, logger *zap.Logger) *Handler {
	return &Handler{provider: p, bus: bus, logger: logger}
}

// Routes returns the auth routes relative to the module mount point.
func (h *Handler) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/sign-in", Handler: h.handleSignIn},
		{Method: "POST", Path: "/sign-out", Handler: h.handleSignOut},
		{Method: "GET", Path: "/session", Handler: h.handleSession},
		{Method: "GET", Path: "/events", Handler: h.handleEvents},
	}
}

// handleSignIn exchanges credentials for a session token.
//
//	@Summary		Sign in
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request body Credentials false "Credentials; the local provider accepts any"
//	@Success		200 {object} Session
//	@Failure		400 {object} server.Problem
//	@Failure		401 {object} server.Problem
//	@Router			/auth/sign-in [post]
func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.provider.SignIn(r.Context(), creds)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid email or password")
		return
	case err != nil:
		h.logger.Error("sign-in failed", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "sign-in is unavailable, try again later")
		return
	}
	h.logger.Info("signed in", zap.String("user_id", s.User.ID))
	writeJSON(w, http.StatusOK, s)
}

// handleSignOut revokes the bearer token.
//
//	@Summary		Sign out
//	@Tags			auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401 {object} server.Problem
//	@Router			/auth/sign-out [post]
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	err := h.provider.SignOut(r.Context(), TokenFromRequest(r))
	switch {
	case errors.Is(err, ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "not signed in")
		return
	case err != nil:
		h.logger.Error("sign-out failed", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "sign-out is unavailable, try again later")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSession returns the current session.
//
//	@Summary		Current session
//	@Tags			auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200 {object} Session
//	@Failure		401 {object} server.Problem
//	@Router			/auth/session [get]
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.resolve(r)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleEvents streams the caller's session changes over a websocket.
// Browsers cannot set headers on websocket requests, so the token may also
// be passed as access_token.
//
//	@Summary		Session change stream
//	@Tags			auth
//	@Param			access_token query string false "Bearer token"
//	@Success		101
//	@Failure		401 {object} server.Problem
//	@Router			/auth/events [get]
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		writeError(w, r, http.StatusServiceUnavailable, "event stream is disabled")
		return
	}
	s, err := h.resolve(r)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}

	// Subscribe before the upgrade so no change is missed between the
	// handshake and the first read of ch.
	ch := make(chan Change, eventBuffer)
	unsubscribe := h.bus.Subscribe(TopicSessionChanged, func(_ context.Context, e pkgplugin.Event) {
		c, ok := e.Payload.(Change)
		if !ok || c.User.ID != s.User.ID {
			return
		}
		select {
		case ch <- c:
		default:
			h.logger.Warn("dropping session event for slow client", zap.String("user_id", c.User.ID))
		}
	})
	defer unsubscribe()

	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case c := <-ch:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, c)
			cancel()
			if err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *Handler) resolve(r *http.Request) (*Session, error) {
	token := TokenFromRequest(r)
	if token == "" {
		token = r.URL.Query().Get("access_token")
	}
	return h.provider.Session(r.Context(), token)
}

func (h *Handler) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrUnauthorized) {
		writeError(w, r, http.StatusUnauthorized, "not signed in")
		return
	}
	h.logger.Error("session lookup failed", zap.Error(err))
	writeError(w, r, http.StatusBadGateway, "session lookup is unavailable")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	server.Error(w, r, status, detail)
}
