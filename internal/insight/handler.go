package insight

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/metrics"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/ratelimit"
)

// Response is the body of GET /insight.
type Response struct {
	Query   string `json:"query"`
	Insight string `json:"insight"`
}

// Handler serves insight requests. Every failure is swallowed: the
// response always has status 200 and an empty insight when none could be
// produced.
type Handler struct {
	service *Service
	limiter *ratelimit.Keyed
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewHandler creates an insight handler. limiter may be nil.
func NewHandler(service *Service, limiter *ratelimit.Keyed, logger *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, limiter: limiter, logger: logger, metrics: m}
}

// Routes returns the insight routes relative to the module mount point.
func (h *Handler) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "", Handler: h.handleInsight},
	}
}

// handleInsight returns a short tip for the current search text.
//
//	@Summary		Search insight
//	@Description	Generates a one or two sentence tip for a search. A newer request with the same client key cancels an older one, which then returns an empty insight.
//	@Tags			insight
//	@Produce		json
//	@Param			q query string true "Search text"
//	@Param			client query string false "Client key for last-input-wins; defaults to the remote address"
//	@Success		200 {object} Response
//	@Router			/insight [get]
func (h *Handler) handleInsight(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	addr := remoteHost(r)
	client := r.URL.Query().Get("client")
	if client == "" {
		client = addr
	}

	resp := Response{Query: q}
	if h.limiter != nil && !h.limiter.Allow(addr) {
		h.metrics.Insight("limited")
		h.logger.Debug("insight rate limited", zap.String("remote", addr))
		writeJSON(w, http.StatusOK, resp)
		return
	}

	text, err := h.service.Insight(r.Context(), client, q)
	switch {
	case errors.Is(err, ErrSuperseded):
		h.logger.Debug("insight superseded", zap.String("client", client))
	case err != nil:
		h.logger.Debug("insight failed", zap.String("client", client), zap.Error(err))
	default:
		resp.Insight = text
	}
	writeJSON(w, http.StatusOK, resp)
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
