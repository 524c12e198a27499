package farm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/aura-cli/internal/geo"
	"github.com/sells-group/aura-cli/internal/model"
	"github.com/sells-group/aura-cli/internal/oracle"
)

// Advisor answers questions about a farm record.
type Advisor interface {
	Advise(ctx context.Context, m model.FarmMetrics, question string) (*oracle.Advice, error)
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithRefreshLimit caps refresh requests per second across all farms.
func WithRefreshLimit(perSecond float64, burst int) HandlerOption {
	return func(h *Handler) {
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithAdvisor enables the advice endpoint.
func WithAdvisor(a Advisor) HandlerOption {
	return func(h *Handler) {
		h.advisor = a
	}
}

// WithHistoryLimit sets the default number of snapshots returned.
func WithHistoryLimit(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.historyLimit = n
		}
	}
}

// WithMapLinker overrides the map deep-link settings.
func WithMapLinker(l MapLinker) HandlerOption {
	return func(h *Handler) {
		h.linker = l
	}
}

// Handler serves the farm API.
type Handler struct {
	svc          *Service
	linker       MapLinker
	limiter      *rate.Limiter
	advisor      Advisor
	historyLimit int
}

// NewHandler creates a farm API handler.
func NewHandler(svc *Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:          svc,
		linker:       MapLinker{BaseURL: DefaultMapBaseURL, Zoom: DefaultMapZoom},
		historyLimit: 20,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Routes returns the farm routes on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register adds the farm routes to r, typically the /api/v1 subrouter.
func (h *Handler) Register(r chi.Router) {
	r.Get("/farms", h.listFarms)
	r.Get("/farms/{id}", h.getFarm)
	r.Post("/farms/{id}/refresh", h.refreshFarm)
	r.Get("/farms/{id}/history", h.history)
	r.Get("/farms/{id}/map", h.farmMap)
	r.Post("/farms/{id}/advice", h.advice)
	r.Get("/map", h.mapLink)
}

func (h *Handler) listFarms(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.svc.ListAvailableFarms())
}

func (h *Handler) getFarm(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.FetchFarmData(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) refreshFarm(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		WriteJSON(w, http.StatusTooManyRequests, errorBody{Error: "refresh rate limit exceeded"})
		return
	}

	m, err := h.svc.Refresh(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	snaps, err := h.svc.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, snaps)
}

type mapLinkBody struct {
	FarmID string     `json:"farmId,omitempty"`
	Center geo.LatLng `json:"center"`
	URL    string     `json:"url"`
}

func (h *Handler) farmMap(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Registry().Get(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapLinkBody{
		FarmID: m.FarmID,
		Center: m.Centroid,
		URL:    h.linker.URL(m.Centroid),
	})
}

func (h *Handler) mapLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: "lat must be a number"})
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: "lng must be a number"})
		return
	}

	c := geo.LatLng{Lat: lat, Lng: lng}
	WriteJSON(w, http.StatusOK, mapLinkBody{Center: c, URL: h.linker.URL(c)})
}

func (h *Handler) advice(w http.ResponseWriter, r *http.Request) {
	if h.advisor == nil {
		WriteError(w, r, oracle.ErrAdvisorDisabled)
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
	}

	m, err := h.svc.Registry().Get(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	advice, err := h.advisor.Advise(r.Context(), m, req.Question)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, advice)
}

type errorBody struct {
	Error    string   `json:"error"`
	KnownIDs []string `json:"known_ids,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("farm: write response", zap.Error(err))
	}
}

// WriteError maps domain errors to HTTP responses. Unknown farms get a 404
// listing the known ids so the client can offer a retry.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *NotFoundError
	switch {
	case errors.As(err, &nf):
		WriteJSON(w, http.StatusNotFound, errorBody{Error: nf.Error(), KnownIDs: nf.Known})
	case eris.Is(err, oracle.ErrAdvisorDisabled):
		WriteJSON(w, http.StatusServiceUnavailable, errorBody{Error: "crop advisor is not configured"})
	case eris.Is(err, oracle.ErrAdvisorUnavailable):
		w.Header().Set("Retry-After", "30")
		WriteJSON(w, http.StatusServiceUnavailable, errorBody{Error: "crop advisor is temporarily unavailable"})
	case errors.Is(err, context.Canceled):
		zap.L().Debug("farm: request cancelled", zap.String("path", r.URL.Path))
	default:
		zap.L().Error("farm: request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
