// Package api exposes the dashboard aggregation engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lvonguyen/complyforge/internal/analytics"
	"github.com/lvonguyen/complyforge/internal/observability"
	"github.com/lvonguyen/complyforge/internal/store"
)

// SnapshotFetcher materializes the input for one aggregation request.
type SnapshotFetcher interface {
	Snapshot(ctx context.Context, framework string) (analytics.Snapshot, error)
}

// Handler serves the dashboard API.
type Handler struct {
	fetcher SnapshotFetcher
	engine  *analytics.Engine
	opts    analytics.Options
	cache   *store.ResponseCache
	metrics *observability.Metrics
	log     *zap.Logger
}

// NewHandler wires the dashboard handler. Cache and metrics may be nil.
func NewHandler(fetcher SnapshotFetcher, engine *analytics.Engine, opts analytics.Options, cache *store.ResponseCache, metrics *observability.Metrics, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		fetcher: fetcher,
		engine:  engine,
		opts:    opts,
		cache:   cache,
		metrics: metrics,
		log:     log,
	}
}

// Routes returns the dashboard API routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.handleDashboard)
	return r
}

// handleDashboard computes one dashboard for the requested filters.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := parseFilters(r, h.opts)

	cacheKey := fmt.Sprintf("complyforge:dashboard:%s:%s:%s:%d",
		strings.ToLower(req.Framework), strings.ToLower(req.BusinessUnit),
		strings.ToLower(req.RiskCategory), req.RangeDays)
	if payload, ok := h.cache.Get(r.Context(), cacheKey); ok {
		h.countCache("hit")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
		return
	}
	h.countCache("miss")

	// One pinned "now" per request; every analytic component sees the same
	// timestamp.
	now := time.Now().UTC()

	snap, err := h.fetcher.Snapshot(r.Context(), req.Framework)
	if err != nil {
		h.countDashboard(req.Framework, "error")
		h.log.Error("snapshot fetch failed", zap.Error(err))
		status := http.StatusBadGateway
		if !errors.Is(err, store.ErrSnapshotUnavailable) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, "unable to compute dashboard")
		return
	}

	dashboard := h.engine.Compute(req, snap, now)

	payload, err := json.Marshal(dashboard)
	if err != nil {
		h.countDashboard(snap.Framework, "error")
		h.log.Error("response encode failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to compute dashboard")
		return
	}
	h.cache.Set(r.Context(), cacheKey, payload)

	h.countDashboard(snap.Framework, "ok")
	if h.metrics != nil {
		h.metrics.ComputeDuration.WithLabelValues(snap.Framework).Observe(time.Since(start).Seconds())
		h.metrics.ControlsInScope.WithLabelValues(snap.Framework).Set(float64(dashboard.Metrics.TotalControls))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	w.Header().Set("X-Report-ID", uuid.NewString())
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// parseFilters applies the request defaulting rules: malformed rangeDays
// falls back to the default window rather than rejecting the request, and
// the window is clamped to the configured bounds.
func parseFilters(r *http.Request, opts analytics.Options) analytics.Request {
	q := r.URL.Query()
	req := analytics.Request{
		Framework:    strings.TrimSpace(q.Get("framework")),
		BusinessUnit: strings.TrimSpace(q.Get("businessUnit")),
		RiskCategory: strings.TrimSpace(q.Get("riskCategory")),
	}
	if raw := q.Get("rangeDays"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil {
			req.RangeDays = days
		}
	}
	req.RangeDays = opts.ClampRangeDays(req.RangeDays)
	return req
}

func (h *Handler) countDashboard(framework, outcome string) {
	if h.metrics == nil {
		return
	}
	h.metrics.DashboardsComputed.WithLabelValues(framework, outcome).Inc()
}

func (h *Handler) countCache(result string) {
	if h.metrics == nil {
		return
	}
	h.metrics.CacheLookups.WithLabelValues(result).Inc()
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
