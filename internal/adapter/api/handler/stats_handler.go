package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/user/webstat/internal/adapter/api/middleware"
	"github.com/user/webstat/internal/domain"
	"github.com/user/webstat/internal/timerange"
	"github.com/user/webstat/internal/usecase"
)

// StatsHandler serves aggregated metrics and the active-now indicator for a
// site the caller owns.
type StatsHandler struct {
	sites      *usecase.SitesUseCase
	aggregator *usecase.AggregateUseCase
	active     *usecase.ActiveVisitorsUseCase
	logger     *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(sites *usecase.SitesUseCase, aggregator *usecase.AggregateUseCase, active *usecase.ActiveVisitorsUseCase, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		sites:      sites,
		aggregator: aggregator,
		active:     active,
		logger:     logger,
	}
}

// GetStats handles GET /api/sites/{siteID}/stats?range=...&from=...&to=...
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	site, ok := h.ownedSite(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	rangeName := q.Get("range")
	if rangeName == "" {
		rangeName = timerange.Today
	}

	var customFrom, customTo time.Time
	if v := q.Get("from"); v != "" {
		customFrom, _ = time.Parse(time.RFC3339, v)
	}
	if v := q.Get("to"); v != "" {
		customTo, _ = time.Parse(time.RFC3339, v)
	}

	from, to := timerange.Resolve(rangeName, customFrom, customTo, time.Now().UTC())
	summary := h.aggregator.Summarize(r.Context(), site.ID, from, to)

	writeJSON(w, http.StatusOK, summary)
}

// GetActive handles GET /api/sites/{siteID}/active
func (h *StatsHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	site, ok := h.ownedSite(w, r)
	if !ok {
		return
	}

	count := h.active.Count(r.Context(), site.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active_visitors": count,
		"checked_at":      time.Now().UTC(),
	})
}

func (h *StatsHandler) ownedSite(w http.ResponseWriter, r *http.Request) (*domain.Site, bool) {
	return resolveOwnedSite(w, r, h.sites, h.logger)
}

// resolveOwnedSite parses the siteID route param and enforces ownership.
// Missing and foreign sites are indistinguishable to the caller.
func resolveOwnedSite(w http.ResponseWriter, r *http.Request, sites *usecase.SitesUseCase, logger *slog.Logger) (*domain.Site, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	siteID, err := uuid.Parse(chi.URLParam(r, "siteID"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}

	site, err := sites.GetOwned(r.Context(), userID, siteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return nil, false
		}
		logger.Error("failed to load site", "error", err, "site_id", siteID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return site, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
