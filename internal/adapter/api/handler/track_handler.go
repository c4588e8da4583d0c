package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/webstat/internal/domain"
)

// clientAddrHeaders is the prioritized list of trusted proxy headers the
// client address is resolved from.
var clientAddrHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// TrackHandler handles HTTP requests on the open collection endpoint.
type TrackHandler struct {
	useCase     Collector
	logger      *slog.Logger
	maxBodySize int64
}

// Collector is the part of the collect use case the handler needs.
type Collector interface {
	Collect(ctx context.Context, env domain.Envelope, clientAddr, userAgent string) error
}

// NewTrackHandler creates a new TrackHandler.
func NewTrackHandler(uc Collector, logger *slog.Logger, maxBodySize int64) *TrackHandler {
	return &TrackHandler{
		useCase:     uc,
		logger:      logger,
		maxBodySize: maxBodySize,
	}
}

// ServeHTTP processes one {eventType, data} envelope. Any processing failure
// yields a generic server error; detail stays in the logs.
func (h *TrackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var env domain.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.logger.Warn("failed to decode tracking envelope", "error", err)
		writeError(w)
		return
	}

	userAgent := r.Header.Get("User-Agent")
	if userAgent == "" {
		userAgent = "unknown"
	}

	if err := h.useCase.Collect(r.Context(), env, ClientAddr(r), userAgent); err != nil {
		h.logger.Error("failed to process tracking event", "error", err, "event_type", env.EventType)
		writeError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// ClientAddr resolves the client network address from the first non-empty
// trusted proxy header, else "unknown". X-Forwarded-For may carry a chain;
// only the first hop counts.
func ClientAddr(r *http.Request) string {
	for _, name := range clientAddrHeaders {
		v := r.Header.Get(name)
		if v == "" {
			continue
		}
		if name == "X-Forwarded-For" {
			if first, _, found := strings.Cut(v, ","); found {
				v = first
			}
			v = strings.TrimSpace(v)
		}
		if v != "" {
			return v
		}
	}
	return "unknown"
}

func writeError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
}
