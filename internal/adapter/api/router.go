package api

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/user/webstat/internal/adapter/api/handler"
	"github.com/user/webstat/internal/adapter/api/middleware"
	"github.com/user/webstat/internal/adapter/metrics"
	"github.com/user/webstat/internal/pkg/config"
	"github.com/user/webstat/internal/usecase"
)

// NewCollectorRouter creates the HTTP router for the open collector service.
// The track endpoint is intentionally unauthenticated so third-party pages
// can post to it directly; CORS is wide open for the same reason.
func NewCollectorRouter(
	cfg *config.Config,
	logger *slog.Logger,
	collectUseCase *usecase.CollectUseCase,
	m *metrics.CollectorMetrics,
) http.Handler {
	mux := http.NewServeMux()

	trackHandler := handler.NewTrackHandler(collectUseCase, logger, cfg.MaxBodySize)
	limiter := rate.NewLimiter(rate.Limit(cfg.TrackRateLimit), cfg.TrackRateBurst)
	rateLimit := middleware.RateLimit(limiter, m)

	mux.Handle("POST /api/track", middleware.CORS(rateLimit(trackHandler)))
	mux.Handle("OPTIONS /api/track", middleware.CORS(http.NotFoundHandler()))

	mux.Handle("GET /tracker.js", middleware.CORS(handler.NewTrackerHandler()))

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
