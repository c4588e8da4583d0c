package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/webstat/internal/adapter/api/handler"
	"github.com/user/webstat/internal/adapter/api/middleware"
	"github.com/user/webstat/internal/pkg/config"
	"github.com/user/webstat/internal/usecase"
)

// NewDashboardRouter creates the HTTP router for the authenticated
// dashboard API.
func NewDashboardRouter(
	cfg *config.Config,
	logger *slog.Logger,
	authUseCase *usecase.AuthUseCase,
	sitesUseCase *usecase.SitesUseCase,
	aggregateUseCase *usecase.AggregateUseCase,
	activeUseCase *usecase.ActiveVisitorsUseCase,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))

	authHandler := handler.NewAuthHandler(authUseCase, logger)
	sitesHandler := handler.NewSitesHandler(sitesUseCase, logger)
	statsHandler := handler.NewStatsHandler(sitesUseCase, aggregateUseCase, activeUseCase, logger)
	snippetHandler := handler.NewSnippetHandler(sitesUseCase, cfg.TrackerURL, logger)

	r.Post("/api/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, logger))

		r.Get("/api/sites", sitesHandler.List)
		r.Post("/api/sites", sitesHandler.Provision)
		r.Get("/api/sites/{siteID}/stats", statsHandler.GetStats)
		r.Get("/api/sites/{siteID}/active", statsHandler.GetActive)
		r.Get("/api/sites/{siteID}/snippet", snippetHandler.Generate)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
