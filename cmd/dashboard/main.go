package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/user/webstat/internal/adapter/api"
	"github.com/user/webstat/internal/adapter/metrics"
	"github.com/user/webstat/internal/adapter/repository/postgres"
	redisrepo "github.com/user/webstat/internal/adapter/repository/redis"
	"github.com/user/webstat/internal/domain"
	"github.com/user/webstat/internal/pkg/config"
	"github.com/user/webstat/internal/pkg/logger"
	"github.com/user/webstat/internal/usecase"

	_ "github.com/lib/pq" // postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewDashboardMetrics()

	// --- Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// --- Optional Redis Presence Store ---
	var presenceRepo domain.PresenceRepository
	if cfg.RedisAddr != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisAddr)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, active-now falls back to postgres", "error", err)
		}
		presence := redisrepo.NewPresenceRepository(redisClient, logger)
		go presence.StartHealthCheck(ctx, 5*time.Second)
		presenceRepo = presence
	}

	// --- Repositories and Use Cases ---
	eventRepo := postgres.NewEventRepository(db, logger)
	siteRepo := postgres.NewSiteRepository(db)
	userRepo := postgres.NewUserRepository(db)

	authUseCase := usecase.NewAuthUseCase(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	sitesUseCase := usecase.NewSitesUseCase(siteRepo)
	aggregateUseCase := usecase.NewAggregateUseCase(eventRepo, m, logger)
	activeUseCase := usecase.NewActiveVisitorsUseCase(presenceRepo, eventRepo, cfg.ActiveWindow, m, logger)

	// --- Dashboard Server ---
	router := api.NewDashboardRouter(cfg, logger, authUseCase, sitesUseCase, aggregateUseCase, activeUseCase)
	server := &http.Server{
		Addr:         cfg.DashboardAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		logger.Info("starting dashboard server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("dashboard server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("dashboard server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
