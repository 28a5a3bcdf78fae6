package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/deallens/deallens/internal/auth"
	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/config"
	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/handlers"
	"github.com/deallens/deallens/internal/ratelimit"
	"github.com/deallens/deallens/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel})
	logger.SetGlobalLogger(log)

	database, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to ensure schema")
	}
	cancel()

	cacheManager := cache.Connect(cfg.RedisURL, log)
	defer cacheManager.Close()

	window := time.Duration(cfg.RateLimitWindowSec) * time.Second
	rateLimiter := ratelimit.NewMiddleware(
		ratelimit.New(cfg.RateLimitRequests, window),
		ratelimit.New(cfg.RateLimitAuthRequests, window),
		log,
	)
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)

	router := mux.NewRouter()
	router.Use(rateLimiter.Handler)

	api := router.PathPrefix("/api/v1").Subrouter()

	handlers.NewHealthHandler(database, cacheManager).RegisterRoutes(api)

	authHandler := handlers.NewAuthHandler(database, cfg.JWTSecret, log)
	authHandler.RegisterRoutes(api)

	handlers.NewCompaniesHandler(database, cacheManager, log).RegisterRoutes(api)
	handlers.NewDealsHandler(database, cacheManager, log).RegisterRoutes(api)
	handlers.NewCompsHandler(database, cacheManager, log).RegisterRoutes(api)
	handlers.NewPrecedentsHandler(database, cacheManager, log).RegisterRoutes(api)
	handlers.NewValuationHandler(log).RegisterRoutes(api)
	handlers.NewAlertsHandler(database, log).RegisterRoutes(api)
	handlers.NewSearchHandler(database, cacheManager, log).RegisterRoutes(api)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware.Authenticate)
	authHandler.RegisterProtectedRoutes(protected)
	handlers.NewWatchlistHandler(database, log).RegisterRoutes(protected)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}
