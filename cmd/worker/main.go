package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/config"
	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/jobs"
	"github.com/deallens/deallens/internal/marketdata"
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

	cacheManager := cache.Connect(cfg.RedisURL, log)
	defer cacheManager.Close()

	quotes := marketdata.NewClient(cfg.AlphaVantageURL, cfg.AlphaVantageKey, log)

	scheduler := jobs.New(log)
	if cfg.AlphaVantageKey != "" {
		if err := scheduler.AddJob(cfg.QuoteSyncSchedule, jobs.NewQuoteSyncJob(database, cacheManager, quotes, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register quote sync job")
		}
	} else {
		log.Warn().Msg("No market data API key configured, quote sync disabled")
	}
	if cfg.NewsAPIKey != "" {
		news := marketdata.NewNewsClient(cfg.NewsAPIURL, cfg.NewsAPIKey, log)
		if err := scheduler.AddJob(cfg.NewsSyncSchedule, jobs.NewNewsSyncJob(database, cacheManager, news, cfg.NewsLookbackDays, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register news sync job")
		}
	} else {
		log.Warn().Msg("No news API key configured, news sync disabled")
	}
	if err := scheduler.AddJob(cfg.AlertEvalSchedule, jobs.NewAlertEvaluationJob(database, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register alert evaluation job")
	}
	if err := scheduler.AddJob(cfg.AlertCleanupSchedule, jobs.NewAlertCleanupJob(database, cfg.AlertRetentionDays, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register alert cleanup job")
	}

	scheduler.Start()
	log.Info().Msg("Worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	scheduler.Stop()
}
