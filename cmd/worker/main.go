package main

import (
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"wellspace/internal/engine/booking"
	"wellspace/internal/pkg/logger"
	"wellspace/internal/platform/config"
	"wellspace/internal/platform/database"
	"wellspace/internal/platform/repositories"
	"wellspace/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	bookingRepo := booking.NewRepository(db)
	webhookRepo := repositories.NewWebhookRepository(db)

	pendingTTL := cfg.Booking.PendingTTL
	if pendingTTL <= 0 {
		pendingTTL = 14 * 24 * time.Hour
	}
	maxRetries := cfg.Webhooks.RetryAttempts
	if maxRetries <= 0 {
		maxRetries = 5
	}

	log.Info().Msg("Background workers starting")

	go runBookingExpiryWorker(bookingRepo, pendingTTL)
	go runWebhookPauseWorker(webhookRepo, maxRetries)

	select {}
}

func runBookingExpiryWorker(repo *booking.Repository, ttl time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		workers.ExpirePendingBookings(repo, ttl)
	}
}

func runWebhookPauseWorker(repo *repositories.WebhookRepository, maxRetries int) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		workers.PauseFailingWebhooks(repo, maxRetries)
	}
}
