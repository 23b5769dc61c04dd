package main

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"wellspace/internal/api"
	"wellspace/internal/api/handlers"
	"wellspace/internal/api/middleware"
	"wellspace/internal/engine/booking"
	"wellspace/internal/engine/ledger"
	"wellspace/internal/engine/messaging"
	"wellspace/internal/engine/notify"
	"wellspace/internal/pkg/logger"
	"wellspace/internal/platform/audit"
	"wellspace/internal/platform/auth"
	"wellspace/internal/platform/billing"
	"wellspace/internal/platform/config"
	"wellspace/internal/platform/database"
	"wellspace/internal/platform/meeting"
	"wellspace/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.Logging)
	middleware.ConfigureRateLimits(cfg.RateLimit)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	companyRepo := repositories.NewCompanyRepository(db)
	userRepo := repositories.NewUserRepository(db)
	inviteRepo := repositories.NewInviteRepository(db)
	specialistRepo := repositories.NewSpecialistRepository(db)
	webhookRepo := repositories.NewWebhookRepository(db)
	bookingRepo := booking.NewRepository(db)
	messageRepo := messaging.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	realtime := notify.NewRealtime(cfg.Realtime)
	if realtime != nil {
		defer realtime.Close()
	}
	dispatcher := notify.NewDispatcher(webhookRepo, realtime)
	provisioner := meeting.NewProvisioner(cfg.Meeting, bookingRepo)
	billingProvider := billing.NewHostedProvider(cfg.Billing)
	auditLogger := audit.NewLogger(db)

	bookingSvc := booking.NewService(bookingRepo, specialistRepo, provisioner, dispatcher, cfg.Booking.DefaultDurationMinutes)
	messageSvc := messaging.NewService(messageRepo, bookingRepo, dispatcher, cfg.Messaging.PerPartyCap)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, companyRepo, inviteRepo, specialistRepo, tokenSvc)
	companyHandler := handlers.NewCompanyHandler(companyRepo, userRepo, ledgerRepo, tokenSvc)
	billingHandler := handlers.NewBillingHandler(billingProvider, companyRepo, auditLogger)
	specialistHandler := handlers.NewSpecialistHandler(specialistRepo, userRepo, auditLogger)
	inviteHandler := handlers.NewInviteHandler(inviteRepo, auditLogger)
	bookingHandler := handlers.NewBookingHandler(bookingSvc, auditLogger)
	messageHandler := handlers.NewMessageHandler(messageSvc, specialistRepo)
	webhookHandler := handlers.NewWebhookHandler(webhookRepo, auditLogger)
	auditHandler := handlers.NewAuditHandler(auditLogger)
	healthHandler := handlers.NewHealthHandler(db)

	var requestCount atomic.Int64
	metricsHandler := handlers.NewMetricsHandler(&requestCount)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	companyMiddleware := middleware.NewCompanyMiddleware(companyRepo)

	router := api.NewRouter(&api.Dependencies{
		AuthHandler:       authHandler,
		CompanyHandler:    companyHandler,
		BillingHandler:    billingHandler,
		SpecialistHandler: specialistHandler,
		InviteHandler:     inviteHandler,
		BookingHandler:    bookingHandler,
		MessageHandler:    messageHandler,
		WebhookHandler:    webhookHandler,
		AuditHandler:      auditHandler,
		HealthHandler:     healthHandler,
		MetricsHandler:    metricsHandler,
		AuthMiddleware:    authMiddleware,
		CompanyMiddleware: companyMiddleware,
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		router.ServeHTTP(w, r)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info().Str("addr", addr).Msg("Server starting")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
