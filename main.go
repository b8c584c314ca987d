package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"spotted-backend/internal/classifier"
	"spotted-backend/internal/config"
	"spotted-backend/internal/middleware"
	"spotted-backend/internal/moderation"
	"spotted-backend/internal/notifier"
	"spotted-backend/internal/repository"
	"spotted-backend/internal/server"
	"spotted-backend/internal/service"
	"spotted-backend/internal/stats"
	"spotted-backend/internal/triage"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	service.SetJWTSecret(cfg.Auth.JWTSecret)

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize repositories
	spottedStore := repository.NewSpottedStore(db, logger)
	authRepo := repository.NewAuthRepository(db, logger)

	// Initialize classifier client and check it is reachable. A failed
	// check is only a warning: the service can come up later, and every
	// triage call surfaces its own classifier errors.
	classifierClient := classifier.NewClient(cfg.Classifier.URL)
	hcCtx, hcCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if health, err := classifierClient.HealthCheck(hcCtx); err != nil {
		logger.Warn("Classifier health check failed, continuing", zap.Error(err))
	} else {
		logger.Info("Classifier is healthy", zap.String("status", health.Status))
	}
	hcCancel()

	// Initialize Telegram notifier for the moderation queue (optional)
	tgNotifier, err := notifier.NewTelegramNotifier(cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier, continuing without it", zap.Error(err))
		tgNotifier = nil
	}

	// Initialize services
	var triageNotifier triage.Notifier
	if tgNotifier != nil {
		triageNotifier = tgNotifier
	}
	triageSvc := triage.NewService(classifierClient, spottedStore, triageNotifier, logger)
	moderationSvc := moderation.NewService(spottedStore, logger)
	aggregator := stats.NewAggregator(spottedStore)
	authSvc := service.NewAuthService(authRepo, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour, logger)

	// Initialize the rate limiter (optional)
	rateLimiter, err := middleware.NewRateLimiter(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize rate limiter", zap.Error(err))
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	srv := server.NewServer(server.Deps{
		Cfg:           cfg,
		AuthService:   authSvc,
		TriageService: triageSvc,
		Moderation:    moderationSvc,
		Store:         spottedStore,
		Aggregator:    aggregator,
		RateLimiter:   rateLimiter,
	}, logger)
	srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}
