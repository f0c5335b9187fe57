// Package main provides the entry point for the Launchpad launch directory service.
//
//	@title			Launchpad API
//	@version		1.0.0
//	@description	Product launch directory with click analytics and paid placements.
//
//	@contact.name	Launchpad Support
//	@contact.email	support@launchpad.dev
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"Launchpad-Backend/internal/auth"
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/database"
	httpHandler "Launchpad-Backend/internal/handler/http"
	"Launchpad-Backend/internal/metrics"
	"Launchpad-Backend/internal/objectstore"
	"Launchpad-Backend/internal/payment"
	"Launchpad-Backend/internal/ratelimit"
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/internal/repository/memory"
	mongorepo "Launchpad-Backend/internal/repository/mongo"
	"Launchpad-Backend/internal/repository/postgres"
	"Launchpad-Backend/internal/service"
	"Launchpad-Backend/internal/worker"
	"Launchpad-Backend/pkg/logger"
	"Launchpad-Backend/pkg/useragent"
	"context"
	"errors"
	lg "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "Launchpad-Backend/docs" // Import swagger docs
)

const regexesPath = "assets/regexes.yaml"

func main() {
	cfg := config.MustLoad()
	log := logger.NewWithFile(cfg.Env, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting launchpad service", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Seed placement slots if enabled
	if cfg.Database.SeedData {
		if err := database.SeedData(db, &cfg.Placements, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	storage := postgres.New(db, log)

	// Click counters
	var clicks repository.ClickStore
	switch cfg.Clicks.Backend {
	case "mongo":
		client, err := database.NewMongoClient(ctx, &cfg.Mongo, log)
		if err != nil {
			log.Fatal("failed to connect to mongo", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.CloseMongo(closeCtx, client, log); err != nil {
				log.Error("failed to close mongo connection", zap.Error(err))
			}
		}()

		store := mongorepo.NewClickStore(client.Database(cfg.Mongo.Database), log)
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Fatal("failed to create click indexes", zap.Error(err))
		}
		clicks = store
	case "memory":
		log.Warn("click counters are kept in memory and lost on restart")
		clicks = memory.NewClickStore()
	default:
		clicks = postgres.NewClickStore(db, log)
	}
	log.Info("click store ready", zap.String("backend", cfg.Clicks.Backend))

	// Rate limiter store
	var limiterStore ratelimit.Store
	if cfg.RateLimit.Backend == "redis" {
		rdb, err := database.NewRedisClient(ctx, &cfg.Redis, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		limiterStore = ratelimit.NewRedisStore(rdb)
	} else {
		limiterStore = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.New(limiterStore, cfg.RateLimit.KeyPrefix)

	// Payment gateway
	var gateway payment.Gateway
	if cfg.Payment.TestMode || cfg.Payment.StripeSecretKey == "" {
		log.Warn("payment gateway in test mode, no real charges are made")
		gateway = payment.NewTestGateway(cfg.Payment.StripeWebhookSecret, false, log)
	} else {
		gateway = payment.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret, log)
	}

	// Object storage
	var backend objectstore.Backend
	if cfg.Storage.AccessKey != "" {
		minioBackend, err := objectstore.NewMinioBackend(ctx, &cfg.Storage, log)
		if err != nil {
			log.Fatal("failed to connect to object storage", zap.Error(err))
		}
		backend = minioBackend
	} else {
		log.Warn("object storage not configured, uploads are kept in memory")
		backend = objectstore.NewMemoryBackend()
	}

	// Initialize User-Agent parser
	uaParser, err := useragent.NewParser(regexesPath, log)
	if err != nil {
		log.Warn("failed to initialize User-Agent parser, bot filtering disabled", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Services
	launchService := service.NewLaunchService(storage, &cfg.Launches, log)
	clickService := service.NewClickService(clicks, storage, uaParser, m, log)
	placementService := service.NewPlacementService(storage, gateway, &cfg.Payment, m, log)

	jwtService := auth.NewJWTService(auth.NewJWTConfig(&cfg.Auth))
	secureCookies := cfg.Env != "local" && cfg.Env != "dev"

	// Background jobs
	scheduler := worker.NewScheduler(log, worker.Config{
		RetryAttempts:   cfg.Scheduler.RetryAttempts,
		RetryDelay:      cfg.Scheduler.RetryDelay,
		JobTimeout:      30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	},
		worker.Job{
			Name:     "rate-limit-sweep",
			Interval: cfg.Scheduler.RateLimitSweepInterval,
			Run: func(ctx context.Context) error {
				_, err := limiter.Sweep(ctx)
				return err
			},
		},
		worker.Job{
			Name:     "placement-expiry",
			Interval: cfg.Scheduler.PlacementExpiryInterval,
			Run: func(ctx context.Context) error {
				_, err := placementService.ExpireOverdue(ctx)
				return err
			},
		},
	)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	httpAPIServer := httpHandler.NewServer(httpHandler.Deps{
		Storage:        storage,
		Launches:       launchService,
		Comments:       service.NewCommentService(storage, log),
		Users:          service.NewUserService(storage, log),
		Clicks:         clickService,
		Placements:     placementService,
		Uploader:       objectstore.NewUploader(backend, cfg.Storage.PublicBaseURL, log),
		AuthHandlers:   auth.NewAuthHandlers(storage, jwtService, auth.NewPasswordService(), &cfg.Auth, secureCookies, log),
		AuthMiddleware: auth.NewMiddleware(jwtService, cfg.Auth.IsAdmin, cfg.HTTPServer.AllowedOrigins, log),
		Limiter:        limiter,
		RateLimit:      &cfg.RateLimit,
		Payment:        &cfg.Payment,
		Metrics:        m,
		Jobs:           scheduler.GetStats,
		SecureCookies:  secureCookies,
	}, log)

	server := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpAPIServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		log.Info("shutting down launchpad service...")
	case err := <-serverErr:
		log.Error("HTTP server failed", zap.Error(err))
	}

	if err := scheduler.Stop(); err != nil {
		log.Error("failed to stop scheduler", zap.Error(err))
	}

	// Gracefully stop HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

}
