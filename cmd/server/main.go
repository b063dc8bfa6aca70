package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/metrics"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/anonto42/scholarfolio/backend/internal/router"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/anonto42/scholarfolio/backend/pkg/config"
	"github.com/anonto42/scholarfolio/backend/pkg/firebase"
	"github.com/anonto42/scholarfolio/backend/pkg/logger"
	"github.com/anonto42/scholarfolio/backend/pkg/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.Init(cfg.Env)

	// Initialize storage
	var stores *repositories.Registry
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		stores = repositories.NewMemoryRegistry()
	case config.DriverMongo:
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize databases")
		}
		defer db.CloseDB()
		if err := router.Migrate(db.Postgres); err != nil {
			log.Fatal().Err(err).Msg("Failed to auto migrate models")
		}
		stores = repositories.NewRegistry(db.MongoDB, db.Postgres)
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("Unknown STORE_DRIVER")
	}

	// Initialize Firebase; login through it stays disabled without credentials
	ctx := context.Background()
	var verifier services.IdentityVerifier
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Firebase")
		}
		verifier = firebase.NewVerifier(firebaseApp.AuthClient)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, log)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Deps{
		Stores:    stores,
		Verifier:  verifier,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
		Logger:    log,
	})

	// Start server
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Metrics server shutdown failed")
	}
	log.Info().Msg("Server exited")
}
