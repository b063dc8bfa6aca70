package router

import (
	"fmt"
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/handlers"
	"github.com/anonto42/scholarfolio/backend/internal/middleware"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/anonto42/scholarfolio/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps are the dependencies SetupRoutes wires into the handlers
type Deps struct {
	Stores *repositories.Registry
	// Verifier enables Firebase login when set
	Verifier  services.IdentityVerifier
	JWTSecret string
	JWTTTL    time.Duration
	Logger    zerolog.Logger
}

// Migrate auto-migrates the PostgreSQL engagement tables
func Migrate(pgdb *gorm.DB) error {
	if err := pgdb.AutoMigrate(repositories.PostgresModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	log := d.Logger

	e.GET("/health", handlers.HealthCheck)

	// --- Services ---
	resolver := services.NewWorkResolver(d.Stores)
	references := services.NewReferenceMaintainer(d.Stores, log)
	notifier := services.NewNotifier(d.Stores, resolver, log)
	ledger := services.NewEngagementLedger(d.Stores, resolver, notifier, log)
	auth := services.NewAuthService(d.Stores, d.JWTSecret, d.JWTTTL, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(auth, d.Verifier).RegisterAuthRoutes(authGroup)
	if d.Verifier == nil {
		log.Warn().Msg("Firebase verifier not configured, firebase-login route disabled")
	}

	// Reads are open to anonymous callers; writes need a valid JWT.
	api := e.Group("/api/v1", middleware.OptionalJWTAuth(auth))
	requireAuth := middleware.RequireActor()

	handlers.NewUserHandler(auth).RegisterProfileRoutes(api, requireAuth)
	handlers.NewWorkHandler(services.NewWorkService(d.Stores, resolver, references, log)).RegisterWorkRoutes(api, requireAuth)
	handlers.NewCourseHandler(services.NewCourseService(d.Stores, references, log)).RegisterCourseRoutes(api, requireAuth)
	handlers.NewCommentHandler(ledger).RegisterCommentRoutes(api, requireAuth)
	handlers.NewLikeHandler(ledger).RegisterLikeRoutes(api, requireAuth)
	handlers.NewSavedHandler(services.NewSavedItems(d.Stores, resolver, log)).RegisterSavedRoutes(api, requireAuth)
	handlers.NewNotificationHandler(services.NewInbox(d.Stores)).RegisterNotificationRoutes(api, requireAuth)
	handlers.NewLecturerHandler(
		services.NewAnalyticsAggregator(d.Stores),
		services.NewActivityFeed(d.Stores, resolver),
	).RegisterLecturerRoutes(api, requireAuth)

	log.Info().Int("routes", len(e.Routes())).Msg("All routes configured")
}
