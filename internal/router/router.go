package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anonto42/travelsocial/backend/internal/engagement"
	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/handlers"
	"github.com/anonto42/travelsocial/backend/internal/middleware"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/notify"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/anonto42/travelsocial/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Dependencies are the connected stores and clients the routes are built on.
type Dependencies struct {
	Postgres *gorm.DB
	Posts    repositories.PostRepository
	// FirebaseAuth is nil when Firebase is not configured; the
	// firebase-login route is then not registered.
	FirebaseAuth middleware.TokenVerifier
	// HealthChecks back the /ready probe, keyed by store name.
	HealthChecks map[string]handlers.Pinger
	Config       *config.Config
	Logger       *slog.Logger
}

// Migrate creates or updates the PostgreSQL schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.Schema()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SetupRoutes configures all application routes and injects dependencies.
// The returned subscriber must be closed on shutdown so that pending
// fan-out work finishes.
func SetupRoutes(e *echo.Echo, deps Dependencies) (*notify.Subscriber, error) {
	cfg := deps.Config
	log := deps.Logger.With("component", "router")

	if cfg.AuthMode == config.AuthModeFirebase && deps.FirebaseAuth == nil {
		return nil, fmt.Errorf("auth mode %q needs a firebase auth client", cfg.AuthMode)
	}

	health := handlers.NewHealthHandler(deps.HealthChecks)
	e.GET("/health", health.HealthCheck)
	e.GET("/ready", health.ReadyCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "travelsocial api"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(deps.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	reactionRepo := repositories.NewPostgresReactionRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)

	// --- Engagement read side ---
	treeBuilder := engagement.NewTreeBuilder(commentRepo, userRepo, reactionRepo)
	reactionService := engagement.NewReactionService(reactionRepo)

	// --- Notification pipeline ---
	bus := events.NewDispatcher(deps.Logger)
	subscriber := notify.NewSubscriber(
		notify.NewTranslator(userRepo.GetDisplayName),
		notify.NewFanoutResolver(followRepo.GetFollowerIDs),
		notify.NewCommandHandler(notificationRepo, cfg.BatchSize, deps.Logger),
		deps.Logger,
		notify.WithAsyncFanout(cfg.AsyncFanout),
	)
	subscriber.Register(bus)
	log.Info("Notification subscriber registered", "async_fanout", cfg.AsyncFanout, "batch_size", cfg.BatchSize)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	if deps.FirebaseAuth != nil {
		authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth, cfg.JWTSecret)
		authHandler.RegisterAuthRoutes(authGroup)
		log.Info("Auth routes configured")
	} else {
		log.Warn("Firebase not configured, firebase-login route disabled")
	}

	// --- Protected routes ---
	api := e.Group("/api/v1")
	switch cfg.AuthMode {
	case config.AuthModeFirebase:
		api.Use(middleware.FirebaseAuthMiddleware(deps.FirebaseAuth, userRepo))
	default:
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	}
	log.Info("Authentication middleware applied to /api/v1 group", "mode", cfg.AuthMode)

	handlers.NewUserHandler(userRepo, followRepo).RegisterProfileRoutes(api)
	handlers.NewPostHandler(deps.Posts, bus).RegisterPostRoutes(api)
	handlers.NewFollowHandler(followRepo, userRepo, bus).RegisterFollowRoutes(api)
	handlers.NewCommentHandler(commentRepo, deps.Posts, treeBuilder, bus, deps.Logger).RegisterCommentRoutes(api)
	handlers.NewReactionHandler(reactionService, deps.Posts, commentRepo, bus).RegisterReactionRoutes(api)
	handlers.NewGroupHandler(userRepo, bus).RegisterGroupRoutes(api)
	handlers.NewNotificationHandler(notificationRepo).RegisterNotificationRoutes(api)

	log.Info("All routes configured")
	return subscriber, nil
}
