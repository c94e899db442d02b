package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/travelsocial/backend/internal/handlers"
	"github.com/anonto42/travelsocial/backend/internal/metrics"
	"github.com/anonto42/travelsocial/backend/internal/middleware"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/anonto42/travelsocial/backend/internal/router"
	"github.com/anonto42/travelsocial/backend/pkg/config"
	"github.com/anonto42/travelsocial/backend/pkg/firebase"
	"github.com/anonto42/travelsocial/backend/pkg/logger"
	"github.com/anonto42/travelsocial/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "travelsocial",
		Short:         "Travel social network API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the notification pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			return migrate()
		},
	})

	return cmd
}

func migrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	db, err := config.OpenPostgres(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := router.Migrate(db); err != nil {
		return err
	}
	log.Info("PostgreSQL migrations completed")
	return nil
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	if err := router.Migrate(db.Postgres); err != nil {
		return err
	}

	var verifier middleware.TokenVerifier
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
		if err != nil {
			return fmt.Errorf("initialize firebase: %w", err)
		}
		verifier = app.AuthClient
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, log)

	subscriber, err := router.SetupRoutes(e, router.Dependencies{
		Postgres:     db.Postgres,
		Posts:        repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase)),
		FirebaseAuth: verifier,
		HealthChecks: map[string]handlers.Pinger{
			"postgres": db.PingPostgres,
			"mongo":    db.PingMongo,
		},
		Config: cfg,
		Logger: log,
	})
	if err != nil {
		return err
	}
	defer subscriber.Close()

	metricsServer := metrics.NewHTTPServer(cfg.MetricsPort, log)
	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting API server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown failed", "error", err)
	}
	return nil
}
