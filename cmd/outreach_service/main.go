package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/DisparoLabs/disparo/internal/outreach_service/app"
	"github.com/DisparoLabs/disparo/internal/outreach_service/domain"
	"github.com/DisparoLabs/disparo/internal/outreach_service/middleware"
	"github.com/DisparoLabs/disparo/internal/outreach_service/repository/postgres"
	transporthttp "github.com/DisparoLabs/disparo/internal/outreach_service/transport/http"
	"github.com/DisparoLabs/disparo/internal/platform/config"
	"github.com/DisparoLabs/disparo/internal/platform/database"
	"github.com/DisparoLabs/disparo/internal/platform/logger"
)

const (
	serviceName     = "outreach_service"
	shutdownTimeout = 15 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel).With("service", serviceName)
	appLogger.Info("Starting service...",
		"log_level", cfg.LogLevel,
		"server_port", cfg.ServerPort,
		"postgres_dsn_present", cfg.PostgresDSN != "",
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	stateRepo := postgres.NewPgStateRepository(dbPool, appLogger)
	if err := stateRepo.EnsureSchema(mainCtx); err != nil {
		appLogger.Error("Failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	application := app.NewApplication(stateRepo, appLogger, cfg.CountryCode, domain.Settings{
		MessageTemplate:      cfg.DefaultMessageTemplate,
		FollowUpDelaySeconds: cfg.DefaultFollowUpDelay,
	})
	if err := application.Load(mainCtx); err != nil {
		appLogger.Error("Failed to load persisted state", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	importSvc := app.NewImportService(application, appLogger)
	exportSvc := app.NewExportService(application, appLogger)

	authHandler, err := transporthttp.NewAuthHandler(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.JWTExpiryHours, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize auth handler", "error", err)
		os.Exit(1)
	}
	contactHandler := transporthttp.NewContactHandler(application, importSvc, exportSvc, appLogger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	authHandler.RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret, appLogger))
		contactHandler.RegisterRoutes(r)
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			appLogger.Info("Shutdown signal received", "signal", sig.String())
		case <-groupCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Service exited with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Service stopped cleanly")
}
