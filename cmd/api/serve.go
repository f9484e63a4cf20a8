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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pkordes/daylog/internal/ai"
	"github.com/pkordes/daylog/internal/handler"
	"github.com/pkordes/daylog/internal/metrics"
	"github.com/pkordes/daylog/internal/middleware"
	"github.com/pkordes/daylog/internal/repo"
	"github.com/pkordes/daylog/internal/service"
	"github.com/pkordes/daylog/spec"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	// --- Database ---------------------------------------------------------
	// pgxpool.New does not open connections; Ping proves the DB is reachable
	// before any traffic is accepted.
	ctx := cmd.Context()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	if cfg.AutoMigrate {
		if err := migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	// --- Services ---------------------------------------------------------
	m := metrics.New(prometheus.NewRegistry())
	collaborator := ai.NewClient(ai.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
	}, &http.Client{})
	if cfg.AI.APIKey == "" {
		logger.Warn("AI_API_KEY not set; categorization and audits will report unavailable")
	}

	tx := repo.NewTransactor(pool)
	entries := repo.NewEntryRepo(pool)

	entrySvc := service.NewEntryService(tx, entries, logger, m)
	srv := handler.NewServer(handler.Services{
		Entries:    entrySvc,
		Categories: service.NewCategoryService(entrySvc, tx, entries, collaborator, cfg.AI.Timeout, logger, m),
		History:    service.NewHistoryService(entrySvc, entries, logger, m),
		Audit: service.NewAuditService(service.NewCooldown(service.AuditCooldown), entrySvc,
			repo.NewFeedbackRepo(pool), collaborator, cfg.AI.Timeout, logger, m),
		Notes:    service.NewNoteService(tx),
		Feedback: service.NewFeedbackService(tx),
		Export:   service.NewExportService(entrySvc, entries, logger, m),
	}, logger)

	// --- Router -----------------------------------------------------------
	// RequestID tags each request, RealIP trusts X-Forwarded-For behind a
	// proxy, SlogLogger writes one JSON line per request and Recoverer turns
	// panics into a 500.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", m.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})
	r.Mount("/", handler.Handler(srv))

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout leaves room for a collaborator call that runs to its
	// own timeout.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
