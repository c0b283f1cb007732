package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docvault/internal/config"
	"docvault/internal/extract"
	"docvault/internal/http"
	"docvault/internal/mlservice"
	"docvault/internal/service"
	"docvault/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	fileRepo := storage.NewFileRepo(db)

	// ML service client (external collaborator behind HTTP)
	mlClient := mlservice.NewClient(cfg.MLServiceURL)
	if mlClient.IsAvailable(context.Background()) {
		slog.Info("ML service reachable", "url", cfg.MLServiceURL)
	} else {
		// Degraded but usable: uploads and keyword search work without it
		slog.Warn("ML service unreachable at startup, enrichment will degrade", "url", cfg.MLServiceURL)
	}

	documents := service.NewDocumentService(
		fileRepo,
		mlClient,
		extract.New(),
		cfg.UploadDir,
		cfg.PublicBaseURL,
	)
	slog.Info("Document service initialized", "upload_dir", cfg.UploadDir)

	// Create router with dependencies
	deps := &http.Deps{
		Documents: documents,
		Prober:    mlClient,
		UploadDir: cfg.UploadDir,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	// Shut down cleanly on SIGINT/SIGTERM, letting in-flight requests and
	// background enrichment tasks drain
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}

	// Wait for in-flight summarize/index tasks; each is bounded by its own timeout
	documents.Wait()
	slog.Info("Shutdown complete")
}
