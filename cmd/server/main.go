package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/writingstuff/internal/api"
	"github.com/dgallion1/writingstuff/internal/config"
	"github.com/dgallion1/writingstuff/internal/filestore"
	"github.com/dgallion1/writingstuff/internal/ingest"
	"github.com/dgallion1/writingstuff/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage.
	db, err := store.Open(ctx, cfg.DatabaseURL, cfg.DatabaseDebug)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		log.Error("migrate database", "error", err)
		os.Exit(1)
	}

	svc := ingest.NewService(db, filestore.Local{Root: cfg.UploadDir}, ingest.NewStats(cfg.StatsWindow), log, cfg.MaxConcurrentIngest)

	// Initialize HTTP server.
	srv := api.NewServer(db, svc, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		db.Close()
	}()

	log.Info("starting writingstuff", "port", cfg.Port, "upload_dir", cfg.UploadDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
