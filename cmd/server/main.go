package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/msgexport/internal/api"
	"github.com/dgallion1/msgexport/internal/config"
	"github.com/dgallion1/msgexport/internal/pipeline"
	"github.com/dgallion1/msgexport/internal/save"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var saver save.Saver
	if cfg.UploadURL != "" {
		saver = save.NewHTTPSaver(cfg.UploadURL, cfg.UploadAPIKey)
	} else {
		dir, err := save.NewDirSaver(cfg.OutputDir)
		if err != nil {
			log.Error("output directory unavailable", "error", err)
			os.Exit(1)
		}
		saver = dir
	}

	orch := pipeline.NewOrchestrator(cfg, saver, log)
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
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
	}()

	log.Info("starting msgexport", "port", cfg.Port, "output_dir", cfg.OutputDir, "upload_url", cfg.UploadURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
