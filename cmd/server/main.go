package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizway/quizway/internal/api"
	"github.com/quizway/quizway/internal/config"
	"github.com/quizway/quizway/internal/ocr"
	"github.com/quizway/quizway/internal/oracle"
	"github.com/quizway/quizway/internal/pipeline"
	"github.com/quizway/quizway/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients. All collaborators are optional: with no oracle
	// the service runs on the local fallback generator alone.
	o, err := oracle.New(ctx, oracle.Config{
		Provider: cfg.OracleProvider,
		APIKey:   cfg.OracleAPIKey,
		Model:    cfg.OracleModel,
		BaseURL:  cfg.OracleBaseURL,
	})
	if err != nil {
		log.Error("oracle setup failed", "error", err)
		os.Exit(1)
	}
	if o == nil {
		log.Warn("no oracle configured, quizzes will use local generation only")
	}

	var ocrProviders []ocr.Provider
	for i, url := range cfg.OCRProviderURLs {
		ocrProviders = append(ocrProviders, ocr.Provider{
			Name: fmt.Sprintf("ocr-%d", i+1),
			URL:  url,
		})
	}
	ocrChain := ocr.NewChain(ocrProviders, log)

	audit, err := storage.NewClient(ctx, storage.Config{
		Endpoint:        cfg.S3Endpoint,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicURL:       cfg.S3PublicURL,
	}, log)
	if err != nil {
		log.Error("audit storage setup failed", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, o, ocrChain, audit, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if o != nil {
			o.Close()
		}
	}()

	log.Info("starting quizway", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
