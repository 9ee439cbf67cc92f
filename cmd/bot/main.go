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

	"github.com/brauni/drive-canvas-importer/internal/bot"
	"github.com/brauni/drive-canvas-importer/internal/config"
	"github.com/brauni/drive-canvas-importer/internal/downloader"
	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/brauni/drive-canvas-importer/internal/metrics"
	"github.com/brauni/drive-canvas-importer/internal/scan"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	defer cfg.Logger.Sync()

	cfg.Logger.Info("Starting Drive Canvas Importer bot")

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	client := drive.NewClient(cfg.DriveClientConfig(), cfg.Logger)
	fetcher := downloader.NewDownloader(cfg.DownloaderConfig(), cfg.Logger)
	scanner := scan.NewOrchestrator(client, m, cfg.Logger)

	botInstance, err := bot.NewBot(cfg, scanner, fetcher, m)
	if err != nil {
		cfg.Logger.Fatal("Failed to create bot instance",
			zap.Error(err))
	}

	cfg.Logger.Info("Bot created successfully",
		zap.String("bot_info", botInstance.GetBotInfo()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

		go func() {
			cfg.Logger.Info("Serving metrics", zap.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				cfg.Logger.Error("Metrics server stopped with error",
					zap.Error(err))
				cancel()
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := botInstance.Start(); err != nil {
			cfg.Logger.Error("Bot stopped with error",
				zap.Error(err))
			cancel()
		}
	}()

	select {
	case sig := <-sigChan:
		cfg.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()))
	case <-ctx.Done():
		cfg.Logger.Info("Context cancelled, shutting down")
	}

	botInstance.Stop()
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		metricsServer.Shutdown(shutdownCtx)
	}
	cfg.Logger.Info("Bot shutdown complete")
}
