package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brauni/drive-canvas-importer/internal/bridge"
	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/config"
	"github.com/brauni/drive-canvas-importer/internal/downloader"
	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/brauni/drive-canvas-importer/internal/messages"
	"github.com/brauni/drive-canvas-importer/internal/scan"
	"go.uber.org/zap"
)

// app wires the configured components around one canvas document
type app struct {
	cfg      *config.Config
	document *canvas.Document
	bridge   *bridge.Bridge
	logger   *zap.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client := drive.NewClient(cfg.DriveClientConfig(), cfg.Logger)
	fetcher := downloader.NewDownloader(cfg.DownloaderConfig(), cfg.Logger)
	scanner := scan.NewOrchestrator(client, nil, cfg.Logger)
	document := canvas.NewDocument()

	return &app{
		cfg:      cfg,
		document: document,
		bridge:   bridge.New(scanner, fetcher, document, cfg.BridgeOptions(), nil, cfg.Logger),
		logger:   cfg.Logger,
	}, nil
}

// stderrProgress prints progress messages for interactive use
func stderrProgress(msg messages.Outbound) {
	switch m := msg.(type) {
	case messages.Progress:
		fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", m.Progress, m.Status)
	case messages.Error:
		fmt.Fprintf(os.Stderr, "error: %s\n", m.Message)
	}
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty
func writeJSON(path string, v any) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
