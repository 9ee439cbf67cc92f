package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/brauni/drive-canvas-importer/internal/bridge"
	"github.com/brauni/drive-canvas-importer/internal/messages"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// maxBridgeLine bounds one inbound message; import requests carry full record lists
const maxBridgeLine = 16 * 1024 * 1024

func scanCmd() *cobra.Command {
	var (
		imageTypes []string
		maxImages  int
	)

	cmd := &cobra.Command{
		Use:   "scan [folder-url]",
		Short: "List the images of a shared folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			outcome := a.bridge.Scan(cmd.Context(), messages.ScanDrive{
				URL:        args[0],
				ImageTypes: imageTypes,
				MaxImages:  maxImages,
			}, stderrProgress)
			if !outcome.Success {
				return fmt.Errorf("scan failed: %s", outcome.Error)
			}
			return writeJSON("", outcome)
		},
	}

	cmd.Flags().StringSliceVarP(&imageTypes, "types", "t", nil, "Image types to keep (e.g. png,jpg)")
	cmd.Flags().IntVarP(&maxImages, "max", "m", 0, "Maximum number of images to return")
	return cmd
}

func importCmd() *cobra.Command {
	var (
		imageTypes   []string
		maxImages    int
		variant      string
		imageSize    int
		spacing      int
		imagesPerRow int
		components   bool
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "import [folder-url]",
		Short: "Scan a shared folder and place its images on a new canvas",
		Long: `Scans the folder, imports every selected image with the chosen layout and
writes the resulting canvas as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			scanned := a.bridge.Scan(cmd.Context(), messages.ScanDrive{
				URL:        args[0],
				ImageTypes: imageTypes,
				MaxImages:  maxImages,
			}, stderrProgress)
			if !scanned.Success {
				return fmt.Errorf("scan failed: %s", scanned.Error)
			}

			req := messages.ImportImages{
				Images:           scanned.Images,
				CreateComponents: components,
				Variant:          variant,
			}
			if cmd.Flags().Changed("size") {
				req.ImageSize = &imageSize
			}
			if cmd.Flags().Changed("spacing") {
				req.Spacing = &spacing
			}
			if cmd.Flags().Changed("per-row") {
				req.ImagesPerRow = &imagesPerRow
			}

			imported := a.bridge.Import(cmd.Context(), req, stderrProgress)
			if !imported.Success {
				return fmt.Errorf("import failed: %s", imported.Error)
			}
			for _, failure := range imported.Failures {
				fmt.Fprintf(os.Stderr, "skipped %s: %s\n", failure.Name, failure.Error)
			}

			return writeJSON(outputFile, a.document.Snapshot())
		},
	}

	cmd.Flags().StringSliceVarP(&imageTypes, "types", "t", nil, "Image types to keep (e.g. png,jpg)")
	cmd.Flags().IntVarP(&maxImages, "max", "m", 0, "Maximum number of images to import")
	cmd.Flags().StringVar(&variant, "variant", "", "Layout: grid, card or slide")
	cmd.Flags().IntVar(&imageSize, "size", 0, "Grid cell size in pixels")
	cmd.Flags().IntVar(&spacing, "spacing", 0, "Grid spacing in pixels")
	cmd.Flags().IntVar(&imagesPerRow, "per-row", 0, "Grid images per row")
	cmd.Flags().BoolVar(&components, "components", false, "Wrap grid images in reusable components")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Write the canvas JSON to this file instead of stdout")
	return cmd
}

func bridgeCmd() *cobra.Command {
	var canvasOut string

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Serve UI messages as JSON lines over stdin and stdout",
		Long: `Reads one JSON message per line from stdin and writes progress, results and
errors as JSON lines to stdout. Requests run concurrently; a second scan or
import started while one is running is rejected with an error message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			if err := serveBridge(cmd.Context(), a.bridge, os.Stdin, os.Stdout, a.logger); err != nil {
				return err
			}
			if canvasOut == "" {
				return nil
			}
			return writeJSON(canvasOut, a.document.Snapshot())
		},
	}

	cmd.Flags().StringVar(&canvasOut, "canvas-out", "", "Write the canvas JSON to this file on exit")
	return cmd
}

// serveBridge dispatches every line of in and waits for the running
// requests once in is exhausted
func serveBridge(ctx context.Context, b *bridge.Bridge, in io.Reader, out io.Writer, logger *zap.Logger) error {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	encoder := json.NewEncoder(out)
	post := func(msg messages.Outbound) {
		mu.Lock()
		defer mu.Unlock()
		if err := encoder.Encode(msg); err != nil {
			logger.Error("Failed to write message", zap.Error(err))
		}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxBridgeLine)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		line := append([]byte(nil), scanner.Bytes()...)

		wg.Add(1)
		go func() {
			defer wg.Done()
			b.HandleRaw(ctx, line, post)
		}()
	}
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read messages: %w", err)
	}
	return nil
}
