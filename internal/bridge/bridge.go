// Package bridge connects UI messages to the scan and import workflows.
package bridge

import (
	"context"
	"sync/atomic"

	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/importer"
	"github.com/brauni/drive-canvas-importer/internal/messages"
	"github.com/brauni/drive-canvas-importer/internal/metrics"
	"github.com/brauni/drive-canvas-importer/internal/scan"
	"go.uber.org/zap"
)

const (
	ScanBusyMessage   = "A scan is already in progress"
	ImportBusyMessage = "An import is already in progress"
)

// Poster delivers an outbound message to the UI layer
type Poster func(msg messages.Outbound)

// Options holds the values used when a request leaves a field unset
type Options struct {
	ImageTypes []string
	MaxImages  int
	Variant    importer.Variant
	Settings   importer.Settings
}

// Bridge dispatches UI requests for a single canvas. At most one scan and
// one import run at a time; an overlapping request is answered with an error.
type Bridge struct {
	scanner *scan.Orchestrator
	fetcher importer.Fetcher
	sink    canvas.Sink
	options Options
	metrics *metrics.Metrics
	logger  *zap.Logger

	scanning  atomic.Bool
	importing atomic.Bool
}

func New(scanner *scan.Orchestrator, fetcher importer.Fetcher, sink canvas.Sink, options Options, m *metrics.Metrics, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Variant == "" {
		options.Variant = importer.VariantGrid
	}
	return &Bridge{
		scanner: scanner,
		fetcher: fetcher,
		sink:    sink,
		options: options,
		metrics: m,
		logger:  logger,
	}
}

// HandleRaw decodes one message and dispatches it. Decoding failures are
// reported through post.
func (b *Bridge) HandleRaw(ctx context.Context, data []byte, post Poster) {
	msg, err := messages.DecodeInbound(data)
	if err != nil {
		b.logger.Warn("Rejected UI message", zap.Error(err))
		post(messages.NewError(err.Error()))
		return
	}
	b.Handle(ctx, msg, post)
}

// Handle runs the workflow selected by msg and blocks until it finishes
func (b *Bridge) Handle(ctx context.Context, msg messages.Inbound, post Poster) {
	switch {
	case msg.ScanDrive != nil:
		b.Scan(ctx, *msg.ScanDrive, post)
	case msg.ImportImages != nil:
		b.Import(ctx, *msg.ImportImages, post)
	default:
		post(messages.NewError("unsupported message type " + msg.Type))
	}
}

// Scan runs a folder scan and posts its progress and result
func (b *Bridge) Scan(ctx context.Context, req messages.ScanDrive, post Poster) scan.Outcome {
	if !b.scanning.CompareAndSwap(false, true) {
		post(messages.NewError(ScanBusyMessage))
		return scan.Outcome{Error: ScanBusyMessage}
	}
	defer b.scanning.Store(false)

	imageTypes := req.ImageTypes
	if len(imageTypes) == 0 {
		imageTypes = b.options.ImageTypes
	}
	maxImages := req.MaxImages
	if maxImages == 0 {
		maxImages = b.options.MaxImages
	}

	b.logger.Info("Scan requested",
		zap.String("url", req.URL),
		zap.Strings("image_types", imageTypes),
		zap.Int("max_images", maxImages))

	outcome := b.scanner.Scan(ctx, req.URL, imageTypes, maxImages, func(percent int, status string) {
		post(messages.NewScanProgress(percent, status))
	})
	if !outcome.Success {
		post(messages.NewError(outcome.Error))
		return outcome
	}

	post(messages.NewScanComplete(outcome.Images, outcome.TotalFound, outcome.FolderName))
	return outcome
}

// Importing reports whether an import is running on this bridge
func (b *Bridge) Importing() bool {
	return b.importing.Load()
}

// Import places the requested records on the bridge's canvas and posts the
// progress and result
func (b *Bridge) Import(ctx context.Context, req messages.ImportImages, post Poster) importer.Outcome {
	if !b.importing.CompareAndSwap(false, true) {
		post(messages.NewError(ImportBusyMessage))
		return importer.Outcome{Error: ImportBusyMessage}
	}
	defer b.importing.Store(false)

	variant := b.options.Variant
	if req.Variant != "" {
		parsed, err := importer.ParseVariant(req.Variant)
		if err != nil {
			post(messages.NewError(err.Error()))
			return importer.Outcome{Error: err.Error()}
		}
		variant = parsed
	}

	placer, err := importer.PlacerFor(variant)
	if err != nil {
		post(messages.NewError(err.Error()))
		return importer.Outcome{Error: err.Error()}
	}

	settings := b.Settings(req)
	b.logger.Info("Import requested",
		zap.String("variant", string(variant)),
		zap.Int("images", len(req.Images)),
		zap.Bool("create_components", settings.CreateComponents))

	outcome := importer.New(b.fetcher, b.sink, placer, b.metrics, b.logger).
		Import(ctx, req.Images, settings, func(percent int, status string) {
			post(messages.NewImportProgress(percent, status))
		})
	if !outcome.Success {
		post(messages.NewError(outcome.Error))
		return outcome
	}

	post(messages.NewImportComplete(outcome.ImportedCount, len(outcome.Failures)))
	return outcome
}

// Settings overlays the fields set in req on the default layout
func (b *Bridge) Settings(req messages.ImportImages) importer.Settings {
	settings := b.options.Settings
	settings.CreateComponents = req.CreateComponents
	if req.ImageSize != nil {
		settings.ImageSize = *req.ImageSize
	}
	if req.Spacing != nil {
		settings.Spacing = *req.Spacing
	}
	if req.ImagesPerRow != nil {
		settings.ImagesPerRow = *req.ImagesPerRow
	}
	return settings.Normalized()
}
