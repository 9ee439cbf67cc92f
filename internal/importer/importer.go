// Package importer places fetched images on a canvas.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/brauni/drive-canvas-importer/internal/metrics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Fetcher retrieves the content of one file
type Fetcher interface {
	Fetch(ctx context.Context, record drive.FileRecord) ([]byte, error)
}

// ProgressFunc receives a completion percentage and a status label
type ProgressFunc func(percent int, status string)

// Placer lays out one item on the sink and returns the nodes to track.
// When Place fails it removes what it created for the item and returns nil nodes.
type Placer interface {
	Variant() Variant
	NodesPerItem() int
	Place(sink canvas.Sink, index int, record drive.FileRecord, data []byte, settings Settings) ([]canvas.NodeID, error)
	Finish(sink canvas.Sink, nodes []canvas.NodeID) error
}

// ItemFailure describes a record that could not be imported
type ItemFailure struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Outcome is the result of one import batch
type Outcome struct {
	Success       bool            `json:"success"`
	ImportedCount int             `json:"importedCount"`
	Nodes         []canvas.NodeID `json:"nodes"`
	Failures      []ItemFailure   `json:"failures,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// PlacerFor returns the placer of a variant
func PlacerFor(variant Variant) (Placer, error) {
	switch variant {
	case VariantGrid:
		return GridPlacer{}, nil
	case VariantCard:
		return CardPlacer{}, nil
	case VariantSlide:
		return SlidePlacer{}, nil
	default:
		return nil, fmt.Errorf("unknown import variant %q", variant)
	}
}

// Importer fetches records one at a time and places them on a sink.
// A failing record is skipped; it never aborts the batch.
type Importer struct {
	fetcher Fetcher
	sink    canvas.Sink
	placer  Placer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(fetcher Fetcher, sink canvas.Sink, placer Placer, m *metrics.Metrics, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		fetcher: fetcher,
		sink:    sink,
		placer:  placer,
		metrics: m,
		logger:  logger.With(zap.String("variant", string(placer.Variant()))),
	}
}

// Import places records in order. Progress is reported before each item and
// once more with a summary after the loop.
func (im *Importer) Import(ctx context.Context, records []drive.FileRecord, settings Settings, onProgress ProgressFunc) (outcome Outcome) {
	started := time.Now()
	variant := string(im.placer.Variant())
	defer func() {
		if r := recover(); r != nil {
			im.logger.Error("Import panicked", zap.Any("panic", r))
			outcome = Outcome{
				Nodes: []canvas.NodeID{},
				Error: fmt.Sprintf("unexpected error: %v", r),
			}
		}
		im.metrics.ObserveImport(variant, time.Since(started))
	}()

	report := func(percent int, status string) {
		if onProgress != nil {
			onProgress(percent, status)
		}
	}

	settings = settings.Normalized()
	total := len(records)
	created := make([]canvas.NodeID, 0, total*im.placer.NodesPerItem())
	var failures []ItemFailure
	var errs error

	for i, record := range records {
		report(i*100/total, fmt.Sprintf("Importing %s...", record.Name))

		nodes, size, err := im.importItem(ctx, i, record, settings)
		if err != nil {
			im.metrics.ObserveImportItem(variant, metrics.ItemFailed, 0)
			failures = append(failures, ItemFailure{ID: record.ID, Name: record.Name, Error: err.Error()})
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", record.Name, err))
			continue
		}

		im.metrics.ObserveImportItem(variant, metrics.ItemPlaced, size)
		created = append(created, nodes...)
	}

	if errs != nil {
		im.logger.Warn("Some images could not be imported",
			zap.Int("failed", len(failures)),
			zap.Int("requested", total),
			zap.Error(errs))
	}

	if len(created) > 0 {
		if err := im.placer.Finish(im.sink, created); err != nil {
			im.logger.Error("Failed to focus imported nodes", zap.Error(err))
			return Outcome{
				Nodes:    []canvas.NodeID{},
				Failures: failures,
				Error:    err.Error(),
			}
		}
	}

	count := len(created) / im.placer.NodesPerItem()
	im.logger.Info("Import finished",
		zap.Int("requested", total),
		zap.Int("imported", count),
		zap.Int("nodes", len(created)))

	report(100, summary(count, total))

	return Outcome{
		Success:       true,
		ImportedCount: count,
		Nodes:         created,
		Failures:      failures,
	}
}

// importItem fetches and places one record, converting a panic in the sink
// into an item error
func (im *Importer) importItem(ctx context.Context, index int, record drive.FileRecord, settings Settings) (nodes []canvas.NodeID, size int, err error) {
	defer func() {
		if r := recover(); r != nil {
			nodes, size, err = nil, 0, fmt.Errorf("placement panicked: %v", r)
		}
	}()

	data, err := im.fetcher.Fetch(ctx, record)
	if err != nil {
		return nil, 0, err
	}

	nodes, err = im.placer.Place(im.sink, index, record, data, settings)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to place image: %w", err)
	}
	return nodes, len(data), nil
}

// discard removes the nodes created for an item that could not be placed and
// returns cause together with any removal failure
func discard(sink canvas.Sink, cause error, nodes ...canvas.NodeID) error {
	err := cause
	for _, node := range nodes {
		err = multierr.Append(err, sink.Remove(node))
	}
	return err
}

func summary(count, total int) string {
	switch {
	case total == 0:
		return "No images to import"
	case count == total:
		return fmt.Sprintf("Imported %d images", count)
	default:
		return fmt.Sprintf("Imported %d of %d images", count, total)
	}
}
