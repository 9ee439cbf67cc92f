// Package scan finds the images of a shared folder.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/brauni/drive-canvas-importer/internal/metrics"
	"go.uber.org/zap"
)

// Lister is the remote listing the orchestrator reads from
type Lister interface {
	GetFolderInfo(ctx context.Context, folderID string) *drive.FileRecord
	ListAll(ctx context.Context, folderID string) (*drive.Page, error)
}

// ProgressFunc receives a completion percentage and a status label
type ProgressFunc func(percent int, status string)

// Outcome is the result of one scan. On failure Images is empty and Error is set.
type Outcome struct {
	Success    bool               `json:"success"`
	Images     []drive.FileRecord `json:"images"`
	TotalFound int                `json:"totalFound"`
	FolderName string             `json:"folderName,omitempty"`
	Incomplete bool               `json:"incomplete,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func failure(message string) Outcome {
	return Outcome{Images: []drive.FileRecord{}, Error: message}
}

// Orchestrator runs folder scans
type Orchestrator struct {
	lister  Lister
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewOrchestrator(lister Lister, m *metrics.Metrics, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		lister:  lister,
		metrics: m,
		logger:  logger,
	}
}

// Scan lists the folder behind folderURL and returns the records matching
// imageTypes, truncated to maxResults (no cap when maxResults <= 0).
// It never returns an error: every failure is reported through the Outcome.
func (o *Orchestrator) Scan(ctx context.Context, folderURL string, imageTypes []string, maxResults int, onProgress ProgressFunc) (outcome Outcome) {
	started := time.Now()
	result := metrics.ScanError
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Scan panicked",
				zap.String("url", folderURL),
				zap.Any("panic", r))
			outcome = failure(fmt.Sprintf("unexpected error: %v", r))
			result = metrics.ScanError
		}
		o.metrics.ObserveScan(result, outcome.TotalFound, time.Since(started))
	}()

	report := func(percent int, status string) {
		if onProgress != nil {
			onProgress(percent, status)
		}
	}

	report(0, "Parsing folder URL...")
	folderID, ok := drive.ParseFolderID(folderURL)
	if !ok {
		o.logger.Info("Rejected folder URL", zap.String("url", folderURL))
		result = metrics.ScanInvalidURL
		return failure(drive.InvalidURLMessage)
	}

	report(20, "Fetching folder information...")
	folderName := ""
	if info := o.lister.GetFolderInfo(ctx, folderID); info != nil {
		folderName = info.Name
	}

	report(40, "Listing folder contents...")
	page, err := o.lister.ListAll(ctx, folderID)
	if err != nil {
		o.logger.Error("Failed to list folder",
			zap.String("folder_id", folderID),
			zap.Error(err))
		return failure(err.Error())
	}
	if page.Inaccessible {
		result = metrics.ScanInaccessible
		return failure(drive.FolderNotFoundMessage)
	}

	report(70, "Filtering images...")
	images := drive.FilterImages(page.Records, imageTypes)

	report(90, "Preparing results...")
	selected := Truncate(images, maxResults)

	o.logger.Info("Folder scanned",
		zap.String("folder_id", folderID),
		zap.String("folder_name", folderName),
		zap.Int("files", len(page.Records)),
		zap.Int("matches", len(images)),
		zap.Int("returned", len(selected)),
		zap.Bool("incomplete", page.Incomplete))

	report(100, fmt.Sprintf("Found %d images", len(images)))

	result = metrics.ScanSuccess
	return Outcome{
		Success:    true,
		Images:     selected,
		TotalFound: len(images),
		FolderName: folderName,
		Incomplete: page.Incomplete,
	}
}

// Truncate returns at most limit records, keeping their order
func Truncate(records []drive.FileRecord, limit int) []drive.FileRecord {
	if limit <= 0 || len(records) <= limit {
		return records
	}
	return records[:limit]
}
