package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/cenkalti/backoff/v4"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Config holds content fetch limits and the retry policy
type Config struct {
	MaxFileSizeMB int64
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Downloader retrieves the raw bytes of listed files
type Downloader struct {
	maxFileSizeMB int64
	retryAttempts int
	retryDelay    time.Duration
	httpClient    *http.Client
	logger        *zap.Logger
}

func NewDownloader(cfg Config, logger *zap.Logger) *Downloader {
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Downloader{
		maxFileSizeMB: cfg.MaxFileSizeMB,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
	}
}

func (d *Downloader) maxBytes() int64 {
	return d.maxFileSizeMB * 1024 * 1024
}

func (d *Downloader) IsFileSizeAllowed(fileSize int64) bool {
	if fileSize > d.maxBytes() {
		d.logger.Info("File size exceeds limit",
			zap.Int64("file_size", fileSize),
			zap.Int64("max_size", d.maxBytes()))
		return false
	}
	return true
}

// Fetch downloads the content of record. The declared listing size is checked
// before the request and the body is read through a bounded reader; payloads
// that do not sniff as an image are rejected.
func (d *Downloader) Fetch(ctx context.Context, record drive.FileRecord) ([]byte, error) {
	if record.DownloadURL == "" {
		return nil, drive.NewMissingReferenceError(record.ID)
	}

	if record.HasSize() && !d.IsFileSizeAllowed(int64(record.Size)) {
		return nil, drive.NewTooLargeError(int64(record.Size), d.maxBytes())
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.retryDelay
	policy.MaxElapsedTime = 0

	var data []byte
	attempt := 0
	operation := func() error {
		attempt++
		body, err := d.fetchOnce(ctx, record)
		if err != nil {
			if !drive.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			d.logger.Warn("Download attempt failed",
				zap.String("file_id", record.ID),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", d.retryAttempts),
				zap.Error(err))
			return err
		}
		data = body
		return nil
	}

	retries := backoff.WithMaxRetries(policy, uint64(d.retryAttempts-1))
	if err := backoff.Retry(operation, backoff.WithContext(retries, ctx)); err != nil {
		d.logger.Error("Failed to download file",
			zap.String("file_id", record.ID),
			zap.String("file_name", record.Name),
			zap.Error(err))
		return nil, err
	}

	d.logger.Debug("File downloaded successfully",
		zap.String("file_id", record.ID),
		zap.String("file_name", record.Name),
		zap.Int("size", len(data)))

	return data, nil
}

func (d *Downloader) fetchOnce(ctx context.Context, record drive.FileRecord) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, record.DownloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, drive.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, drive.NewTransportError(resp.StatusCode, drive.ReasonPhrase(resp))
	}

	if resp.ContentLength > 0 && !d.IsFileSizeAllowed(resp.ContentLength) {
		return nil, drive.NewTooLargeError(resp.ContentLength, d.maxBytes())
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes()+1))
	if err != nil {
		return nil, drive.NewNetworkError(err)
	}
	if int64(len(data)) > d.maxBytes() {
		return nil, drive.NewTooLargeError(int64(len(data)), d.maxBytes())
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, drive.NewUnsupportedContentError(detected.String())
	}

	return data, nil
}
