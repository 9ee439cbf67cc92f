package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brauni/drive-canvas-importer/internal/bridge"
	"github.com/brauni/drive-canvas-importer/internal/downloader"
	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/brauni/drive-canvas-importer/internal/importer"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Drive       *DriveConfig
	Fetch       *FetchConfig
	Import      *ImportConfig
	Telegram    *TelegramConfig
	MetricsAddr string
	Logger      *zap.Logger
}

type DriveConfig struct {
	APIURL              string
	DownloadURLTemplate string
	PageSize            int
	MaxPages            int
	Timeout             time.Duration
}

type FetchConfig struct {
	MaxFileSizeMB int64
	RetryAttempts int
	RetryDelay    time.Duration
	Timeout       time.Duration
}

type ImportConfig struct {
	ImageTypes   []string
	MaxImages    int
	Variant      importer.Variant
	ImageSize    int
	Spacing      int
	ImagesPerRow int
}

type TelegramConfig struct {
	BotToken       string
	AllowedUserIDs []int64
}

func Load() (*Config, error) {
	// .env is optional outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	logger, err := newLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	timeoutSeconds, err := intEnv("HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	driveConfig, err := loadDriveConfig(timeout)
	if err != nil {
		return nil, err
	}

	fetchConfig, err := loadFetchConfig(timeout)
	if err != nil {
		return nil, err
	}

	importConfig, err := loadImportConfig()
	if err != nil {
		return nil, err
	}

	telegramConfig, err := loadTelegramConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Drive:       driveConfig,
		Fetch:       fetchConfig,
		Import:      importConfig,
		Telegram:    telegramConfig,
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		Logger:      logger,
	}, nil
}

// ValidateTelegram checks the settings only the bot needs
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	// Tokens look like "123456789:ABCdefGHIjklMNOpqrsTUVwxyz"
	if len(c.Telegram.BotToken) < 20 || !strings.Contains(c.Telegram.BotToken, ":") {
		return fmt.Errorf("invalid bot token format - token should be in format 'BOT_ID:BOT_TOKEN'")
	}

	if len(c.Telegram.AllowedUserIDs) == 0 {
		return fmt.Errorf("ALLOWED_USER_IDS environment variable is required")
	}
	return nil
}

func (c *Config) DriveClientConfig() drive.ClientConfig {
	return drive.ClientConfig{
		APIURL:              c.Drive.APIURL,
		DownloadURLTemplate: c.Drive.DownloadURLTemplate,
		PageSize:            c.Drive.PageSize,
		MaxPages:            c.Drive.MaxPages,
		Timeout:             c.Drive.Timeout,
	}
}

func (c *Config) DownloaderConfig() downloader.Config {
	return downloader.Config{
		MaxFileSizeMB: c.Fetch.MaxFileSizeMB,
		Timeout:       c.Fetch.Timeout,
		RetryAttempts: c.Fetch.RetryAttempts,
		RetryDelay:    c.Fetch.RetryDelay,
	}
}

func (c *Config) ImportSettings() importer.Settings {
	settings := importer.DefaultSettings()
	settings.ImageSize = c.Import.ImageSize
	settings.Spacing = c.Import.Spacing
	settings.ImagesPerRow = c.Import.ImagesPerRow
	return settings.Normalized()
}

func (c *Config) BridgeOptions() bridge.Options {
	return bridge.Options{
		ImageTypes: c.Import.ImageTypes,
		MaxImages:  c.Import.MaxImages,
		Variant:    c.Import.Variant,
		Settings:   c.ImportSettings(),
	}
}

func loadDriveConfig(timeout time.Duration) (*DriveConfig, error) {
	apiURL := os.Getenv("DRIVE_API_URL")
	if apiURL == "" {
		apiURL = drive.DefaultAPIURL
	}

	template := os.Getenv("DRIVE_DOWNLOAD_URL_TEMPLATE")
	if template == "" {
		template = drive.DefaultDownloadURLTemplate
	}
	if strings.Count(template, "%s") != 1 {
		return nil, fmt.Errorf("DRIVE_DOWNLOAD_URL_TEMPLATE must contain exactly one %%s")
	}

	pageSize, err := intEnv("DRIVE_PAGE_SIZE", drive.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 || pageSize > 1000 {
		return nil, fmt.Errorf("DRIVE_PAGE_SIZE must be between 1 and 1000")
	}

	maxPages, err := intEnv("DRIVE_MAX_PAGES", drive.DefaultMaxPages)
	if err != nil {
		return nil, err
	}
	if maxPages <= 0 {
		return nil, fmt.Errorf("DRIVE_MAX_PAGES must be positive")
	}

	return &DriveConfig{
		APIURL:              strings.TrimSuffix(apiURL, "/"),
		DownloadURLTemplate: template,
		PageSize:            pageSize,
		MaxPages:            maxPages,
		Timeout:             timeout,
	}, nil
}

func loadFetchConfig(timeout time.Duration) (*FetchConfig, error) {
	maxFileSizeMB, err := intEnv("MAX_FILE_SIZE_MB", 10)
	if err != nil {
		return nil, err
	}

	// Invalid retry settings fall back to a single attempt
	retryAttempts := 1
	if attempts, err := strconv.Atoi(os.Getenv("FETCH_RETRY_ATTEMPTS")); err == nil && attempts > 0 {
		retryAttempts = attempts
	}

	retryDelay := 500 * time.Millisecond
	if delay, err := strconv.Atoi(os.Getenv("FETCH_RETRY_DELAY_MS")); err == nil && delay > 0 {
		retryDelay = time.Duration(delay) * time.Millisecond
	}

	return &FetchConfig{
		MaxFileSizeMB: int64(maxFileSizeMB),
		RetryAttempts: retryAttempts,
		RetryDelay:    retryDelay,
		Timeout:       timeout,
	}, nil
}

func loadImportConfig() (*ImportConfig, error) {
	imageTypes := []string{"jpg", "png", "gif", "webp"}
	if raw := os.Getenv("DEFAULT_IMAGE_TYPES"); raw != "" {
		imageTypes = drive.NormalizeTypeTags(strings.Split(raw, ","))
	}

	maxImages, err := intEnv("DEFAULT_MAX_IMAGES", 50)
	if err != nil {
		return nil, err
	}

	variant, err := importer.ParseVariant(os.Getenv("IMPORT_VARIANT"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse IMPORT_VARIANT: %w", err)
	}

	defaults := importer.DefaultSettings()
	imageSize, err := intEnv("IMAGE_SIZE", defaults.ImageSize)
	if err != nil {
		return nil, err
	}
	spacing, err := intEnv("IMAGE_SPACING", defaults.Spacing)
	if err != nil {
		return nil, err
	}
	perRow, err := intEnv("IMAGES_PER_ROW", defaults.ImagesPerRow)
	if err != nil {
		return nil, err
	}

	return &ImportConfig{
		ImageTypes:   imageTypes,
		MaxImages:    maxImages,
		Variant:      variant,
		ImageSize:    imageSize,
		Spacing:      spacing,
		ImagesPerRow: perRow,
	}, nil
}

func loadTelegramConfig() (*TelegramConfig, error) {
	var allowedUserIDs []int64
	if raw := os.Getenv("ALLOWED_USER_IDS"); raw != "" {
		ids, err := parseUserIDs(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ALLOWED_USER_IDS: %w", err)
		}
		allowedUserIDs = ids
	}

	return &TelegramConfig{
		BotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		AllowedUserIDs: allowedUserIDs,
	}, nil
}

func parseUserIDs(userIDsStr string) ([]int64, error) {
	var userIDs []int64
	for _, part := range strings.Split(userIDsStr, ",") {
		userID, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID '%s': %w", part, err)
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return value, nil
}

func newLogger(level, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	return cfg.Build()
}
