package bot

import (
	"context"
	"fmt"

	"github.com/brauni/drive-canvas-importer/internal/auth"
	"github.com/brauni/drive-canvas-importer/internal/bridge"
	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/config"
	"github.com/brauni/drive-canvas-importer/internal/importer"
	"github.com/brauni/drive-canvas-importer/internal/metrics"
	"github.com/brauni/drive-canvas-importer/internal/scan"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	config   *config.Config
	auth     *auth.Authenticator
	sessions *SessionManager
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewBot(cfg *config.Config, scanner *scan.Orchestrator, fetcher importer.Fetcher, m *metrics.Metrics) (*Bot, error) {
	if err := cfg.ValidateTelegram(); err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		cfg.Logger.Error("Failed to initialize Telegram bot API",
			zap.Error(err))
		return nil, fmt.Errorf("failed to initialize Telegram bot API: %w", err)
	}

	options := cfg.BridgeOptions()
	sessions := NewSessionManager(func(sink canvas.Sink) *bridge.Bridge {
		return bridge.New(scanner, fetcher, sink, options, m, cfg.Logger)
	}, cfg.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		api:      api,
		config:   cfg,
		auth:     auth.NewAuthenticator(cfg.Telegram.AllowedUserIDs, cfg.Logger),
		sessions: sessions,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start consumes updates until Stop is called. Each update is handled on its
// own goroutine so a long import does not block other chats.
func (b *Bot) Start() error {
	b.logger.Info("Starting Telegram bot",
		zap.String("bot_username", b.api.Self.UserName),
		zap.Int("allowed_users_count", b.auth.AllowedUsersCount()),
		zap.String("default_variant", string(b.config.Import.Variant)))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for update := range updates {
		switch {
		case update.Message != nil:
			go b.handleMessage(update.Message)
		case update.CallbackQuery != nil:
			go b.handleCallback(update.CallbackQuery)
		}
	}

	return nil
}

func (b *Bot) Stop() {
	b.logger.Info("Stopping Telegram bot")
	b.cancel()
	b.api.StopReceivingUpdates()
}

func (b *Bot) GetBotInfo() string {
	return fmt.Sprintf("Bot: %s (@%s)", b.api.Self.FirstName, b.api.Self.UserName)
}
