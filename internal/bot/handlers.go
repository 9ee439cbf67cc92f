package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brauni/drive-canvas-importer/internal/bridge"
	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/brauni/drive-canvas-importer/internal/importer"
	"github.com/brauni/drive-canvas-importer/internal/messages"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	scanTimeout   = 2 * time.Minute
	importTimeout = 10 * time.Minute
)

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := message.From.ID
	b.logger.Debug("Received message",
		zap.Int64("user_id", userID),
		zap.String("username", message.From.UserName))

	if !b.auth.IsUserAllowed(userID) {
		b.sendUnauthorizedMessage(message.Chat.ID)
		return
	}

	if message.Text == "" {
		b.sendUnsupportedMessage(message.Chat.ID)
		return
	}

	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	// A bare folder link is scanned with the default filters
	text := strings.TrimSpace(message.Text)
	if _, ok := drive.ParseFolderID(text); ok {
		b.handleScanCommand(message.Chat.ID, text)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID,
		"👋 Send me a link to a shared folder and I'll find its images!\n\nUse /help for more information.")
	b.api.Send(msg)
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := message.CommandArguments()

	switch message.Command() {
	case "start", "help":
		b.sendHelpMessage(chatID)
	case "status":
		b.sendStatusMessage(chatID)
	case "scan":
		b.handleScanCommand(chatID, args)
	case "import":
		b.handleImportCommand(chatID, args)
	case "canvas":
		b.sendCanvas(chatID)
	case "reset":
		b.sessions.Reset(chatID)
		b.api.Send(tgbotapi.NewMessage(chatID, "🧹 Canvas cleared."))
	default:
		b.sendErrorMessage(chatID, fmt.Sprintf("Unknown command /%s. Use /help for the list of commands.", message.Command()))
	}
}

func (b *Bot) handleScanCommand(chatID int64, args string) {
	req, err := parseScanArgs(args)
	if err != nil {
		b.sendErrorMessage(chatID, err.Error())
		return
	}

	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, "🔍 Scanning folder..."))
	if err != nil {
		b.logger.Error("Failed to send scan status",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, scanTimeout)
	defer cancel()

	session := b.sessions.Get(chatID)
	outcome := session.Bridge().Scan(ctx, req, b.progressPoster(chatID, sent.MessageID, "🔍"))
	if !outcome.Success {
		b.editMessage(chatID, sent.MessageID, fmt.Sprintf("❌ Scan failed: %s", outcome.Error))
		return
	}

	if len(outcome.Images) == 0 {
		b.sessions.ClearPending(chatID)
		b.editMessage(chatID, sent.MessageID, scanSummary(outcome))
		return
	}

	b.sessions.SetPending(chatID, outcome.Images, outcome.FolderName)

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, sent.MessageID, scanSummary(outcome), variantKeyboard())
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("Failed to show scan result",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// handleImportCommand imports the pending records without the keyboard,
// using the variant named in args or the configured default
func (b *Bot) handleImportCommand(chatID int64, args string) {
	variant := b.config.Import.Variant
	if name := strings.TrimSpace(args); name != "" {
		parsed, err := importer.ParseVariant(name)
		if err != nil {
			b.sendErrorMessage(chatID, err.Error())
			return
		}
		variant = parsed
	}

	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, "📥 Preparing import..."))
	if err != nil {
		b.logger.Error("Failed to send import status",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}
	if outcome, ran := b.runImport(chatID, sent.MessageID, variant, false); ran && importBusy(outcome) {
		b.editMessage(chatID, sent.MessageID, "⏳ "+bridge.ImportBusyMessage)
	}
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.From == nil {
		return
	}
	if !b.auth.IsUserAllowed(callback.From.ID) {
		b.api.Request(tgbotapi.NewCallback(callback.ID, "Not authorized"))
		return
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	if callback.Data == callbackCancel {
		b.api.Request(tgbotapi.NewCallback(callback.ID, "Import cancelled"))
		b.sessions.ClearPending(chatID)
		b.editMessage(chatID, messageID, "❌ Import cancelled")
		return
	}

	variant, components, err := parseImportCallback(callback.Data)
	if err != nil {
		b.logger.Warn("Unexpected callback",
			zap.String("data", callback.Data),
			zap.Error(err))
		b.api.Request(tgbotapi.NewCallback(callback.ID, "Unknown action"))
		return
	}

	// the keyboard message belongs to the running import
	if b.sessions.Get(chatID).Bridge().Importing() {
		b.api.Request(tgbotapi.NewCallback(callback.ID, bridge.ImportBusyMessage))
		return
	}

	b.api.Request(tgbotapi.NewCallback(callback.ID, fmt.Sprintf("Importing as %s...", variant)))
	b.runImport(chatID, messageID, variant, components)
}

// runImport imports the pending records and renders the result into
// messageID. It reports false when there was nothing to import. A rejected
// overlapping import leaves messageID untouched.
func (b *Bot) runImport(chatID int64, messageID int, variant importer.Variant, components bool) (importer.Outcome, bool) {
	records, folderName := b.sessions.Pending(chatID)
	if len(records) == 0 {
		b.editMessage(chatID, messageID, "📂 Nothing to import. Use /scan <folder url> first.")
		return importer.Outcome{}, false
	}

	b.logger.Info("Importing scan results",
		zap.Int64("chat_id", chatID),
		zap.String("folder_name", folderName),
		zap.String("variant", string(variant)),
		zap.Int("records", len(records)))

	ctx, cancel := context.WithTimeout(b.ctx, importTimeout)
	defer cancel()

	session := b.sessions.Get(chatID)
	outcome := session.Bridge().Import(ctx, messages.ImportImages{
		Images:           records,
		CreateComponents: components,
		Variant:          string(variant),
	}, b.progressPoster(chatID, messageID, "📥"))

	if importBusy(outcome) {
		b.logger.Info("Import rejected, another import is running",
			zap.Int64("chat_id", chatID))
		return outcome, true
	}

	b.editMessage(chatID, messageID, importSummary(variant, len(records), outcome))
	if !outcome.Success {
		return outcome, true
	}

	b.sessions.ClearPending(chatID)
	b.sendCanvas(chatID)
	return outcome, true
}

// progressPoster renders bridge messages as edits of one status message.
// Final results are rendered by the caller from the returned outcome.
func (b *Bot) progressPoster(chatID int64, messageID int, icon string) func(messages.Outbound) {
	return func(msg messages.Outbound) {
		switch m := msg.(type) {
		case messages.Progress:
			b.editMessage(chatID, messageID, renderProgress(icon, m))
		case messages.Error:
			b.logger.Debug("Bridge reported error",
				zap.Int64("chat_id", chatID),
				zap.String("message", m.Message))
		}
	}
}

func (b *Bot) sendCanvas(chatID int64) {
	document := b.sessions.Get(chatID).Document()
	snapshot := document.Snapshot()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		b.logger.Error("Failed to encode canvas",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendErrorMessage(chatID, "Failed to export canvas")
		return
	}

	upload := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "canvas.json", Bytes: data})
	upload.Caption = canvasSummary(snapshot)
	if _, err := b.api.Send(upload); err != nil {
		b.logger.Error("Failed to send canvas",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Debug("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
	}
}

func variantKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🖼 Grid", importCallback(importer.VariantGrid, false)),
			tgbotapi.NewInlineKeyboardButtonData("🧩 Grid + components", importCallback(importer.VariantGrid, true)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗒 Cards", importCallback(importer.VariantCard, false)),
			tgbotapi.NewInlineKeyboardButtonData("📽 Slides", importCallback(importer.VariantSlide, false)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel),
		),
	)
}

func (b *Bot) sendUnauthorizedMessage(chatID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"🚫 You are not authorized to use this bot.")
	b.api.Send(msg)
}

func (b *Bot) sendErrorMessage(chatID int64, errorMsg string) {
	msg := tgbotapi.NewMessage(chatID,
		fmt.Sprintf("❌ Error: %s", errorMsg))
	b.api.Send(msg)
}

func (b *Bot) sendUnsupportedMessage(chatID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"❓ Unsupported message type. Please send a shared folder link or a command.")
	b.api.Send(msg)
}

func (b *Bot) sendHelpMessage(chatID int64) {
	helpText := fmt.Sprintf(`🤖 *Drive Canvas Importer*

I scan publicly shared folders for images and lay them out on a canvas.

*Commands:*
/start or /help - Show this help message
/status - Show bot status and settings
/scan <url> [types] [max] - Scan a folder, e.g. /scan <url> png,jpg 20
/import [grid|card|slide] - Import the last scan results
/canvas - Download the current canvas as JSON
/reset - Clear the canvas

*Default image types:* %s
*Default max images:* %d
*Max file size:* %d MB

You can also just paste a folder link.`,
		strings.Join(b.config.Import.ImageTypes, ", "),
		b.config.Import.MaxImages,
		b.config.Fetch.MaxFileSizeMB)

	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) sendStatusMessage(chatID int64) {
	settings := b.config.ImportSettings()
	statusText := fmt.Sprintf(`📊 *Bot Status*

📋 Allowed users: %d
💬 Active sessions: %d
🧭 Default layout: %s
📐 Grid: %dpx images, %dpx spacing, %d per row
📏 Max file size: %d MB
🔁 Fetch attempts: %d`,
		b.auth.AllowedUsersCount(),
		b.sessions.Count(),
		b.config.Import.Variant,
		settings.ImageSize, settings.Spacing, settings.ImagesPerRow,
		b.config.Fetch.MaxFileSizeMB,
		b.config.Fetch.RetryAttempts)

	statusText += "\n\n" + canvasSummary(b.sessions.Get(chatID).Document().Snapshot())

	msg := tgbotapi.NewMessage(chatID, statusText)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}
