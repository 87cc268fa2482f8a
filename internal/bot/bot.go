package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/datadonation/internal/flow"
	"github.com/xaenox/datadonation/internal/storage"
	"go.uber.org/zap"
)

// api is the part of *tgbotapi.BotAPI the handlers use.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// ScriptFactory builds the donation script for a new session.
type ScriptFactory func(sessionID string) *flow.Script

type Config struct {
	Token       string
	DownloadDir string
	Locale      string
}

type Bot struct {
	bot         *tgbotapi.BotAPI
	api         api
	http        *http.Client
	storage     storage.Storage
	newScript   ScriptFactory
	downloadDir string
	locale      string
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*chatSession
}

func New(cfg Config, storage storage.Storage, newScript ScriptFactory, logger *zap.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := newBot(botAPI, cfg, storage, newScript, logger)
	b.bot = botAPI
	return b, nil
}

func newBot(client api, cfg Config, storage storage.Storage, newScript ScriptFactory, logger *zap.Logger) *Bot {
	locale := cfg.Locale
	if locale == "" {
		locale = "en"
	}
	return &Bot{
		api:         client,
		http:        &http.Client{Timeout: 2 * time.Minute},
		storage:     storage,
		newScript:   newScript,
		downloadDir: cfg.DownloadDir,
		locale:      locale,
		logger:      logger,
		sessions:    make(map[int64]*chatSession),
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.logger.Info("bot started", zap.String("username", b.bot.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			switch {
			case update.Message != nil:
				go b.handleMessage(ctx, update.Message)
			case update.CallbackQuery != nil:
				go b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if message.Document != nil {
		b.handleDocument(ctx, chatID, message.Document)
		return
	}

	b.sendMessage(chatID, "Send /start to donate your TikTok data, or /help for more information.")
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.startSession(ctx, chatID)
	case "cancel":
		if !b.answer(ctx, chatID, cancelAnswer) {
			b.sendMessage(chatID, "There is nothing to cancel.")
		}
	case "help":
		b.handleHelp(chatID)
	default:
		b.sendMessage(chatID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleHelp(chatID int64) {
	help := `Available commands:
/start - Start a data donation
/cancel - Skip the current step
/help - Show this help message

Download your data from TikTok in JSON format and send the file (zip or json) as a document when asked.
Only aggregated tables are derived from it. You review every table before anything is donated.`

	b.sendMessage(chatID, help)
}

func (b *Bot) handleDocument(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	sess := b.session(chatID)
	if sess == nil || !sess.awaitingFile() {
		b.sendMessage(chatID, "I was not expecting a file. Send /start to begin a donation.")
		return
	}

	path, err := b.download(ctx, doc)
	if err != nil {
		b.logger.Error("Failed to download document",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("file_name", doc.FileName))
		b.sendErrorMessage(chatID, "Sorry, I couldn't download your file. Please send it again.")
		return
	}
	defer b.removeFile(path)

	b.answer(ctx, chatID, fileAnswer(path))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	answer, ok := parseCallback(cb.Data)
	if !ok {
		b.logger.Warn("Unknown callback data", zap.String("data", cb.Data), zap.Int64("chat_id", chatID))
		return
	}

	if answer.toggle != "" {
		b.toggleTable(chatID, cb.Message.MessageID, answer.toggle)
		return
	}
	if !b.answer(ctx, chatID, answer) {
		b.sendMessage(chatID, "This question has expired. Send /start to begin a new donation.")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
