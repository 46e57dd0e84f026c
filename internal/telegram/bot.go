// Package telegram binds the transcription gateway to Telegram. It is a thin
// adapter: it translates updates into pipeline jobs and state operations, and
// never carries pipeline logic of its own.
package telegram

import (
	"context"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/delivery"
	"github.com/voxgate/voxgate/internal/groq"
	"github.com/voxgate/voxgate/internal/media"
	"github.com/voxgate/voxgate/internal/state"
)

const updateTimeoutSeconds = 30

// Bot wraps the Telegram API and dispatches every update to its own
// goroutine so one user's long transcription never stalls the update loop.
type Bot struct {
	api        *tgbotapi.BotAPI
	cfg        config.Config
	pipeline   *media.Pipeline
	groq       *groq.Client
	store      state.Store
	deliverer  *delivery.Deliverer
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds the Bot and its Deliverer. The http client is used for media
// downloads and carries the shared request timeout.
func New(log *slog.Logger, api *tgbotapi.BotAPI, cfg config.Config, pipeline *media.Pipeline, groqClient *groq.Client, store state.Store) *Bot {
	if log == nil {
		log = slog.Default()
	}
	bot := &Bot{
		api:        api,
		cfg:        cfg,
		pipeline:   pipeline,
		groq:       groqClient,
		store:      store,
		httpClient: &http.Client{Timeout: cfg.Groq.RequestTimeout()},
		logger:     log.With(slog.String("component", "telegram")),
	}
	bot.deliverer = delivery.NewDeliverer(log, bot, store, cfg.Media.DownloadsDir)
	return bot
}

// Username returns the bot's own username, if known.
func (b *Bot) Username() string {
	if b.api == nil {
		return ""
	}
	return b.api.Self.UserName
}

// Run long-polls for updates until ctx is cancelled. Each update is handled
// on its own goroutine.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updateTimeoutSeconds
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("update loop started", slog.String("username", b.Username()))
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			// Drain so the library's polling goroutine can exit.
			for range updates {
			}
			return nil
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("updates channel closed")
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		// Edited messages, polls, and other update kinds are ignored.
	case update.Message.IsCommand():
		b.handleCommand(update.Message)
	case mediaRef(update.Message) != nil:
		b.handleMedia(ctx, update.Message)
	}
}

// SendText sends one text message, reply-chained when replyTo is set, and
// returns the sent message's identity. Implements delivery.Sender.
func (b *Bot) SendText(chatID int64, text string, replyTo int) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyTo > 0 {
		msg.ReplyToMessageID = replyTo
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendDocument sends a file as a document attachment and returns the sent
// message's identity. Implements delivery.Sender.
func (b *Bot) SendDocument(chatID int64, filePath, caption string, replyTo int) (int, error) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	doc.Caption = caption
	if replyTo > 0 {
		doc.ReplyToMessageID = replyTo
	}
	sent, err := b.api.Send(doc)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) (tgbotapi.Message, error) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	return b.api.Send(out)
}

func (b *Bot) replyWithKeyboard(msg *tgbotapi.Message, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	out.ReplyMarkup = keyboard
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("send reply failed", slog.Int64("chat_id", msg.Chat.ID), slog.Any("error", err))
	}
}

func (b *Bot) editText(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("edit message failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

func (b *Bot) editReplyMarkup(chatID int64, messageID int, keyboard tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, keyboard)
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) clearReplyMarkup(chatID int64, messageID int) {
	empty := tgbotapi.NewInlineKeyboardMarkup()
	empty.InlineKeyboard = [][]tgbotapi.InlineKeyboardButton{}
	if err := b.editReplyMarkup(chatID, messageID, empty); err != nil {
		b.logger.Debug("clear reply markup failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (b *Bot) answerCallback(callbackID, text string, alert bool) {
	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = alert
	if _, err := b.api.Request(answer); err != nil {
		b.logger.Debug("answer callback failed", slog.Any("error", err))
	}
}

func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		b.logger.Debug("send chat action failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}
