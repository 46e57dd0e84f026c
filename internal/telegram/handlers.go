package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/voxgate/voxgate/internal/media"
	"github.com/voxgate/voxgate/internal/state"
)

const (
	// summarizeMinChars is the transcript length above which the summarize
	// button is offered.
	summarizeMinChars = 1000

	apologyText  = "😓"
	tooLargeText = "Just send me a file less than %dMB 😎"
	expiredText  = "Data not found (expired). Resend file."

	welcomeText = "👋 Salaam!\n" +
		"• Send me\n" +
		"• voice message\n" +
		"• audio file\n" +
		"• video\n" +
		"• to transcribe for free\n\n" +
		"Select the language spoken in your audio or video:"
)

// mediaRef extracts the transcribable attachment from a message, preferring
// voice over audio over video over document.
type mediaAttachment struct {
	FileID   string
	FileSize int64
}

func mediaRef(msg *tgbotapi.Message) *mediaAttachment {
	switch {
	case msg.Voice != nil:
		return &mediaAttachment{FileID: msg.Voice.FileID, FileSize: int64(msg.Voice.FileSize)}
	case msg.Audio != nil:
		return &mediaAttachment{FileID: msg.Audio.FileID, FileSize: int64(msg.Audio.FileSize)}
	case msg.Video != nil:
		return &mediaAttachment{FileID: msg.Video.FileID, FileSize: int64(msg.Video.FileSize)}
	case msg.Document != nil:
		return &mediaAttachment{FileID: msg.Document.FileID, FileSize: int64(msg.Document.FileSize)}
	default:
		return nil
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	if !b.ensureJoined(msg.From.ID, msg) {
		return
	}
	switch msg.Command() {
	case "start":
		b.replyWithKeyboard(msg, welcomeText, buildLanguageKeyboard("file"))
	case "lang":
		b.replyWithKeyboard(msg, "Select the language spoken in your audio or video:", buildLanguageKeyboard("file"))
	case "mode":
		b.replyWithKeyboard(msg, "How do I send you long transcripts?:", buildModeKeyboard())
	}
}

func (b *Bot) handleMedia(ctx context.Context, msg *tgbotapi.Message) {
	if !b.ensureJoined(msg.From.ID, msg) {
		return
	}
	attachment := mediaRef(msg)
	if attachment == nil {
		return
	}
	log := b.logger.With(
		slog.Int64("chat_id", msg.Chat.ID),
		slog.Int("message_id", msg.MessageID))

	b.forwardToAdmin(msg)

	if attachment.FileSize > b.cfg.Media.MaxUploadBytes() {
		if _, err := b.reply(msg, fmt.Sprintf(tooLargeText, b.cfg.Media.MaxUploadMB)); err != nil {
			log.Warn("send size warning failed", slog.Any("error", err))
		}
		return
	}

	status, err := b.reply(msg, "Downloading your file...")
	if err != nil {
		log.Error("send status message failed", slog.Any("error", err))
		return
	}

	text, err := b.transcribeAttachment(ctx, attachment, msg.Chat.ID, func() {
		b.editText(msg.Chat.ID, status.MessageID, "Processing...")
	})
	if err != nil {
		log.Error("media job failed", slog.Any("error", err))
		if _, err := b.reply(msg, apologyText); err != nil {
			log.Warn("send apology failed", slog.Any("error", err))
		}
		_ = b.deleteMessage(msg.Chat.ID, status.MessageID)
		return
	}

	b.editText(msg.Chat.ID, status.MessageID, "Completed 😍")
	time.Sleep(time.Second)
	if err := b.deleteMessage(msg.Chat.ID, status.MessageID); err != nil {
		log.Debug("delete status message failed", slog.Any("error", err))
	}

	sentID, err := b.deliverer.Deliver(msg.Chat.ID, text, msg.MessageID, msg.From.ID, "Transcript")
	if err != nil {
		log.Error("deliver transcript failed", slog.Any("error", err))
		if _, err := b.reply(msg, apologyText); err != nil {
			log.Warn("send apology failed", slog.Any("error", err))
		}
		return
	}
	b.store.PutTranscript(msg.Chat.ID, sentID, state.TranscriptRecord{
		Text:            text,
		OriginMessageID: msg.MessageID,
	})
	log.Info("transcript delivered",
		slog.Int("anchor_message_id", sentID),
		slog.Int("chars", len(text)))

	if len(text) > summarizeMinChars {
		if err := b.editReplyMarkup(msg.Chat.ID, sentID, buildSummarizeMenuKeyboard()); err != nil {
			log.Debug("attach summarize keyboard failed", slog.Any("error", err))
		}
	}
}

// transcribeAttachment downloads the attachment into the downloads dir, runs
// the pipeline, and removes the raw file on every exit path. The pipeline
// owns every artifact it derives from the raw file. onDownloaded fires once
// the raw file is on disk, before transcription starts.
func (b *Bot) transcribeAttachment(ctx context.Context, attachment *mediaAttachment, chatID int64, onDownloaded func()) (string, error) {
	url, err := b.api.GetFileDirectURL(attachment.FileID)
	if err != nil {
		return "", fmt.Errorf("resolve file url: %w", err)
	}
	rawPath := filepath.Join(b.cfg.Media.DownloadsDir, uuid.NewString())
	defer b.removeQuiet(rawPath)

	if err := media.Download(ctx, b.httpClient, url, rawPath, b.cfg.Media.MaxUploadBytes()); err != nil {
		return "", err
	}
	if onDownloaded != nil {
		onDownloaded()
	}
	return b.pipeline.Process(ctx, media.Job{
		InputPath: rawPath,
		Language:  b.store.Language(chatID),
	})
}

func (b *Bot) handleCallback(ctx context.Context, call *tgbotapi.CallbackQuery) {
	payload, ok := parseCallbackData(call.Data)
	if !ok || call.Message == nil {
		return
	}
	switch payload.action {
	case "mode":
		b.handleModeCallback(call, payload)
	case "lang":
		b.handleLanguageCallback(call, payload)
	case "summarize_menu":
		b.handleSummarizeMenuCallback(call)
	case "summopt":
		b.handleSummarizeOptionCallback(ctx, call, payload)
	}
}

func (b *Bot) handleModeCallback(call *tgbotapi.CallbackQuery, payload callbackPayload) {
	if !b.ensureJoined(call.From.ID, call.Message) {
		return
	}
	if len(payload.args) < 1 {
		return
	}
	mode := state.ParseDeliveryMode(payload.args[0])
	b.store.SetMode(call.From.ID, mode)
	b.editText(call.Message.Chat.ID, call.Message.MessageID, fmt.Sprintf("you choosed: %s", mode))
	b.answerCallback(call.ID, fmt.Sprintf("Mode set to: %s ☑️", mode), false)
}

func (b *Bot) handleLanguageCallback(call *tgbotapi.CallbackQuery, payload callbackPayload) {
	if len(payload.args) < 2 {
		return
	}
	code, label := payload.args[0], payload.args[1]
	if err := b.deleteMessage(call.Message.Chat.ID, call.Message.MessageID); err != nil {
		b.clearReplyMarkup(call.Message.Chat.ID, call.Message.MessageID)
	}
	b.store.SetLanguage(call.Message.Chat.ID, code)
	b.answerCallback(call.ID, fmt.Sprintf("you set: %s ☑️", label), false)
}

func (b *Bot) handleSummarizeMenuCallback(call *tgbotapi.CallbackQuery) {
	keyboard := buildSummarizeKeyboard(call.Message.MessageID)
	if err := b.editReplyMarkup(call.Message.Chat.ID, call.Message.MessageID, keyboard); err != nil {
		b.answerCallback(call.ID, "Opening summarize options...", false)
	}
}

func (b *Bot) handleSummarizeOptionCallback(ctx context.Context, call *tgbotapi.CallbackQuery, payload callbackPayload) {
	if len(payload.args) < 2 {
		b.answerCallback(call.ID, "Invalid option", true)
		return
	}
	style, origin := payload.args[0], payload.args[1]
	b.clearReplyMarkup(call.Message.Chat.ID, call.Message.MessageID)

	chatID := call.Message.Chat.ID
	originID, err := strconv.Atoi(origin)
	if err != nil {
		originID = call.Message.MessageID
	}
	rec, found := b.store.Transcript(chatID, originID)
	if !found && call.Message.ReplyToMessage != nil {
		rec, found = b.store.Transcript(chatID, call.Message.ReplyToMessage.MessageID)
	}
	if !found {
		b.answerCallback(call.ID, expiredText, true)
		return
	}

	b.answerCallback(call.ID, "Processing...", false)
	b.sendTyping(chatID)

	label := fmt.Sprintf("Summarize (%s)", style)
	summary, err := b.groq.Complete(ctx, rec.Text, summaryInstruction(style))
	if err != nil {
		b.logger.Error("summarize failed",
			slog.Int64("chat_id", chatID),
			slog.String("style", style),
			slog.Any("error", err))
		if _, err := b.SendText(chatID, apologyText, 0); err != nil {
			b.logger.Warn("send apology failed", slog.Any("error", err))
		}
		return
	}
	if _, err := b.deliverer.Deliver(chatID, summary, rec.OriginMessageID, call.From.ID, label); err != nil {
		b.logger.Error("deliver summary failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		if _, err := b.SendText(chatID, apologyText, 0); err != nil {
			b.logger.Warn("send apology failed", slog.Any("error", err))
		}
	}
}

// summaryInstruction maps a summarize style to its system instruction.
// Unknown styles get the bulleted variant.
func summaryInstruction(style string) string {
	switch style {
	case "Short":
		return "Summarize this text in the original language in 1-2 concise sentences. No extra text — return only the summary."
	case "Detailed":
		return "Summarize this text in the original language in a detailed paragraph preserving key points. No extra text — return only the summary."
	default:
		return "Summarize this text in the original language as a bulleted list of main points. No extra text — return only the summary."
	}
}

func (b *Bot) forwardToAdmin(msg *tgbotapi.Message) {
	if b.cfg.Telegram.AdminChatID == 0 {
		return
	}
	forward := tgbotapi.NewForward(b.cfg.Telegram.AdminChatID, msg.Chat.ID, msg.MessageID)
	if _, err := b.api.Send(forward); err != nil {
		b.logger.Debug("forward to admin failed", slog.Any("error", err))
	}
}

func (b *Bot) removeQuiet(path string) {
	if err := removeFile(path); err != nil {
		b.logger.Warn("remove temp file failed", slog.String("path", path), slog.Any("error", err))
	}
}
