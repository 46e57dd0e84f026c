package telegram

import (
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// memberStatuses are the chat-member statuses that count as joined.
var memberStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

// ensureJoined enforces the optional required-channel gate for userID. When
// the user is not a member, a join prompt is sent as a reply to msg and the
// caller must stop handling the event. An empty RequiredChannel disables the
// gate.
func (b *Bot) ensureJoined(userID int64, msg *tgbotapi.Message) bool {
	channel := b.cfg.Telegram.RequiredChannel
	if channel == "" {
		return true
	}
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channel,
			UserID:             userID,
		},
	})
	if err != nil {
		b.logger.Warn("membership check failed",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
	} else if memberStatuses[member.Status] {
		return true
	}

	b.replyWithKeyboard(msg, "First, join my channel and come back 👍", buildJoinKeyboard(channel))
	return false
}

func buildJoinKeyboard(channel string) tgbotapi.InlineKeyboardMarkup {
	clean := strings.TrimPrefix(channel, "@")
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Join", "https://t.me/"+clean),
		),
	)
}
