package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/voxgate/voxgate/internal/state"
)

// language pairs a keyboard label with its transcription language code. An
// empty code means auto-detect.
type language struct {
	Label string
	Code  string
}

var languages = []language{
	{"🇬🇧 English", "en"}, {"🇸🇦 العربية", "ar"}, {"🇪🇸 Español", "es"}, {"🇫🇷 Français", "fr"},
	{"🇷🇺 Русский", "ru"}, {"🇩🇪 Deutsch", "de"}, {"🇮🇳 हिन्दी", "hi"}, {"🇮🇷 فارسی", "fa"},
	{"🇮🇩 Indonesia", "id"}, {"🇺🇦 Українська", "uk"}, {"🇦🇿 Azərbaycan", "az"}, {"🇮🇹 Italiano", "it"},
	{"🇹🇷 Türkçe", "tr"}, {"🇧🇬 Български", "bg"}, {"🇷🇸 Srpski", "sr"}, {"🇵🇰 اردو", "ur"},
	{"🇹🇭 ไทย", "th"}, {"🇻🇳 Tiếng Việt", "vi"}, {"🇯🇵 日本語", "ja"}, {"🇰🇷 한국어", "ko"},
	{"🇨🇳 中文", "zh"}, {"🇸🇪 Svenska", "sv"}, {"🇳🇴 Norsk", "no"},
	{"🇮🇱 עברית", "he"}, {"🇩🇰 Dansk", "da"}, {"🇪🇹 አማርኛ", "am"}, {"🇫🇮 Suomi", "fi"},
	{"🇧🇩 বাংলা", "bn"}, {"🇰🇪 Kiswahili", "sw"}, {"🇪🇹 Oromo", "om"}, {"🇳🇵 नेपाली", "ne"},
	{"🇵🇱 Polski", "pl"}, {"🇬🇷 Ελληνικά", "el"}, {"🇨🇿 Čeština", "cs"}, {"🇮🇸 Íslenska", "is"},
	{"🇱🇹 Lietuvių", "lt"}, {"🇱🇻 Latviešu", "lv"}, {"🇭🇷 Hrvatski", "hr"}, {"🇷🇸 Bosanski", "bs"},
	{"🇭🇺 Magyar", "hu"}, {"🇷🇴 Română", "ro"}, {"🇸🇴 Somali", "so"}, {"🇲🇾 Melayu", "ms"},
	{"🇺🇿 O'zbekcha", "uz"}, {"🇵🇭 Tagalog", "tl"}, {"🇵🇹 Português", "pt"}, {"Auto Detect ⭐️", ""},
}

const languagesPerRow = 3

// buildLanguageKeyboard lays the language buttons out three per row. Each
// button's callback data is "lang|<code>|<label>|<origin>".
func buildLanguageKeyboard(origin string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, lang := range languages {
		data := fmt.Sprintf("lang|%s|%s|%s", lang.Code, lang.Label, origin)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(lang.Label, data))
		if len(row) == languagesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildModeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Split messages", "mode|"+string(state.ModeSplitMessages)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Text File", "mode|"+string(state.ModeTextFile)),
		),
	)
}

// buildSummarizeMenuKeyboard is the single button attached to transcripts
// long enough to be worth summarizing.
func buildSummarizeMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Get Summarize", "summarize_menu|"),
		),
	)
}

// buildSummarizeKeyboard offers the summary styles; origin is the message id
// of the transcript the summary applies to.
func buildSummarizeKeyboard(origin int) tgbotapi.InlineKeyboardMarkup {
	styles := []string{"Short", "Detailed", "Bulleted"}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(styles))
	for _, style := range styles {
		data := fmt.Sprintf("summopt|%s|%d", style, origin)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(style, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
