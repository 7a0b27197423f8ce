package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply keyboard button labels. Matching is fuzzy (see matchFeature) so old
// clients with slightly different labels keep working.
const (
	btnCard     = "🔮 Card of the Day"
	btnMini     = "🌗 Mini Spread"
	btnCompat   = "💞 Compatibility"
	btnYesNo    = "🌑 Ask a Question"
	btnUniverse = "🌙 Write to the Universe"
	btnOracle   = "🪄 Oracle's Help"

	btnUniverseSend  = "✨ Yes, send it"
	btnUniverseLater = "💭 No, I'll add more"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCard)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMini),
			tgbotapi.NewKeyboardButton(btnCompat),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnYesNo),
			tgbotapi.NewKeyboardButton(btnUniverse),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnOracle)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func universeConfirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnUniverseSend)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnUniverseLater)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func paymentKeyboard(singleURL, packageURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔮 One question", singleURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔮 Pack of six questions", packageURL),
		),
	)
}
