package telegram

import (
	"rektbot/internal/services/settings"
	"rektbot/pkg/telegram"
)

// Callback data for the settings keyboards
const (
	callbackSetLimit = "set_limit"
	callbackSetList  = "set_list"

	coinglassURL = "https://www.coinglass.com"
)

// mainMenu is the keyboard shown on /start and after every completed
// conversation
func mainMenu() telegram.InlineKeyboardMarkup {
	return telegram.NewInlineKeyboardMarkup(
		telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData("💲 Volume limit", callbackSetLimit),
			telegram.NewInlineKeyboardButtonData("⚫️ Token list", callbackSetList),
		),
		telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonURL("🔗 Coinglass", coinglassURL),
		),
	)
}

// listMenu presents the three list modes plus cancel
func listMenu() telegram.InlineKeyboardMarkup {
	return telegram.NewInlineKeyboardMarkup(
		telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData("🟡 All tokens", settings.ChoiceAll),
			telegram.NewInlineKeyboardButtonData("🟡 Without top 20", settings.ChoiceNoTop20),
		),
		telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData("🟡 Without top 50", settings.ChoiceNoTop50),
			telegram.NewInlineKeyboardButtonData("❌ Cancel", settings.ChoiceCancel),
		),
	)
}
