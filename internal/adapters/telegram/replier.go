package telegram

import (
	"rektbot/internal/domain/subscriber"
	"rektbot/pkg/telegram"
)

// Replier delivers conversation prompts and confirmations through the bot.
// Implements settings.Replier.
type Replier struct {
	bot telegram.Bot
}

// NewReplier creates a replier on top of the bot transport
func NewReplier(bot telegram.Bot) *Replier {
	return &Replier{bot: bot}
}

// SendText sends a plain prompt
func (r *Replier) SendText(id subscriber.ID, text string) error {
	return r.bot.SendMessage(int64(id), text)
}

// SendMainMenu sends text with the main settings keyboard attached
func (r *Replier) SendMainMenu(id subscriber.ID, text string) error {
	return r.bot.SendMessageWithKeyboard(int64(id), text, mainMenu())
}

// SendListMenu sends text with the list-mode choice keyboard attached
func (r *Replier) SendListMenu(id subscriber.ID, text string) error {
	return r.bot.SendMessageWithKeyboard(int64(id), text, listMenu())
}
