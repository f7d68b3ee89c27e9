package telegram

import (
	"context"
)

// Bot interface abstracts telegram bot operations (for dependency injection)
type Bot interface {
	// Start starts the bot (polling or webhook mode)
	Start(ctx context.Context) error

	// Stop stops the bot
	Stop()

	// SetHandler sets update handler
	SetHandler(handler func(Update))

	// SendMessage sends a text message (blocking)
	SendMessage(chatID int64, text string) error

	// SendMessageWithKeyboard sends message with inline keyboard (blocking)
	SendMessageWithKeyboard(chatID int64, text string, keyboard InlineKeyboardMarkup) error

	// SendMessageWithOptions sends message with custom options
	SendMessageWithOptions(chatID int64, text string, opts MessageOptions) error

	// AnswerCallback answers callback query
	AnswerCallback(callbackQueryID string, text string) error
}

// MessageOptions defines options for sending messages
type MessageOptions struct {
	// Keyboard for inline buttons
	Keyboard *InlineKeyboardMarkup

	// ParseMode (Markdown, HTML, MarkdownV2)
	ParseMode string

	// DisableWebPagePreview disables link previews
	DisableWebPagePreview bool

	// DisableNotification sends message silently
	DisableNotification bool
}
