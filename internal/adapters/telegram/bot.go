package telegram

import (
	"context"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"rektbot/pkg/errors"
	"rektbot/pkg/logger"
	"rektbot/pkg/telegram"
)

// Bot wraps tgbotapi behind the pkg/telegram Bot interface
type Bot struct {
	api         *tgbotapi.BotAPI
	log         *logger.Logger
	mu          sync.RWMutex
	running     bool
	webhookMode bool
	handler     func(telegram.Update)
	rateLimiter *rate.Limiter
}

// Config contains Telegram bot configuration
type Config struct {
	Token          string
	Debug          bool
	WebhookMode    bool // If true, don't start polling (updates arrive over HTTP)
	UpdateTimeout  int  // Long-poll timeout in seconds
	HTTPTimeout    time.Duration
	RateLimitBurst int // Rate limiter burst (default: 30)
	RateLimitRate  int // Rate limiter per second (default: 20)
}

// NewBot creates a new Telegram bot instance
func NewBot(cfg Config, log *logger.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.Wrap(errors.ErrInvalidConfig, "telegram bot token is required")
	}

	if cfg.UpdateTimeout == 0 {
		cfg.UpdateTimeout = 60
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 30 // Telegram allows bursts
	}
	if cfg.RateLimitRate == 0 {
		cfg.RateLimitRate = 20 // Conservative: 20 msg/sec (Telegram limit is 30)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}
	api.Debug = cfg.Debug

	log.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		webhookMode: cfg.WebhookMode,
		log:         log.With("component", "telegram_bot"),
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRate), cfg.RateLimitBurst),
	}, nil
}

// SetHandler registers the handler for incoming updates
func (b *Bot) SetHandler(handler func(telegram.Update)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
}

// SetWebhook registers the webhook URL with Telegram
func (b *Bot) SetWebhook(webhookURL string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return errors.Wrap(err, "invalid webhook url")
	}
	if _, err := b.api.Request(wh); err != nil {
		return errors.Wrap(err, "failed to set webhook")
	}
	return nil
}

// DeleteWebhook removes the webhook registration
func (b *Bot) DeleteWebhook() error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return errors.Wrap(err, "failed to delete webhook")
	}
	return nil
}

// Start begins polling for updates, or just blocks in webhook mode
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.mu.Unlock()

	if b.webhookMode {
		b.log.Infow("Telegram bot in webhook mode (no polling)")
		<-ctx.Done()
		b.Stop()
		return nil
	}

	b.log.Infow("Starting Telegram bot in polling mode...")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.log.Infow("Telegram bot stopping (context cancelled)")
			b.Stop()
			return nil

		case update := <-updates:
			// Handle update in goroutine to avoid blocking the poll loop
			go b.dispatch(convertUpdate(update))
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}

	b.api.StopReceivingUpdates()
	b.running = false
	b.log.Infow("Telegram bot stopped")
}

// HandleWebhookUpdate feeds a webhook-delivered update into the handler
func (b *Bot) HandleWebhookUpdate(update telegram.Update) {
	b.dispatch(update)
}

func (b *Bot) dispatch(update telegram.Update) {
	b.mu.RLock()
	handler := b.handler
	b.mu.RUnlock()

	if handler == nil {
		b.log.Debugw("Received update with no handler registered", "update_id", update.UpdateID)
		return
	}
	handler(update)
}

// SendMessage sends a text message (blocking)
func (b *Bot) SendMessage(chatID int64, text string) error {
	return b.SendMessageWithOptions(chatID, text, telegram.MessageOptions{})
}

// SendMessageWithKeyboard sends a message with inline keyboard
func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard telegram.InlineKeyboardMarkup) error {
	return b.SendMessageWithOptions(chatID, text, telegram.MessageOptions{Keyboard: &keyboard})
}

// SendMessageWithOptions sends a message with custom options
func (b *Bot) SendMessageWithOptions(chatID int64, text string, opts telegram.MessageOptions) error {
	if err := b.rateLimiter.Wait(context.Background()); err != nil {
		return errors.Wrap(err, "rate limiter wait failed")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = opts.ParseMode
	msg.DisableWebPagePreview = opts.DisableWebPagePreview
	msg.DisableNotification = opts.DisableNotification
	if opts.Keyboard != nil {
		msg.ReplyMarkup = convertKeyboard(*opts.Keyboard)
	}

	start := time.Now()
	_, err := b.api.Send(msg)
	if err != nil {
		b.log.Errorw("Failed to send message",
			"chat_id", chatID,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return errors.Wrap(errors.ErrDeliveryFailure, err.Error())
	}

	b.log.Debugw("Message sent",
		"chat_id", chatID,
		"text_length", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// AnswerCallback answers a callback query so the button stops spinning
func (b *Bot) AnswerCallback(callbackQueryID string, text string) error {
	cb := tgbotapi.NewCallback(callbackQueryID, text)
	if _, err := b.api.Request(cb); err != nil {
		return errors.Wrap(err, "failed to answer callback")
	}
	return nil
}

// convertUpdate maps a tgbotapi update onto the transport-neutral types
func convertUpdate(update tgbotapi.Update) telegram.Update {
	out := telegram.Update{UpdateID: update.UpdateID}

	if update.Message != nil {
		out.Message = convertMessage(update.Message)
	}
	if update.CallbackQuery != nil {
		out.CallbackQuery = &telegram.CallbackQuery{
			ID:   update.CallbackQuery.ID,
			From: convertUser(update.CallbackQuery.From),
			Data: update.CallbackQuery.Data,
		}
		if update.CallbackQuery.Message != nil {
			out.CallbackQuery.Message = convertMessage(update.CallbackQuery.Message)
		}
	}
	return out
}

func convertMessage(msg *tgbotapi.Message) *telegram.Message {
	out := &telegram.Message{
		MessageID: msg.MessageID,
		From:      convertUser(msg.From),
		Text:      msg.Text,
	}
	if msg.Chat != nil {
		out.Chat = &telegram.Chat{
			ID:       msg.Chat.ID,
			Type:     msg.Chat.Type,
			Username: msg.Chat.UserName,
		}
	}
	out.ParseCommand()
	return out
}

func convertUser(user *tgbotapi.User) *telegram.User {
	if user == nil {
		return nil
	}
	return &telegram.User{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.UserName,
		IsBot:     user.IsBot,
	}
}

func convertKeyboard(keyboard telegram.InlineKeyboardMarkup) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard.InlineKeyboard))
	for _, row := range keyboard.InlineKeyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			switch {
			case btn.URL != "":
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			default:
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
			}
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
