package telegram

import (
	"strings"

	"rektbot/internal/domain/subscriber"
	"rektbot/internal/services/settings"
	"rektbot/pkg/logger"
	"rektbot/pkg/telegram"
)

// Handler routes incoming updates to the settings conversation service.
type Handler struct {
	bot      telegram.Bot
	settings *settings.Service
	log      *logger.Logger
}

// NewHandler creates an update router
func NewHandler(bot telegram.Bot, svc *settings.Service, log *logger.Logger) *Handler {
	return &Handler{
		bot:      bot,
		settings: svc,
		log:      log.With("component", "telegram_handler"),
	}
}

// Handle dispatches one update. Wired as the bot's update callback.
func (h *Handler) Handle(update telegram.Update) {
	switch {
	case update.HasCallback():
		h.handleCallback(update.CallbackQuery)
	case update.HasMessage():
		h.handleMessage(update.Message)
	}
}

func (h *Handler) handleMessage(msg *telegram.Message) {
	if msg.Chat == nil {
		return
	}
	id := subscriber.ID(msg.Chat.ID)

	if msg.IsCommand {
		switch msg.Command {
		case "start":
			h.settings.Start(id)
		default:
			// Unknown commands fall through to the conversation machine,
			// which re-prompts for the current phase.
			h.settings.HandleText(id, msg.Text)
		}
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	h.settings.HandleText(id, msg.Text)
}

func (h *Handler) handleCallback(cq *telegram.CallbackQuery) {
	// Ack first so the client stops showing the spinner
	if err := h.bot.AnswerCallback(cq.ID, ""); err != nil {
		h.log.Debugw("Failed to answer callback", "callback_id", cq.ID, "error", err)
	}

	id := callbackSubscriber(cq)
	if id == 0 {
		h.log.Warnw("Callback without chat context", "callback_id", cq.ID, "data", cq.Data)
		return
	}

	switch cq.Data {
	case callbackSetLimit:
		h.settings.BeginThresholdChange(id)
	case callbackSetList:
		h.settings.BeginListModeChange(id)
	case settings.ChoiceAll, settings.ChoiceNoTop20, settings.ChoiceNoTop50, settings.ChoiceCancel:
		h.settings.HandleChoice(id, cq.Data)
	default:
		h.log.Warnw("Unknown callback data", "callback_id", cq.ID, "data", cq.Data)
	}
}

// callbackSubscriber resolves the subscriber behind a keyboard press. The
// originating chat is preferred; the sender is a fallback for callbacks on
// messages Telegram no longer attaches.
func callbackSubscriber(cq *telegram.CallbackQuery) subscriber.ID {
	if cq.Message != nil && cq.Message.Chat != nil {
		return subscriber.ID(cq.Message.Chat.ID)
	}
	if cq.From != nil {
		return subscriber.ID(cq.From.ID)
	}
	return 0
}
