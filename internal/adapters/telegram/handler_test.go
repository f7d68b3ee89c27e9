package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rektbot/internal/domain/liquidation"
	"rektbot/internal/domain/subscriber"
	"rektbot/internal/services/settings"
	"rektbot/pkg/logger"
	"rektbot/pkg/telegram"

	"github.com/shopspring/decimal"
)

// fakeBot records outgoing traffic instead of hitting the Telegram API
type fakeBot struct {
	mu        sync.Mutex
	messages  []string
	keyboards []telegram.InlineKeyboardMarkup
	answered  []string
}

func (b *fakeBot) Start(ctx context.Context) error     { return nil }
func (b *fakeBot) Stop()                               {}
func (b *fakeBot) SetHandler(func(telegram.Update))    {}

func (b *fakeBot) SendMessage(chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, text)
	return nil
}

func (b *fakeBot) SendMessageWithKeyboard(chatID int64, text string, keyboard telegram.InlineKeyboardMarkup) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, text)
	b.keyboards = append(b.keyboards, keyboard)
	return nil
}

func (b *fakeBot) SendMessageWithOptions(chatID int64, text string, opts telegram.MessageOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, text)
	return nil
}

func (b *fakeBot) AnswerCallback(callbackQueryID string, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answered = append(b.answered, callbackQueryID)
	return nil
}

func (b *fakeBot) lastMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return ""
	}
	return b.messages[len(b.messages)-1]
}

func newTestHandler() (*Handler, *fakeBot, *subscriber.Store, *subscriber.PhaseStore) {
	bot := &fakeBot{}
	configs := subscriber.NewStore()
	phases := subscriber.NewPhaseStore()
	svc := settings.NewService(configs, phases, NewReplier(bot), logger.Get())
	return NewHandler(bot, svc, logger.Get()), bot, configs, phases
}

func messageUpdate(chatID int64, text string) telegram.Update {
	msg := &telegram.Message{
		Chat: &telegram.Chat{ID: chatID, Type: "private"},
		Text: text,
	}
	msg.ParseCommand()
	return telegram.Update{Message: msg}
}

func callbackUpdate(chatID int64, data string) telegram.Update {
	return telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:      "cb1",
		From:    &telegram.User{ID: chatID},
		Message: &telegram.Message{Chat: &telegram.Chat{ID: chatID, Type: "private"}},
		Data:    data,
	}}
}

func TestHandler_StartCommand(t *testing.T) {
	h, bot, configs, _ := newTestHandler()

	h.Handle(messageUpdate(42, "/start"))

	assert.Equal(t, 1, configs.Count(), "/start registers the subscriber")
	assert.Contains(t, bot.lastMessage(), "Choose an action")
	require.Len(t, bot.keyboards, 1)
}

func TestHandler_FullThresholdFlow(t *testing.T) {
	h, bot, configs, phases := newTestHandler()
	id := subscriber.ID(42)

	h.Handle(messageUpdate(42, "/start"))
	h.Handle(callbackUpdate(42, "set_limit"))

	assert.Equal(t, subscriber.PhaseAwaitingThreshold, phases.Get(id))
	assert.Equal(t, []string{"cb1"}, bot.answered, "keyboard press must be acknowledged")

	h.Handle(messageUpdate(42, "300k"))

	assert.Equal(t, "300000", configs.Get(id).Threshold.String())
	assert.Equal(t, subscriber.PhaseIdle, phases.Get(id))
	assert.Contains(t, bot.lastMessage(), "300,000")
}

func TestHandler_FullListModeFlow(t *testing.T) {
	h, _, configs, phases := newTestHandler()
	id := subscriber.ID(42)

	h.Handle(callbackUpdate(42, "set_list"))
	assert.Equal(t, subscriber.PhaseAwaitingListMode, phases.Get(id))

	h.Handle(callbackUpdate(42, settings.ChoiceNoTop50))

	assert.Equal(t, subscriber.ListModeExcludeTop50, configs.Get(id).ListMode)
	assert.Equal(t, subscriber.PhaseIdle, phases.Get(id))
}

func TestHandler_StartResetsConversation(t *testing.T) {
	h, _, _, phases := newTestHandler()
	id := subscriber.ID(42)

	h.Handle(callbackUpdate(42, "set_limit"))
	require.Equal(t, subscriber.PhaseAwaitingThreshold, phases.Get(id))

	h.Handle(messageUpdate(42, "/start"))

	assert.Equal(t, subscriber.PhaseIdle, phases.Get(id), "/start is accepted in any phase")
}

func TestHandler_UnknownCallbackIgnored(t *testing.T) {
	h, bot, configs, _ := newTestHandler()

	h.Handle(callbackUpdate(42, "something_else"))

	assert.Equal(t, 0, configs.Count())
	assert.Len(t, bot.answered, 1, "even unknown callbacks are acknowledged")
}

func TestHandler_EmptyTextIgnored(t *testing.T) {
	h, bot, _, _ := newTestHandler()

	h.Handle(messageUpdate(42, "   "))

	assert.Empty(t, bot.messages)
}

func TestHandler_CallbackFallsBackToSender(t *testing.T) {
	h, _, _, phases := newTestHandler()

	// Callback carrying no originating message
	h.Handle(telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:   "cb2",
		From: &telegram.User{ID: 99},
		Data: "set_limit",
	}})

	assert.Equal(t, subscriber.PhaseAwaitingThreshold, phases.Get(subscriber.ID(99)))
}

func TestNotifier_FormatAlert(t *testing.T) {
	event := liquidation.Event{
		Symbol:         "BTCUSDT",
		Side:           liquidation.SideSell,
		Price:          decimal.NewFromInt(60_000),
		Quantity:       decimal.NewFromInt(2),
		NotionalVolume: decimal.NewFromInt(120_000),
		EventTime:      time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC),
	}

	text := formatAlert(event)

	assert.Contains(t, text, "*Liquidation: BTCUSDT*")
	assert.Contains(t, text, "🔴 Long liquidated")
	assert.Contains(t, text, "$120,000")
	assert.Contains(t, text, "$60,000")
	assert.Contains(t, text, "2024-01-15 12:30:00 UTC")
	assert.Contains(t, text, "https://www.coinglass.com/liquidation/BTC")
}

func TestNotifier_FormatAlert_ShortSide(t *testing.T) {
	event := liquidation.Event{
		Symbol:         "ETHUSDT",
		Side:           liquidation.SideBuy,
		Price:          decimal.RequireFromString("3000.5"),
		Quantity:       decimal.NewFromInt(10),
		NotionalVolume: decimal.NewFromInt(30_005),
		EventTime:      time.Now().UTC(),
	}

	text := formatAlert(event)

	assert.Contains(t, text, "🟢 Short liquidated")
}

func TestNotifier_Delivers(t *testing.T) {
	bot := &fakeBot{}
	n := NewNotifier(bot, logger.Get())

	err := n.NotifyLiquidation(context.Background(), subscriber.ID(42), liquidation.Event{
		Symbol:         "BTCUSDT",
		Side:           liquidation.SideSell,
		Price:          decimal.NewFromInt(100),
		Quantity:       decimal.NewFromInt(1),
		NotionalVolume: decimal.NewFromInt(100),
		EventTime:      time.Now().UTC(),
	})

	require.NoError(t, err)
	require.Len(t, bot.messages, 1)
	assert.Contains(t, bot.messages[0], "Liquidation")
}

func TestCoinglassSlug(t *testing.T) {
	assert.Equal(t, "BTC", coinglassSlug("BTCUSDT"))
	assert.Equal(t, "ETH", coinglassSlug("ETHUSDC"))
	assert.Equal(t, "SOL", coinglassSlug("SOLUSD"))
	assert.Equal(t, "UNKNOWN", coinglassSlug("UNKNOWN"))
}
