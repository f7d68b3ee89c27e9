package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"rektbot/internal/domain/liquidation"
	"rektbot/internal/domain/subscriber"
	"rektbot/pkg/logger"
	"rektbot/pkg/telegram"
)

const coinglassLiquidationURL = "https://www.coinglass.com/liquidation"

// Notifier delivers liquidation alerts to subscribers over Telegram.
// Implements alert.Notifier.
type Notifier struct {
	bot telegram.Bot
	log *logger.Logger
}

// NewNotifier creates an alert notifier on top of the bot transport
func NewNotifier(bot telegram.Bot, log *logger.Logger) *Notifier {
	return &Notifier{
		bot: bot,
		log: log.With("component", "notifier"),
	}
}

// NotifyLiquidation sends a formatted alert for one event to one subscriber
func (n *Notifier) NotifyLiquidation(_ context.Context, id subscriber.ID, event liquidation.Event) error {
	return n.bot.SendMessageWithOptions(int64(id), formatAlert(event), telegram.MessageOptions{
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
}

// formatAlert renders the alert message for one event
func formatAlert(e liquidation.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "💥 *Liquidation: %s*\n\n", e.Symbol)
	fmt.Fprintf(&b, "%s %s liquidated\n", sideEmoji(e.Side), e.LiquidatedPosition())
	fmt.Fprintf(&b, "💵 Volume: $%s\n", humanize.CommafWithDigits(e.NotionalVolume.InexactFloat64(), 2))
	fmt.Fprintf(&b, "📈 Price: $%s\n", humanize.CommafWithDigits(e.Price.InexactFloat64(), 4))
	fmt.Fprintf(&b, "🕒 %s\n\n", e.EventTime.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "[Coinglass](%s/%s)", coinglassLiquidationURL, coinglassSlug(e.Symbol))

	return b.String()
}

func sideEmoji(side liquidation.Side) string {
	if side == liquidation.SideSell {
		return "🔴"
	}
	return "🟢"
}

// coinglassSlug maps a perp symbol to its Coinglass liquidation page slug,
// which is the base asset name (BTCUSDT -> BTC).
func coinglassSlug(symbol string) string {
	for _, quote := range []string{"USDT", "USDC", "USD", "PERP"} {
		if s, ok := strings.CutSuffix(symbol, quote); ok && s != "" {
			return s
		}
	}
	return symbol
}
