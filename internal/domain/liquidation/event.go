package liquidation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of the liquidated order as reported by the venue.
// A Sell liquidation order closes a long position, a Buy order a short one.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Event is a canonical liquidation event, derived from a raw feed frame.
// Immutable once constructed.
type Event struct {
	Symbol         string
	Side           Side
	Price          decimal.Decimal
	Quantity       decimal.Decimal
	NotionalVolume decimal.Decimal // Quote currency (USD-equivalent)
	EventTime      time.Time       // UTC
}

// LiquidatedPosition returns the position direction that was force-closed:
// the venue reports the order side, which is the opposite of the position.
func (e Event) LiquidatedPosition() string {
	if e.Side == SideSell {
		return "Long"
	}
	return "Short"
}
