package subscriber

import (
	"github.com/shopspring/decimal"
)

// ID is a stable subscriber identity (the chat the alerts go to).
type ID int64

// ListMode is a per-subscriber preference excluding highly-ranked instruments
// from notifications. Recorded but currently inert: applying it would require
// an instrument ranking source the system does not have.
type ListMode string

const (
	ListModeAll          ListMode = "ALL"
	ListModeExcludeTop20 ListMode = "EXCLUDE_TOP20"
	ListModeExcludeTop50 ListMode = "EXCLUDE_TOP50"
)

// Valid reports whether m is one of the known list modes
func (m ListMode) Valid() bool {
	switch m {
	case ListModeAll, ListModeExcludeTop20, ListModeExcludeTop50:
		return true
	}
	return false
}

// DefaultThreshold is the minimum notional volume (quote currency) that
// triggers a notification for subscribers who never set their own.
var DefaultThreshold = decimal.NewFromInt(100_000)

// Config holds one subscriber's alert settings
type Config struct {
	Threshold decimal.Decimal
	ListMode  ListMode
}

// DefaultConfig returns the settings every subscriber starts with
func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		ListMode:  ListModeAll,
	}
}
