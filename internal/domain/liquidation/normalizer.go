package liquidation

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rektbot/pkg/errors"
)

const (
	// TopicGlobal is the single-channel liquidation topic (older venue API)
	TopicGlobal = "liquidation"

	// TopicPrefix marks per-symbol liquidation topics, e.g. "liquidation.BTCUSDT"
	TopicPrefix = "liquidation."
)

// frame is the envelope every feed message arrives in. Control frames
// (subscription acks, pings) carry "op"; data frames carry "topic" + "data".
type frame struct {
	Op      string          `json:"op,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// flexDecimal decodes a JSON number that the venue emits either as a bare
// number (older API) or as a quoted string (v5 API).
type flexDecimal struct {
	decimal.Decimal
	set bool
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	d.Decimal = v
	d.set = true
	return nil
}

// recordA is the older liquidation record shape: quantity and price reported
// separately, notional derived as price × qty.
type recordA struct {
	Symbol string      `json:"symbol"`
	Side   string      `json:"side"`
	Price  flexDecimal `json:"price"`
	Qty    flexDecimal `json:"qty"`
	Time   int64       `json:"time"` // ms
}

// recordB is the v5 liquidation record shape: single-letter keys, volume
// reported natively.
type recordB struct {
	Symbol string      `json:"s"`
	Side   string      `json:"S"`
	Price  flexDecimal `json:"p"`
	Volume flexDecimal `json:"v"`
	Time   int64       `json:"T"` // ms
}

// Normalize parses a raw feed frame into zero or more canonical events.
//
// Control frames (subscription acks, heartbeats) and frames on unknown topics
// yield zero events and a nil error. A liquidation frame whose records match
// neither known payload shape yields ErrMalformedPayload; the caller is
// expected to drop and log it without disturbing the pipeline.
func Normalize(raw []byte) ([]Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}

	// Subscription acks and pong replies carry "op" and no data.
	if f.Op != "" {
		return nil, nil
	}

	if !isLiquidationTopic(f.Topic) || len(f.Data) == 0 {
		return nil, nil
	}

	// Data is an array of records on the older API, a single object on v5.
	var records []json.RawMessage
	if err := json.Unmarshal(f.Data, &records); err != nil {
		records = []json.RawMessage{f.Data}
	}

	events := make([]Event, 0, len(records))
	for _, rec := range records {
		event, err := normalizeRecord(rec)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}

func isLiquidationTopic(topic string) bool {
	return topic == TopicGlobal || strings.HasPrefix(topic, TopicPrefix)
}

// normalizeRecord attempts shape A first, falls back to shape B, and reports
// ErrMalformedPayload when neither matches. Field presence is validated
// explicitly; no field is assumed.
func normalizeRecord(raw json.RawMessage) (Event, error) {
	var a recordA
	if err := json.Unmarshal(raw, &a); err == nil {
		if side, ok := parseSide(a.Side); ok && a.Symbol != "" && a.Price.set && a.Qty.set {
			return Event{
				Symbol:         a.Symbol,
				Side:           side,
				Price:          a.Price.Decimal,
				Quantity:       a.Qty.Decimal,
				NotionalVolume: a.Price.Decimal.Mul(a.Qty.Decimal),
				EventTime:      time.UnixMilli(a.Time).UTC(),
			}, nil
		}
	}

	var b recordB
	if err := json.Unmarshal(raw, &b); err == nil {
		if side, ok := parseSide(b.Side); ok && b.Symbol != "" && b.Price.set && b.Volume.set {
			// Volume is reported natively in quote currency; base quantity
			// is derived, not part of the wire record.
			quantity := decimal.Zero
			if b.Price.Decimal.IsPositive() {
				quantity = b.Volume.Decimal.DivRound(b.Price.Decimal, 8)
			}
			return Event{
				Symbol:         b.Symbol,
				Side:           side,
				Price:          b.Price.Decimal,
				Quantity:       quantity,
				NotionalVolume: b.Volume.Decimal,
				EventTime:      time.UnixMilli(b.Time).UTC(),
			}, nil
		}
	}

	return Event{}, errors.Wrapf(errors.ErrMalformedPayload, "record matches no known shape: %s", string(raw))
}

func parseSide(s string) (Side, bool) {
	switch strings.ToLower(s) {
	case "buy":
		return SideBuy, true
	case "sell":
		return SideSell, true
	default:
		return "", false
	}
}
