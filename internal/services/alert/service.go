package alert

import (
	"context"

	"rektbot/internal/domain/liquidation"
	"rektbot/internal/domain/subscriber"
	"rektbot/internal/metrics"
	"rektbot/pkg/logger"
)

// Notifier delivers a formatted liquidation notification to one subscriber
type Notifier interface {
	NotifyLiquidation(ctx context.Context, id subscriber.ID, event liquidation.Event) error
}

// ShouldNotify decides delivery for one subscriber: the event's notional
// volume must meet the subscriber's threshold. List mode is recorded in the
// config but takes no part in the decision; excluding ranked instruments
// would need a ranking source the system does not have.
func ShouldNotify(event liquidation.Event, cfg subscriber.Config) bool {
	return event.NotionalVolume.GreaterThanOrEqual(cfg.Threshold)
}

// Service normalizes raw feed frames and fans qualifying events out to
// subscribers. It sits between the stream subscriber (single goroutine,
// in-order frames) and the notification transport.
type Service struct {
	configs  *subscriber.Store
	notifier Notifier
	log      *logger.Logger
}

// NewService creates the alert pipeline service
func NewService(configs *subscriber.Store, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		configs:  configs,
		notifier: notifier,
		log:      log.With("component", "alert"),
	}
}

// HandleFrame processes one raw frame from the feed. Malformed frames are
// dropped and logged; a delivery failure for one subscriber never blocks
// delivery to the next, and nothing here propagates an error upstream.
func (s *Service) HandleFrame(ctx context.Context, raw []byte) {
	metrics.FramesReceived.Inc()

	events, err := liquidation.Normalize(raw)
	if err != nil {
		metrics.MalformedFrames.Inc()
		s.log.Warnw("Dropped malformed frame", "error", err)
		return
	}

	for _, event := range events {
		metrics.EventsNormalized.Inc()
		s.dispatch(ctx, event)
	}
}

// dispatch delivers one event to every qualifying subscriber independently,
// in no guaranteed cross-subscriber order. One delivery attempt per
// subscriber per event, no retries.
func (s *Service) dispatch(ctx context.Context, event liquidation.Event) {
	s.log.Debugw("Liquidation event",
		"symbol", event.Symbol,
		"side", event.Side,
		"notional_volume", event.NotionalVolume,
	)

	for id, cfg := range s.configs.All() {
		if !ShouldNotify(event, cfg) {
			continue
		}

		if err := s.notifier.NotifyLiquidation(ctx, id, event); err != nil {
			metrics.NotificationFailures.Inc()
			s.log.Errorw("Failed to deliver notification",
				"subscriber_id", id,
				"symbol", event.Symbol,
				"error", err,
			)
			continue
		}
		metrics.NotificationsSent.Inc()
	}
}
