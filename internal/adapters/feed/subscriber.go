package feed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rektbot/internal/domain/liquidation"
	"rektbot/internal/metrics"
	"rektbot/pkg/errors"
	"rektbot/pkg/logger"
	"rektbot/pkg/reconnect"
)

// State is the observable connection state of the stream subscriber
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateSubscribed   State = "SUBSCRIBED"
)

// FrameHandler receives every raw frame read from the connection, in order
type FrameHandler func(ctx context.Context, raw []byte)

// Config configures the stream subscriber
type Config struct {
	URL              string
	Topics           []string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
}

// subscribeRequest is the single subscription frame sent after connecting
type subscribeRequest struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

// Topics derives the subscription topic list from the symbol catalog: one
// per-symbol channel each, or the single global channel when the catalog
// came back empty (older venue API, or catalog failure fallback).
func Topics(symbols []string, globalTopic string) []string {
	if len(symbols) == 0 {
		return []string{globalTopic}
	}
	topics := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		topics = append(topics, liquidation.TopicPrefix+symbol)
	}
	return topics
}

// Subscriber owns the feed connection lifecycle: connect, subscribe, read,
// reconnect after a fixed delay on any failure. The loop has no terminal
// state except context cancellation; no connection-level error ever reaches
// the caller.
type Subscriber struct {
	cfg       Config
	handler   FrameHandler
	reconnect *reconnect.Manager
	log       *logger.Logger

	mu    sync.RWMutex
	state State
}

// NewSubscriber creates a stream subscriber. The handler is invoked on the
// read goroutine, so processing one frame delays the next; handlers must not
// block indefinitely.
func NewSubscriber(cfg Config, handler FrameHandler, manager *reconnect.Manager, log *logger.Logger) *Subscriber {
	return &Subscriber{
		cfg:       cfg,
		handler:   handler,
		reconnect: manager,
		log:       log.With("component", "feed"),
		state:     StateDisconnected,
	}
}

// State returns the current connection state
func (s *Subscriber) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Subscriber) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run maintains the feed connection until the context is cancelled. Every
// failure is caught, recorded, and retried after the fixed delay — it never
// returns early and never propagates an error.
func (s *Subscriber) Run(ctx context.Context) {
	defer s.setState(StateDisconnected)

	for {
		err := s.connectAndRead(ctx)

		if ctx.Err() != nil {
			s.log.Infow("Feed subscriber stopping", "reason", ctx.Err())
			return
		}

		s.setState(StateDisconnected)
		s.reconnect.RecordFailure(err)
		metrics.FeedReconnects.Inc()

		if err := s.reconnect.Wait(ctx); err != nil {
			s.log.Infow("Feed subscriber stopping", "reason", err)
			return
		}
	}
}

// connectAndRead performs one full connection attempt: dial, subscribe, then
// read until the connection errors. Always returns a non-nil error unless
// the context ended.
func (s *Subscriber) connectAndRead(ctx context.Context) error {
	s.setState(StateConnecting)

	session := uuid.NewString()[:8]
	log := s.log.With("session", session)
	log.Infow("Connecting to feed", "url", s.cfg.URL)

	dialer := websocket.Dialer{HandshakeTimeout: s.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return errors.Wrap(errors.ErrWSNotConnected, err.Error())
	}
	defer conn.Close()

	// Unblock the read loop when the context is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := conn.WriteJSON(subscribeRequest{Op: "subscribe", Args: s.cfg.Topics}); err != nil {
		return errors.Wrap(errors.ErrWSSubscriptionFailed, err.Error())
	}

	s.setState(StateSubscribed)
	s.reconnect.RecordSuccess()
	log.Infow("Subscribed to liquidation stream", "topics", len(s.cfg.Topics))

	for {
		// A silent connection is indistinguishable from a dead one; let the
		// read deadline surface it as a connection error.
		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return errors.Wrap(errors.ErrWSNotConnected, err.Error())
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return errors.Wrap(errors.ErrWSNotConnected, err.Error())
		}

		s.reconnect.RecordMessageReceived()
		s.handler(ctx, message)
	}
}
