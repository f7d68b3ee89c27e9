package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rektbot/pkg/logger"
	"rektbot/pkg/reconnect"
)

func TestTopics_PerSymbol(t *testing.T) {
	topics := Topics([]string{"BTCUSDT", "ETHUSDT"}, "liquidation")

	assert.Equal(t, []string{"liquidation.BTCUSDT", "liquidation.ETHUSDT"}, topics)
}

func TestTopics_GlobalFallback(t *testing.T) {
	assert.Equal(t, []string{"liquidation"}, Topics(nil, "liquidation"))
	assert.Equal(t, []string{"liquidation"}, Topics([]string{}, "liquidation"))
}

func newTestSubscriber(url string, handler FrameHandler) (*Subscriber, *reconnect.Manager) {
	manager := reconnect.NewManager(reconnect.Config{
		Delay:            5 * time.Millisecond,
		HeartbeatTimeout: time.Second,
	}, logger.Get())

	sub := NewSubscriber(Config{
		URL:              url,
		Topics:           []string{"liquidation"},
		HandshakeTimeout: 100 * time.Millisecond,
		ReadTimeout:      time.Second,
	}, handler, manager, logger.Get())

	return sub, manager
}

func TestSubscriber_RetriesForever(t *testing.T) {
	// Plain HTTP endpoint: every websocket handshake fails
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	sub, manager := newTestSubscriber(url, func(context.Context, []byte) {})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sub.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}

	assert.GreaterOrEqual(t, manager.GetStats().ConsecutiveFailures, 2,
		"failures must be retried, not terminal")
	assert.Equal(t, StateDisconnected, sub.State())
}

func TestSubscriber_SubscribesAndDeliversFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frame := `{"topic":"liquidation","data":[{"symbol":"BTCUSDT","side":"Sell","price":100,"qty":1,"time":0}]}`

	var subscribed atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req subscribeRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Op == "subscribe" && len(req.Args) == 1 {
			subscribed.Store(true)
		}

		_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))

		// Hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	received := make(chan []byte, 1)
	sub, _ := newTestSubscriber(url, func(_ context.Context, raw []byte) {
		select {
		case received <- raw:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	select {
	case raw := <-received:
		assert.JSONEq(t, frame, string(raw))
	case <-time.After(time.Second):
		t.Fatal("handler never received the frame")
	}

	assert.True(t, subscribed.Load(), "subscription request must be sent after connecting")
	assert.Equal(t, StateSubscribed, sub.State())
}

func TestSubscriber_ReconnectsAfterServerClose(t *testing.T) {
	upgrader := websocket.Upgrader{}

	var connections atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connections.Add(1)
		// Drop the connection immediately after the subscribe request
		_, _, _ = conn.ReadMessage()
		conn.Close()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	sub, manager := newTestSubscriber(url, func(context.Context, []byte) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	require.Eventually(t, func() bool {
		return connections.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond, "subscriber must reconnect after the server drops it")

	assert.GreaterOrEqual(t, manager.GetStats().TotalReconnects, 2)
}
