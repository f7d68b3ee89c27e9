package reconnect

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rektbot/pkg/logger"
)

// Manager tracks connection attempts for a forever-reconnecting stream.
// The venue treats all connectivity failure as equally transient, so the
// policy is a fixed delay between attempts and no retry cap: every failure
// is recorded, logged, and retried until the context is cancelled.
type Manager struct {
	delay            time.Duration
	heartbeatTimeout time.Duration

	mu                  sync.RWMutex
	consecutiveFailures int
	totalReconnects     int

	// Heartbeat tracking
	lastMessageTime atomic.Int64 // Unix timestamp in seconds

	logger *logger.Logger
}

// Config configures the reconnect manager
type Config struct {
	Delay            time.Duration // Fixed delay between attempts (e.g. 5s)
	HeartbeatTimeout time.Duration // Max time without messages before the connection is considered dead
}

// NewManager creates a new reconnect manager with sensible defaults
func NewManager(config Config, log *logger.Logger) *Manager {
	if config.Delay == 0 {
		config.Delay = 5 * time.Second
	}
	if config.HeartbeatTimeout == 0 {
		config.HeartbeatTimeout = 60 * time.Second
	}

	return &Manager{
		delay:            config.Delay,
		heartbeatTimeout: config.HeartbeatTimeout,
		logger:           log,
	}
}

// Delay returns the fixed delay between reconnection attempts
func (m *Manager) Delay() time.Duration {
	return m.delay
}

// HeartbeatTimeout returns the max tolerated silence on the connection
func (m *Manager) HeartbeatTimeout() time.Duration {
	return m.heartbeatTimeout
}

// RecordMessageReceived updates the last message timestamp
// Call this every time a message is received from the connection
func (m *Manager) RecordMessageReceived() {
	m.lastMessageTime.Store(time.Now().Unix())
}

// IsHealthy checks if connection is healthy based on recent message activity
func (m *Manager) IsHealthy() bool {
	lastMsg := time.Unix(m.lastMessageTime.Load(), 0)
	if m.lastMessageTime.Load() == 0 {
		// No messages received yet - consider healthy (just connected)
		return true
	}

	timeSinceLastMessage := time.Since(lastMsg)
	if timeSinceLastMessage > m.heartbeatTimeout {
		m.logger.Warnw("Connection appears dead - no messages received",
			"time_since_last_message", timeSinceLastMessage,
			"heartbeat_timeout", m.heartbeatTimeout,
		)
		return false
	}

	return true
}

// RecordFailure records a connection failure
func (m *Manager) RecordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.consecutiveFailures++

	m.logger.Warnw("Connection failed",
		"error", err,
		"consecutive_failures", m.consecutiveFailures,
		"retry_in", m.delay,
	)
}

// RecordSuccess records a successful (re)connection
func (m *Manager) RecordSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.consecutiveFailures > 0 {
		m.logger.Infow("Reconnection successful",
			"previous_consecutive_failures", m.consecutiveFailures,
		)
	}

	m.consecutiveFailures = 0
	m.totalReconnects++

	// Update heartbeat
	m.lastMessageTime.Store(time.Now().Unix())
}

// Wait sleeps for the fixed reconnect delay, returning early with the
// context error if the context is cancelled.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-time.After(m.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetStats returns current reconnect manager stats
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lastMsg := time.Unix(m.lastMessageTime.Load(), 0)
	timeSinceLastMessage := time.Duration(0)
	if m.lastMessageTime.Load() != 0 {
		timeSinceLastMessage = time.Since(lastMsg)
	}

	return Stats{
		ConsecutiveFailures:  m.consecutiveFailures,
		TotalReconnects:      m.totalReconnects,
		LastMessageTime:      lastMsg,
		TimeSinceLastMessage: timeSinceLastMessage,
	}
}

// Stats contains reconnection statistics
type Stats struct {
	ConsecutiveFailures  int
	TotalReconnects      int
	LastMessageTime      time.Time
	TimeSinceLastMessage time.Duration
}
