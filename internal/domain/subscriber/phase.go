package subscriber

import (
	"sync"
)

// Phase is a subscriber's position in a settings conversation
type Phase string

const (
	PhaseIdle              Phase = "IDLE"
	PhaseAwaitingThreshold Phase = "AWAITING_THRESHOLD"
	PhaseAwaitingListMode  Phase = "AWAITING_LIST_MODE"
)

// PhaseStore tracks the transient conversation phase per subscriber.
// At most one active phase per subscriber; starting a new conversation
// overwrites the old phase, there is no nesting.
type PhaseStore struct {
	phases map[ID]Phase
	mu     sync.RWMutex
}

// NewPhaseStore creates an empty phase store
func NewPhaseStore() *PhaseStore {
	return &PhaseStore{
		phases: make(map[ID]Phase),
	}
}

// Get returns the subscriber's current phase, IDLE when absent
func (s *PhaseStore) Get(id ID) Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.phases[id]; ok {
		return p
	}
	return PhaseIdle
}

// Set moves the subscriber to the given phase
func (s *PhaseStore) Set(id ID, p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == PhaseIdle {
		delete(s.phases, id)
		return
	}
	s.phases[id] = p
}

// Reset returns the subscriber to IDLE
func (s *PhaseStore) Reset(id ID) {
	s.Set(id, PhaseIdle)
}
