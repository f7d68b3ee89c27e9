package subscriber

import (
	"sync"
)

// Store is a concurrent mapping of subscriber identity to alert settings.
// Reads come from the event filter at feed frequency, writes from the
// conversation machine; both sides stay lock-free at the call site.
//
// State is process-scoped: entries are never deleted and nothing is
// persisted across restarts.
type Store struct {
	configs map[ID]Config
	mu      sync.RWMutex
}

// NewStore creates an empty configuration store
func NewStore() *Store {
	return &Store{
		configs: make(map[ID]Config),
	}
}

// Get returns the subscriber's settings, or the defaults when the subscriber
// has no stored entry. It never fails; absence means "default", not "unset".
func (s *Store) Get(id ID) Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg, ok := s.configs[id]; ok {
		return cfg
	}
	return DefaultConfig()
}

// Set overwrites the subscriber's whole record, last write wins
func (s *Store) Set(id ID, cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[id] = cfg
}

// Ensure initializes the subscriber with defaults unless an entry already
// exists, and returns the effective settings. Called on /start so that every
// subscriber who ever interacted has an entry to fan out to.
func (s *Store) Ensure(id ID) Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg, ok := s.configs[id]; ok {
		return cfg
	}
	cfg := DefaultConfig()
	s.configs[id] = cfg
	return cfg
}

// All returns a snapshot of every stored subscriber and their settings
func (s *Store) All() map[ID]Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[ID]Config, len(s.configs))
	for id, cfg := range s.configs {
		snapshot[id] = cfg
	}
	return snapshot
}

// Count returns the number of stored subscribers
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.configs)
}
