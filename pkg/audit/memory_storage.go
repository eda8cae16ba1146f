package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage keeps events in a slice. Intended for tests and local runs.
type MemoryStorage struct {
	mu       sync.Mutex
	events   []Event
	failWith error
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends the event.
func (s *MemoryStorage) Store(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything stored so far.
func (s *MemoryStorage) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// Last returns the most recent event, if any.
func (s *MemoryStorage) Last() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return Event{}, false
	}
	return s.events[len(s.events)-1], true
}

// Snapshot captures the current state and returns a function restoring it.
func (s *MemoryStorage) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := slices.Clone(s.events)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.events = saved
	}
}

// FailWith makes every subsequent Store return err. Pass nil to recover.
// Used for fault injection in atomicity tests.
func (s *MemoryStorage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}
