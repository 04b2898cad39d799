package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps the trail in process memory, capped so a long-lived
// agent cannot grow without bound.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	cap    int
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	return &InMemoryStore{cap: capacity}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.cap > 0 && len(s.events) > s.cap {
		s.events = s.events[len(s.events)-s.cap:]
	}
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}
