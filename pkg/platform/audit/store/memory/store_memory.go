package memory

import (
	"context"
	"sync"

	id "creditline/pkg/domain"
	audit "creditline/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.CustomerID][]audit.Event
	count  int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.CustomerID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CustomerID] = append(s.events[event.CustomerID], event)
	s.count++
	return nil
}

// ListByCustomer returns a customer's events in append order.
func (s *InMemoryStore) ListByCustomer(_ context.Context, customerID id.CustomerID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[customerID]...), nil
}

// Len returns the number of stored events.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.CustomerID][]audit.Event)
	s.count = 0
}
