package customer

import (
	"context"
	"sync"

	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	"creditline/pkg/platform/sentinel"
)

// InMemory is a process-local customer store. Ids are assigned sequentially from 1.
type InMemory struct {
	mu        sync.RWMutex
	customers map[id.CustomerID]models.Customer
	nextID    id.CustomerID
}

func NewInMemory() *InMemory {
	return &InMemory{customers: make(map[id.CustomerID]models.Customer)}
}

// Create assigns an id to c and stores a copy.
func (s *InMemory) Create(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.customers[c.ID] = *c
	return nil
}

func (s *InMemory) FindByID(_ context.Context, customerID id.CustomerID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[customerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}
