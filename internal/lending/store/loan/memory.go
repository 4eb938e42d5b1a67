package loan

import (
	"context"
	"sort"
	"sync"

	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	"creditline/pkg/platform/sentinel"
)

// InMemory is a process-local loan store. Ids are assigned sequentially from 1.
type InMemory struct {
	mu         sync.RWMutex
	loans      map[id.LoanID]models.Loan
	byCustomer map[id.CustomerID][]id.LoanID
	nextID     id.LoanID
}

func NewInMemory() *InMemory {
	return &InMemory{
		loans:      make(map[id.LoanID]models.Loan),
		byCustomer: make(map[id.CustomerID][]id.LoanID),
	}
}

// Create assigns an id to l and stores a copy. The record is stored as given,
// so tests can seed histories with paid installments or closed loans.
func (s *InMemory) Create(_ context.Context, l *models.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.ID = s.nextID
	s.loans[l.ID] = *l
	s.byCustomer[l.CustomerID] = append(s.byCustomer[l.CustomerID], l.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, loanID id.LoanID) (*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[loanID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &l, nil
}

// ListByCustomer returns every loan of the customer ordered by id.
func (s *InMemory) ListByCustomer(_ context.Context, customerID id.CustomerID) ([]*models.Loan, error) {
	return s.list(customerID, false), nil
}

// ListActiveByCustomer returns the customer's active loans ordered by id.
func (s *InMemory) ListActiveByCustomer(_ context.Context, customerID id.CustomerID) ([]*models.Loan, error) {
	return s.list(customerID, true), nil
}

func (s *InMemory) list(customerID id.CustomerID, activeOnly bool) []*models.Loan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byCustomer[customerID]
	out := make([]*models.Loan, 0, len(ids))
	for _, loanID := range ids {
		l := s.loans[loanID]
		if activeOnly && !l.Active {
			continue
		}
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
