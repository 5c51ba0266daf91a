package testutil

import (
	"context"

	"github.com/flexprice/lifecycle/internal/domain/billingcycle"
	"github.com/flexprice/lifecycle/internal/domain/plan"
	ierr "github.com/flexprice/lifecycle/internal/errors"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
	gets int
}

// NewInMemoryPlanStore creates a new in-memory plan store
func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()

	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, plan.NewNotFoundError(id)
		}
		return nil, err
	}
	c := *p
	return &c, nil
}

// Seed stores a plan. Catalog data is read-only to the engine so tests seed it directly.
func (s *InMemoryPlanStore) Seed(ctx context.Context, p *plan.Plan) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

// Gets returns how many times Get was called
func (s *InMemoryPlanStore) Gets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gets
}

// InMemoryBillingCycleStore implements billingcycle.Repository
type InMemoryBillingCycleStore struct {
	*InMemoryStore[*billingcycle.BillingCycle]
	gets int
}

func NewInMemoryBillingCycleStore() *InMemoryBillingCycleStore {
	return &InMemoryBillingCycleStore{
		InMemoryStore: NewInMemoryStore[*billingcycle.BillingCycle](),
	}
}

func (s *InMemoryBillingCycleStore) Get(ctx context.Context, id string) (*billingcycle.BillingCycle, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()

	b, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, billingcycle.NewNotFoundError(id)
		}
		return nil, err
	}
	c := *b
	return &c, nil
}

func (s *InMemoryBillingCycleStore) Seed(ctx context.Context, b *billingcycle.BillingCycle) error {
	return s.InMemoryStore.Create(ctx, b.ID, b)
}

func (s *InMemoryBillingCycleStore) Gets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gets
}
