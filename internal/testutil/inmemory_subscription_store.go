package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository. Every read and
// write goes through a clone and Update honours the version check, so tests
// observe the same concurrency behaviour as the postgres repository.
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]

	faultMu      sync.RWMutex
	updateErrs   map[string]error
	listErr      error
	beforeUpdate func(ctx context.Context, sub *subscription.Subscription)
	updates      int
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
		updateErrs:    make(map[string]error),
	}
}

// subscriptionFilterFn implements filtering logic for subscriptions
func subscriptionFilterFn(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
	f, ok := filter.(*types.SubscriptionFilter)
	if !ok || f == nil {
		return sub != nil
	}
	if f.AfterID != "" && sub.ID <= f.AfterID {
		return false
	}
	return subscription.Matches(sub, f)
}

// subscriptionSortFn orders by id, the keyset used for paging
func subscriptionSortFn(i, j *subscription.Subscription) bool {
	return i.ID < j.ID
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub.Version == 0 {
		sub.Version = 1
	}
	err := s.InMemoryStore.Create(ctx, sub.ID, sub.Clone())
	if ierr.IsAlreadyExists(err) {
		return subscription.NewAlreadyExistsError(sub.ID)
	}
	return err
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, subscription.NewNotFoundError(id)
		}
		return nil, err
	}
	return sub.Clone(), nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	s.faultMu.RLock()
	listErr := s.listErr
	s.faultMu.RUnlock()
	if listErr != nil {
		return nil, listErr
	}

	items, err := s.InMemoryStore.List(ctx, filter, subscriptionFilterFn, subscriptionSortFn)
	if err != nil {
		return nil, err
	}
	if !filter.IsUnlimited() && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}

	out := make([]*subscription.Subscription, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	s.faultMu.Lock()
	hook := s.beforeUpdate
	s.updates++
	s.faultMu.Unlock()

	if hook != nil {
		hook(ctx, sub)
	}

	s.faultMu.RLock()
	injected := s.updateErrs[sub.ID]
	s.faultMu.RUnlock()
	if injected != nil {
		return injected
	}

	err := s.InMemoryStore.Swap(ctx, sub.ID, func(current *subscription.Subscription) (*subscription.Subscription, error) {
		if current.Version != sub.Version {
			return nil, subscription.NewVersionConflictError(sub.ID, sub.Version)
		}
		next := sub.Clone()
		next.Version = current.Version + 1
		return next, nil
	})
	if err != nil {
		if ierr.IsNotFound(err) {
			return subscription.NewNotFoundError(sub.ID)
		}
		return err
	}
	sub.Version++
	return nil
}

// FailUpdate makes every Update of id return err. A nil err clears the fault.
func (s *InMemorySubscriptionStore) FailUpdate(id string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err == nil {
		delete(s.updateErrs, id)
		return
	}
	s.updateErrs[id] = err
}

// FailList makes List return err. A nil err clears the fault.
func (s *InMemorySubscriptionStore) FailList(err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.listErr = err
}

// BeforeUpdate registers a hook run at the start of every Update, before the
// version check. Tests use it to simulate a concurrent writer.
func (s *InMemorySubscriptionStore) BeforeUpdate(fn func(ctx context.Context, sub *subscription.Subscription)) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.beforeUpdate = fn
}

// Updates returns the number of Update calls, including failed ones
func (s *InMemorySubscriptionStore) Updates() int {
	s.faultMu.RLock()
	defer s.faultMu.RUnlock()
	return s.updates
}

// Clear drops all subscriptions and faults
func (s *InMemorySubscriptionStore) Clear() {
	s.InMemoryStore.Clear()
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.updateErrs = make(map[string]error)
	s.listErr = nil
	s.beforeUpdate = nil
	s.updates = 0
}
