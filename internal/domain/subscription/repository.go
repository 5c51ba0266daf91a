package subscription

import (
	"context"

	"github.com/flexprice/lifecycle/internal/types"
)

type Repository interface {
	Create(ctx context.Context, subscription *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	// List returns subscriptions matching the filter ordered by id.
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)
	// Update persists the subscription only if the stored version still equals
	// subscription.Version, returning a version conflict otherwise. On success
	// the version is incremented on the passed struct.
	Update(ctx context.Context, subscription *Subscription) error
}
