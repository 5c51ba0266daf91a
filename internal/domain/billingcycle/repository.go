package billingcycle

import "context"

// Repository is the read-only view of the billing cycle catalog.
type Repository interface {
	Get(ctx context.Context, id string) (*BillingCycle, error)
}
